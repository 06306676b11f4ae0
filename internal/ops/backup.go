package ops

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/store"
)

// Summary describes what a backup or restore touched.
type Summary struct {
	Files int
	Bytes int64
}

// BackupDataDir archives every regular file under srcDir into a .tar.gz.
// Symlinks and in-flight *.tmp files are skipped.
func BackupDataDir(srcDir, archivePath string) (Summary, error) {
	srcDir = filepath.Clean(strings.TrimSpace(srcDir))
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if srcDir == "" || archivePath == "" {
		return Summary{}, fmt.Errorf("srcDir and archivePath are required")
	}
	info, err := os.Stat(srcDir)
	if err != nil {
		return Summary{}, err
	}
	if !info.IsDir() {
		return Summary{}, fmt.Errorf("source is not a directory: %s", srcDir)
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return Summary{}, err
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return Summary{}, err
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	var sum Summary
	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == srcDir || d.Type()&os.ModeSymlink != 0 || strings.HasSuffix(path, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		n, err := addTarEntry(tw, path, filepath.ToSlash(rel), d)
		if err != nil {
			return fmt.Errorf("archive %s: %w", rel, err)
		}
		if !d.IsDir() {
			sum.Files++
			sum.Bytes += n
		}
		return nil
	})

	// Close in order so a failed walk still releases the file.
	closeErr := errors.Join(tw.Close(), gz.Close(), f.Close())
	if walkErr != nil {
		return Summary{}, walkErr
	}
	if closeErr != nil {
		return Summary{}, closeErr
	}
	return sum, nil
}

func addTarEntry(tw *tar.Writer, path, name string, d fs.DirEntry) (int64, error) {
	info, err := d.Info()
	if err != nil {
		return 0, err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return 0, err
	}
	hdr.Name = name
	if info.IsDir() {
		hdr.Name = strings.TrimSuffix(name, "/") + "/"
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, nil
	}

	src, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	return io.Copy(tw, src)
}

// RestoreDataDir unpacks an archive made by BackupDataDir into targetDir.
// Entries that would land outside targetDir are rejected.
func RestoreDataDir(archivePath, targetDir string) (Summary, error) {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	targetDir = filepath.Clean(strings.TrimSpace(targetDir))
	if archivePath == "" || targetDir == "" {
		return Summary{}, fmt.Errorf("archivePath and targetDir are required")
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return Summary{}, err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return Summary{}, err
	}
	defer gz.Close()

	var sum Summary
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return sum, nil
		}
		if err != nil {
			return Summary{}, err
		}

		rel, err := sanitizeArchiveRelPath(hdr.Name)
		if err != nil {
			return Summary{}, err
		}
		outPath := filepath.Join(targetDir, rel)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(outPath, 0o755); err != nil {
				return Summary{}, err
			}
		case tar.TypeReg:
			n, err := extractFile(tr, outPath, os.FileMode(hdr.Mode).Perm())
			if err != nil {
				return Summary{}, err
			}
			sum.Files++
			sum.Bytes += n
		}
	}
}

func extractFile(r io.Reader, outPath string, mode os.FileMode) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, err
	}
	dst, err := os.OpenFile(outPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(dst, r)
	if err != nil {
		_ = dst.Close()
		return 0, err
	}
	return n, dst.Close()
}

func sanitizeArchiveRelPath(name string) (string, error) {
	name = filepath.Clean(strings.TrimSpace(name))
	if name == "." || name == "" {
		return "", fmt.Errorf("invalid archive entry path")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("invalid absolute archive entry path: %s", name)
	}
	if name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid archive entry path traversal: %s", name)
	}
	return name, nil
}

// SnapshotKV copies keys from any store into a file store rooted at dir, so database-backed
// deployments can be archived with BackupDataDir. Missing keys are skipped.
func SnapshotKV(ctx context.Context, src store.KV, keys []string, dir string) (int, error) {
	dst, err := store.NewFileKV(dir)
	if err != nil {
		return 0, err
	}
	return copyKeys(ctx, src, dst, keys)
}

// LoadKV is the inverse of SnapshotKV.
func LoadKV(ctx context.Context, dir string, dst store.KV, keys []string) (int, error) {
	src, err := store.NewFileKV(dir)
	if err != nil {
		return 0, err
	}
	return copyKeys(ctx, src, dst, keys)
}

func copyKeys(ctx context.Context, src, dst store.KV, keys []string) (int, error) {
	copied := 0
	for _, key := range keys {
		v, err := src.Get(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return copied, fmt.Errorf("read %s: %w", key, err)
		}
		if err := dst.Set(ctx, key, v); err != nil {
			return copied, fmt.Errorf("write %s: %w", key, err)
		}
		copied++
	}
	return copied, nil
}
