package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/config"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/editor"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/httpmw"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/inventory"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/store"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/telemetry"
	staticfiles "github.com/luxar/Grid-Map-Tile-Generator/static"
	"github.com/luxar/Grid-Map-Tile-Generator/ui/page"
)

const (
	serviceName = "tilemap"
	eventLimit  = 10000
	openTimeout = 10 * time.Second
)

type Options struct {
	Config        *config.Config
	StaticDir     string
	UseDiskStatic bool
	Logger        *log.Logger
	// KV overrides the store named by Config.Storage. The caller keeps ownership.
	KV store.KV
}

// App is the assembled server. Close releases the store when the app opened it.
type App struct {
	Handler http.Handler
	Session *editor.Session

	kv     store.KV
	ownsKV bool
}

func (a *App) Close() error {
	if a.ownsKV && a.kv != nil {
		return a.kv.Close()
	}
	return nil
}

func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if strings.TrimSpace(opts.StaticDir) == "" {
		opts.StaticDir = "static"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	cfg := opts.Config

	catalog, err := cfg.BuildCatalog()
	if err != nil {
		return nil, err
	}

	kv, ownsKV := opts.KV, false
	if kv == nil {
		openCtx, cancel := context.WithTimeout(ctx, openTimeout)
		defer cancel()
		kv, err = store.Open(openCtx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		ownsKV = true
	}
	opts.Logger.Printf("[store] using %s storage", cfg.Storage.Driver)

	events := telemetry.NewMemoryRepository(eventLimit)
	session, err := editor.NewSession(ctx, editor.Options{
		Catalog:   catalog,
		Grid:      cfg.Grid,
		Inventory: inventory.NewKVRepo(kv, cfg.Storage.InventoryKey),
		Events:    events,
		Logger:    opts.Logger,
	})
	if err != nil {
		if ownsKV {
			_ = kv.Close()
		}
		return nil, err
	}

	mux := http.NewServeMux()

	staticHandler := http.FileServer(http.FS(staticfiles.EmbeddedFS()))
	if opts.UseDiskStatic {
		staticHandler = http.FileServer(http.Dir(opts.StaticDir))
	}
	mux.Handle("/static/", http.StripPrefix("/static/", staticHandler))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": serviceName,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := kv.Ping(pingCtx); err != nil {
			opts.Logger.Printf("[store] readiness check failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "inventory storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": serviceName,
			"session": session.ID(),
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	h := editor.NewHandler(session, events)
	mux.HandleFunc("/api/editor/state", h.GetState)
	mux.HandleFunc("/api/editor/cmd", h.Command)
	mux.HandleFunc("/api/editor/live", h.Live)
	mux.HandleFunc("/api/report", h.Report)
	mux.HandleFunc("/api/collection", h.Collection)
	mux.HandleFunc("/api/catalog", h.Catalog)
	mux.HandleFunc("/api/map/export", h.ExportMap)
	mux.HandleFunc("/api/map/import", h.ImportMap)
	mux.HandleFunc("/api/map/preview.png", h.Preview)
	mux.HandleFunc("/api/inventory/export", h.ExportInventory)
	mux.HandleFunc("/api/inventory/import", h.ImportInventory)
	mux.HandleFunc("/api/stats", h.Stats)

	mux.Handle("/api/config", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}))

	editorPage := templ.Handler(page.EditorPage(catalog, session.GridConfig()))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		editorPage.ServeHTTP(w, r)
	})
	mux.HandleFunc("/report", func(w http.ResponseWriter, r *http.Request) {
		templ.Handler(page.ShortageSummary(session.Report())).ServeHTTP(w, r)
	})

	handler := httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
	)
	return &App{Handler: handler, Session: session, kv: kv, ownsKV: ownsKV}, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
