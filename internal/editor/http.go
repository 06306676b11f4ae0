package editor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/grid"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/mapio"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/preview"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/telemetry"
)

// maxImportBytes bounds import bodies; a 50x50 document is well under this.
const maxImportBytes = 1 << 20

// Handler exposes a Session over HTTP.
type Handler struct {
	session *Session
	events  telemetry.Repository
}

func NewHandler(session *Session, events telemetry.Repository) *Handler {
	return &Handler{session: session, events: events}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(out)
}

// StateResponse is the response for GET /api/editor/state.
type StateResponse struct {
	SessionID      string    `json:"sessionId"`
	Version        string    `json:"version"`
	Rows           int       `json:"rows"`
	Cols           int       `json:"cols"`
	MinSize        int       `json:"minSize"`
	MaxSize        int       `json:"maxSize"`
	SelectedTileID string    `json:"selectedTileId"`
	Grid           grid.Grid `json:"grid"`
}

func (h *Handler) stateResponse(snap Snapshot) StateResponse {
	cfg := h.session.GridConfig()
	return StateResponse{
		SessionID:      snap.SessionID,
		Version:        strconv.Itoa(snap.Version),
		Rows:           snap.Rows,
		Cols:           snap.Cols,
		MinSize:        cfg.MinSize,
		MaxSize:        cfg.MaxSize,
		SelectedTileID: snap.SelectedTileID,
		Grid:           snap.Grid,
	}
}

// GET /api/editor/state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	writeJSON(w, 200, h.stateResponse(h.session.Snapshot()))
}

// CommandRequest is the request body for POST /api/editor/cmd.
type CommandRequest struct {
	Cmd           string         `json:"cmd"`
	Args          map[string]any `json:"args"`
	ClientVersion string         `json:"clientVersion,omitempty"`
}

// CommandResponse is the response for POST /api/editor/cmd.
type CommandResponse struct {
	OK         bool   `json:"ok"`
	NewVersion string `json:"newVersion"`
	Patch      any    `json:"patch,omitempty"`
	Error      string `json:"error,omitempty"`
}

// POST /api/editor/cmd
func (h *Handler) Command(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}

	var req CommandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, 400, "invalid json")
		return
	}

	patch, err := h.session.Execute(r.Context(), req.ClientVersion, req.Cmd, req.Args)
	if errors.Is(err, ErrVersionConflict) {
		writeJSON(w, http.StatusConflict, CommandResponse{
			OK:         false,
			NewVersion: strconv.Itoa(h.session.Version()),
			Error:      "editor version conflict",
		})
		return
	}
	if err != nil {
		writeJSON(w, 400, CommandResponse{
			OK:         false,
			NewVersion: strconv.Itoa(h.session.Version()),
			Error:      err.Error(),
		})
		return
	}

	writeJSON(w, 200, CommandResponse{
		OK:         true,
		NewVersion: strconv.Itoa(h.session.Version()),
		Patch:      patch,
	})
}

// GET /api/report
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	writeJSON(w, 200, h.session.Report())
}

// GET /api/collection
func (h *Handler) Collection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	writeJSON(w, 200, map[string]any{"groups": h.session.Collection()})
}

// GET /api/catalog
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	writeJSON(w, 200, map[string]any{
		"tiles":       h.session.Catalog().All(),
		"defaultTile": h.session.GridConfig().DefaultTile,
	})
}

// GET /api/map/export
func (h *Handler) ExportMap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	b, err := h.session.ExportMap()
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	writeDownload(w, mapio.GridFilename, b)
}

// POST /api/map/import
func (h *Handler) ImportMap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeErr(w, 400, "grid import failed: "+err.Error())
		return
	}
	g, err := h.session.ImportMap(body)
	if err != nil {
		writeImportErr(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"ok":         true,
		"rows":       g.Rows(),
		"cols":       g.Cols(),
		"newVersion": strconv.Itoa(h.session.Version()),
	})
}

// GET /api/inventory/export
func (h *Handler) ExportInventory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	b, err := h.session.ExportInventory()
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	writeDownload(w, mapio.InventoryFilename, b)
}

// POST /api/inventory/import
func (h *Handler) ImportInventory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeErr(w, 400, "collection import failed: "+err.Error())
		return
	}
	inv, err := h.session.ImportInventory(r.Context(), body)
	if err != nil {
		writeImportErr(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"ok":         true,
		"tiles":      inv.Len(),
		"newVersion": strconv.Itoa(h.session.Version()),
	})
}

// GET /api/map/preview.png?cell=24&lines=1
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	opts := preview.Options{GridLines: r.URL.Query().Get("lines") == "1"}
	if v := r.URL.Query().Get("cell"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeErr(w, 400, "cell must be an integer")
			return
		}
		opts.CellSize = n
	}

	var buf bytes.Buffer
	if err := preview.RenderPNG(&buf, h.session.Grid(), h.session.Catalog(), opts); err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(200)
	_, _ = w.Write(buf.Bytes())
}

// GET /api/stats?days=7
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	if h.events == nil {
		writeErr(w, 503, "telemetry disabled")
		return
	}
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeErr(w, 400, "days must be a positive integer")
			return
		}
		days = n
	}
	since := time.Now().AddDate(0, 0, -days)
	events, err := h.events.GetEvents(since, nil)
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	stats, err := telemetry.CalculateStats(events, since)
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, stats)
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxImportBytes {
		return nil, errors.New("document too large")
	}
	return body, nil
}

func writeImportErr(w http.ResponseWriter, err error) {
	if errors.Is(err, mapio.ErrDecode) {
		writeErr(w, 400, err.Error())
		return
	}
	writeErr(w, 500, err.Error())
}

func writeDownload(w http.ResponseWriter, filename string, b []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(200)
	_, _ = w.Write(b)
}
