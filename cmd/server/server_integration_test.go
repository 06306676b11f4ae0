package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/luxar/Grid-Map-Tile-Generator/internal/config"
	"github.com/luxar/Grid-Map-Tile-Generator/internal/serverapp"
)

func TestServer_HealthAndReadinessExposeRequestID(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		res := app.request(http.MethodGet, path, nil, "")
		if res.Code != http.StatusOK {
			t.Fatalf("%s expected 200, got %d body=%s", path, res.Code, res.Body.String())
		}
		if rid := strings.TrimSpace(res.Header().Get("X-Request-Id")); rid == "" {
			t.Fatalf("%s missing X-Request-Id header", path)
		}
	}
}

func TestServer_HomePageAndEmbeddedStatic(t *testing.T) {
	app := newTestApp(t)

	home := app.request(http.MethodGet, "/", nil, "")
	if home.Code != http.StatusOK {
		t.Fatalf("home expected 200, got %d", home.Code)
	}
	if !strings.Contains(home.Body.String(), `id="grid"`) {
		t.Fatalf("home page missing grid container")
	}

	for _, path := range []string{"/static/js/editor.js", "/static/css/editor.css"} {
		res := app.request(http.MethodGet, path, nil, "")
		if res.Code != http.StatusOK {
			t.Fatalf("%s expected 200, got %d", path, res.Code)
		}
	}

	if res := app.request(http.MethodGet, "/nope", nil, ""); res.Code != http.StatusNotFound {
		t.Fatalf("unknown page expected 404, got %d", res.Code)
	}
}

func TestServer_PaintReportAndExportRoundTrip(t *testing.T) {
	app := newTestApp(t)

	steps := []map[string]any{
		{"cmd": "grid.resize", "args": map[string]any{"rows": 2, "cols": 3}},
		{"cmd": "tool.select", "args": map[string]any{"tileId": "road_l"}},
		{"cmd": "cell.paint", "args": map[string]any{"row": 0, "col": 0}},
		{"cmd": "cell.paint", "args": map[string]any{"row": 0, "col": 0}},
		{"cmd": "cell.drag", "args": map[string]any{"row": 0, "col": 1}},
		{"cmd": "inventory.set", "args": map[string]any{"tileId": "road_l", "count": 1}},
	}
	for _, step := range steps {
		res := app.json(http.MethodPost, "/api/editor/cmd", step)
		if res.Code != http.StatusOK {
			t.Fatalf("%v expected 200, got %d body=%s", step["cmd"], res.Code, res.Body.String())
		}
	}

	res := app.request(http.MethodGet, "/api/report", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("report expected 200, got %d", res.Code)
	}
	var rep struct {
		TotalCells int           `json:"totalCells"`
		ShortCount int           `json:"shortCount"`
		Groups     []reportGroup `json:"groups"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.TotalCells != 6 {
		t.Fatalf("expected 6 cells, got %d", rep.TotalCells)
	}
	road := findEntry(rep.Groups, "road_l")
	if road == nil || road.Required != 2 || road.Missing != 1 {
		t.Fatalf("unexpected road_l entry: %+v", road)
	}

	exported := app.request(http.MethodGet, "/api/map/export", nil, "")
	if exported.Code != http.StatusOK {
		t.Fatalf("export expected 200, got %d", exported.Code)
	}
	doc := exported.Body.String()

	if res := app.json(http.MethodPost, "/api/editor/cmd", map[string]any{"cmd": "grid.clear", "args": map[string]any{}}); res.Code != http.StatusOK {
		t.Fatalf("clear expected 200, got %d", res.Code)
	}

	imported := app.request(http.MethodPost, "/api/map/import", strings.NewReader(doc), "application/json")
	if imported.Code != http.StatusOK {
		t.Fatalf("import expected 200, got %d body=%s", imported.Code, imported.Body.String())
	}

	state := app.request(http.MethodGet, "/api/editor/state", nil, "")
	var st struct {
		Grid [][]struct {
			TileID   string `json:"tileId"`
			Rotation int    `json:"rotation"`
		} `json:"grid"`
	}
	if err := json.Unmarshal(state.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if got := st.Grid[0][0]; got.TileID != "road_l" || got.Rotation != 90 {
		t.Fatalf("expected rotated road_l after import, got %+v", got)
	}

	bad := app.request(http.MethodPost, "/api/map/import", strings.NewReader(`[[]]`), "application/json")
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("bad import expected 400, got %d", bad.Code)
	}
}

func TestServer_InventorySurvivesRestart(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Storage.Driver = config.DriverFile
	cfg.Storage.DataDir = t.TempDir()

	first := newTestAppWithConfig(t, cfg)
	res := first.request(http.MethodPost, "/api/inventory/import", strings.NewReader(`{"sea":7}`), "application/json")
	if res.Code != http.StatusOK {
		t.Fatalf("inventory import expected 200, got %d body=%s", res.Code, res.Body.String())
	}

	second := newTestAppWithConfig(t, cfg)
	exported := second.request(http.MethodGet, "/api/inventory/export", nil, "")
	var inv map[string]int
	if err := json.Unmarshal(exported.Body.Bytes(), &inv); err != nil {
		t.Fatalf("decode inventory: %v", err)
	}
	if inv["sea"] != 7 {
		t.Fatalf("expected persisted sea=7, got %v", inv)
	}
}

type reportEntry struct {
	TileID   string `json:"tileId"`
	Required int    `json:"required"`
	Missing  int    `json:"missing"`
}

type reportGroup struct {
	Entries []reportEntry `json:"entries"`
}

func findEntry(groups []reportGroup, id string) *reportEntry {
	for _, g := range groups {
		for i := range g.Entries {
			if g.Entries[i].TileID == id {
				return &g.Entries[i]
			}
		}
	}
	return nil
}

type testApp struct {
	handler http.Handler
	logs    *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := loadTestConfig(t)
	cfg.Storage.DataDir = t.TempDir()
	return newTestAppWithConfig(t, cfg)
}

func newTestAppWithConfig(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()

	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)

	app, err := serverapp.New(context.Background(), serverapp.Options{
		Config:        cfg,
		StaticDir:     filepath.Join(projectRoot(t), "static"),
		UseDiskStatic: false,
		Logger:        logger,
	})
	if err != nil {
		t.Fatalf("serverapp.New: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	return &testApp{
		handler: app.Handler,
		logs:    &logs,
	}
}

func (a *testApp) json(method, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	return a.request(method, path, bytes.NewReader(b), "application/json")
}

func (a *testApp) request(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfgPath := filepath.Join(projectRoot(t), "tilemap_config.yml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load config %s: %v", cfgPath, err)
	}
	return cfg
}

func projectRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime.Caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
