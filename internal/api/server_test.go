package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/slipstream/mediascraper/internal/config"
	"github.com/slipstream/mediascraper/internal/library/scanner"
	"github.com/slipstream/mediascraper/internal/logger"
	"github.com/slipstream/mediascraper/internal/metadata"
	"github.com/slipstream/mediascraper/internal/testutil"
)

type fakeLogs struct {
	entries []logger.LogEntry
	path    string
	level   string
}

func (f *fakeLogs) RecentLogs(minLevel string) []logger.LogEntry {
	f.level = minLevel
	return f.entries
}

func (f *fakeLogs) LogFilePath() string { return f.path }

func setupTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *fakeLogs) {
	t.Helper()

	cfg := config.Default()
	cfg.Metadata.TMDB = testutil.NewTMDBServer(t).Config()
	cfg.Metadata.Artwork.BaseDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}

	logs := &fakeLogs{}
	svc := metadata.NewService(&cfg.Metadata, zerolog.Nop())
	srv := NewServer(cfg, svc, logs, zerolog.Nop())
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, logs
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	rec := serve(ts, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("HealthCheck status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("HealthCheck status = %q, want %q", response["status"], "ok")
	}
}

func TestGetStatus(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	rec := serve(ts, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GetStatus status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["version"] != Version {
		t.Errorf("version = %v, want %q", response["version"], Version)
	}
	if response["movieProvider"] != true {
		t.Error("movieProvider should be true with a TMDB key")
	}
	if response["seriesProvider"] != true {
		t.Error("seriesProvider should be true with a TMDB key")
	}
	if got := rec.Header().Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
}

func TestMetadataRoutes(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	rec := serve(ts, httptest.NewRequest(http.MethodGet, "/api/v1/metadata/movie/search?query=Matrix", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("movie search status = %d, want %d. Body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "The Matrix") {
		t.Errorf("movie search body = %s", rec.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	ts, _ := setupTestServer(t, func(c *config.Config) { c.Server.RateLimit = 1 })

	first := serve(ts, httptest.NewRequest(http.MethodGet, "/api/v1/metadata/movie/search?query=Matrix", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}
	second := serve(ts, httptest.NewRequest(http.MethodGet, "/api/v1/metadata/movie/search?query=Matrix", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want %d", second.Code, http.StatusTooManyRequests)
	}

	// Health and status are not provider lookups.
	for range 3 {
		if rec := serve(ts, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)); rec.Code != http.StatusOK {
			t.Fatalf("status endpoint throttled: %d", rec.Code)
		}
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	ts, _ := setupTestServer(t, func(c *config.Config) { c.Server.RateLimit = 0 })
	if ts.rateLimiter != nil {
		t.Fatal("rate limiter should be disabled")
	}
	for range 3 {
		rec := serve(ts, httptest.NewRequest(http.MethodGet, "/api/v1/metadata/movie/search?query=Matrix", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	}
}

func TestMetrics(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	rec := serve(ts, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"mediascraper_cache_hits_total", "go_goroutines"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestScanFolder(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	root := t.TempDir()
	for _, name := range []string{"The.Matrix.1999.1080p.mkv", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	body, _ := json.Marshal(ScanRequest{Path: root})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(ts, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("scan status = %d, want %d. Body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp ScanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Kind != scanner.KindMovie || resp.TotalFiles != 1 || resp.Matched != 1 || len(resp.Results) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	if m := resp.Results[0].Identification.Movie; m == nil || m.ID != 603 {
		t.Errorf("movie = %+v, want 603", m)
	}
}

func TestScanFolder_BadRequest(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing path", `{}`},
		{"bad kind", `{"path":"` + t.TempDir() + `","kind":"anime"}`},
		{"not a directory", `{"path":"/does/not/exist"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if rec := serve(ts, req); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestLogsRoutes(t *testing.T) {
	ts, logs := setupTestServer(t, nil)
	logs.entries = []logger.LogEntry{{Level: "warn", Message: "slow provider"}}

	rec := serve(ts, httptest.NewRequest(http.MethodGet, "/api/v1/logs?level=warn", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("logs status = %d", rec.Code)
	}
	if logs.level != "warn" {
		t.Errorf("level filter = %q, want warn", logs.level)
	}
	var entries []logger.LogEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(entries) != 1 || entries[0].Message != "slow provider" {
		t.Errorf("entries = %+v", entries)
	}

	rec = serve(ts, httptest.NewRequest(http.MethodGet, "/api/v1/logs/download", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("download without file status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	logs.path = filepath.Join(t.TempDir(), "mediascraper.log")
	if err := os.WriteFile(logs.path, []byte("line\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec = serve(ts, httptest.NewRequest(http.MethodGet, "/api/v1/logs/download", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "mediascraper.log") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestTasksRoutes(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	rec := serve(ts, httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("tasks status = %d", rec.Code)
	}
	var tasks []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "provider-health" || tasks[1].ID != "ratelimit-cleanup" {
		t.Errorf("tasks = %+v", tasks)
	}

	rec = serve(ts, httptest.NewRequest(http.MethodPost, "/api/v1/tasks/unknown/run", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("run unknown task status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
