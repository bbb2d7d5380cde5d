package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/slipstream/mediascraper/internal/testutil"
)

type cliTestEnv struct {
	configPath string
	tmdb       *testutil.TMDBServer
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	tmdb := testutil.NewTMDBServer(t)

	base := t.TempDir()
	t.Setenv("HOME", base)
	configPath := filepath.Join(base, "config.yaml")
	content := fmt.Sprintf(`logging:
  level: error
  format: json
tmdb:
  api_key: test-key
  base_url: %q
  image_base_url: %q
  timeout: 5
search:
  language: en
artwork:
  base_dir: %q
`, tmdb.URL, tmdb.URL, filepath.Join(base, "artwork"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{configPath: configPath, tmdb: tmdb}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Fatalf("expected %q in output:\n%s", substr, s)
	}
}

func TestVersionSkipsConfig(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "mediascraper ")
}

func TestInvalidOutputFormat(t *testing.T) {
	_, _, err := runCLI(t, []string{"version", "-o", "xml"}, "")
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Fatalf("expected output format error, got %v", err)
	}
}

func TestSearchMovieTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"search", "movie", "The", "Matrix", "--year", "1999"}, env.configPath)
	if err != nil {
		t.Fatalf("search movie: %v", err)
	}
	requireContains(t, out, "Provider: tmdb-movie")
	requireContains(t, out, "Status: OKAY")
	requireContains(t, out, "The Matrix")
	requireContains(t, out, "603")
}

func TestSearchMovieJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"search", "movie", "Matrix", "-o", "json"}, env.configPath)
	if err != nil {
		t.Fatalf("search movie: %v", err)
	}

	var resp struct {
		Status string `json:"status"`
		Hits   []struct {
			ExternalID int `json:"externalId"`
		} `json:"hits"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if resp.Status != "OKAY" || len(resp.Hits) != 1 || resp.Hits[0].ExternalID != 603 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSearchMovieAuthFailure(t *testing.T) {
	env := setupCLITestEnv(t)

	env.tmdb.Handle("/search/movie", http.StatusUnauthorized, `{"status_code":7,"status_message":"Invalid API key"}`)

	out, _, err := runCLI(t, []string{"search", "movie", "Locked", "-o", "json"}, env.configPath)
	if err == nil {
		t.Fatal("expected an error for rejected credentials")
	}
	requireContains(t, err.Error(), "AUTH_ERROR")
	requireContains(t, out, `"status": "AUTH_ERROR"`)
}

func TestDetailsMovie(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"details", "movie", "603"}, env.configPath)
	if err != nil {
		t.Fatalf("details movie: %v", err)
	}
	requireContains(t, out, "The Matrix")
	requireContains(t, out, "136 min")
	requireContains(t, out, "Action")

	if _, _, err := runCLI(t, []string{"details", "movie", "abc"}, env.configPath); err == nil {
		t.Error("expected an error for a non-numeric id")
	}
}

func TestIdentifyYAML(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"identify", "/media/The.Matrix.1999.1080p.BluRay.mkv", "-o", "yaml"}, env.configPath)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}

	var results []struct {
		Path           string `yaml:"path"`
		Identification struct {
			Movie struct {
				ID int `yaml:"id"`
			} `yaml:"movie"`
		} `yaml:"identification"`
	}
	if err := yaml.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(results) != 1 || results[0].Identification.Movie.ID != 603 {
		t.Errorf("results = %+v", results)
	}
}

func TestScanTable(t *testing.T) {
	env := setupCLITestEnv(t)

	root := t.TempDir()
	for _, name := range []string{"The.Matrix.1999.mkv", "The.Matrix.1999.sample.mkv", "readme.txt"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out, _, err := runCLI(t, []string{"scan", root, "--kind", "movie", "--workers", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "(movie): 1 video files, 1 skipped")
	requireContains(t, out, "1 of 1 files matched")

	if _, _, err := runCLI(t, []string{"scan", root, "--kind", "anime"}, env.configPath); err == nil {
		t.Error("expected an error for an unknown kind")
	}
}

func TestStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status", "-o", "json"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	var statuses []struct {
		Name       string `json:"name"`
		Configured bool   `json:"configured"`
		Reachable  bool   `json:"reachable"`
	}
	if err := json.Unmarshal([]byte(out), &statuses); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	byName := map[string]bool{}
	for _, s := range statuses {
		byName[s.Name] = s.Configured && s.Reachable
	}
	if !byName["tmdb"] {
		t.Errorf("tmdb should be configured and reachable: %+v", statuses)
	}
}

func TestCacheClear(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cache cleared.")
}
