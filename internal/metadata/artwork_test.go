package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/slipstream/mediascraper/internal/config"
	"github.com/slipstream/mediascraper/internal/metrics"
)

func newTestDownloader(t *testing.T) (*ArtworkDownloader, string) {
	t.Helper()
	dir := t.TempDir()
	return NewArtworkDownloader(config.ArtworkConfig{BaseDir: dir, Timeout: 5}, zerolog.Nop()), dir
}

func imageServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("fake image data"))
	}))
	t.Cleanup(server.Close)
	return server
}

var matrixRef = ArtworkRef{MediaType: MediaTypeMovie, Provider: "tmdb", ID: 603}

func TestArtworkDownloader_Download(t *testing.T) {
	server := imageServer(t, nil)
	downloader, dir := newTestDownloader(t)
	before := testutil.ToFloat64(metrics.ArtworkDownloadsTotal.WithLabelValues("poster", "ok"))

	path, err := downloader.Download(context.Background(), server.URL+"/poster.jpg", matrixRef, ArtworkTypePoster)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	expected := filepath.Join(dir, "movie", "tmdb", "603_poster.jpg")
	if path != expected {
		t.Errorf("Path = %q, want %q", path, expected)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read downloaded file: %v", err)
	}
	if string(content) != "fake image data" {
		t.Errorf("File content = %q, want %q", string(content), "fake image data")
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "movie", "tmdb", ".artwork-*"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}

	after := testutil.ToFloat64(metrics.ArtworkDownloadsTotal.WithLabelValues("poster", "ok"))
	if after-before != 1 {
		t.Errorf("ok downloads counter delta = %v, want 1", after-before)
	}
}

func TestArtworkDownloader_Download_InvalidInput(t *testing.T) {
	downloader, _ := newTestDownloader(t)

	for _, raw := range []string{"", "ftp://example.com/a.jpg", "::not a url"} {
		_, err := downloader.Download(context.Background(), raw, matrixRef, ArtworkTypePoster)
		if !errors.Is(err, ErrInvalidURL) {
			t.Errorf("Download(%q) error = %v, want %v", raw, err, ErrInvalidURL)
		}
	}

	bad := ArtworkRef{MediaType: "music", Provider: "tmdb", ID: 1}
	_, err := downloader.Download(context.Background(), "https://example.com/a.jpg", bad, ArtworkTypePoster)
	if !errors.Is(err, ErrInvalidMediaType) {
		t.Errorf("Download() error = %v, want %v", err, ErrInvalidMediaType)
	}
}

func TestArtworkDownloader_Download_ServerError(t *testing.T) {
	server := imageServer(t, nil)
	downloader, dir := newTestDownloader(t)

	_, err := downloader.Download(context.Background(), server.URL+"/missing.jpg", matrixRef, ArtworkTypePoster)
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("Download() error = %v, want %v", err, ErrDownloadFailed)
	}
	if downloader.HasArtwork(matrixRef, ArtworkTypePoster) {
		t.Errorf("failed download left a file in %s", dir)
	}
}

func TestArtworkDownloader_Download_Extensions(t *testing.T) {
	server := imageServer(t, nil)
	downloader, _ := newTestDownloader(t)

	tests := []struct {
		path    string
		wantExt string
	}{
		{"/image.jpg", ".jpg"},
		{"/image.jpeg", ".jpeg"},
		{"/image.PNG", ".png"},
		{"/image.webp", ".webp"},
		{"/image", ".jpg"},
		{"/image.gif", ".jpg"},
		{"/image.png?size=500", ".png"},
	}

	for i, tt := range tests {
		ref := ArtworkRef{MediaType: MediaTypeMovie, Provider: "tmdb", ID: i + 100}
		path, err := downloader.Download(context.Background(), server.URL+tt.path, ref, ArtworkTypePoster)
		if err != nil {
			t.Errorf("Download(%q) error = %v", tt.path, err)
			continue
		}
		if ext := filepath.Ext(path); ext != tt.wantExt {
			t.Errorf("Download(%q) ext = %q, want %q", tt.path, ext, tt.wantExt)
		}
	}
}

func TestArtworkDownloader_DownloadArtwork_Movie(t *testing.T) {
	var calls atomic.Int32
	server := imageServer(t, &calls)
	downloader, dir := newTestDownloader(t)

	id := &Identification{Movie: &MovieResult{
		Provider:    "tmdb",
		ID:          603,
		Title:       "The Matrix",
		PosterURL:   server.URL + "/poster.jpg",
		BackdropURL: server.URL + "/backdrop.jpg",
	}}

	paths, err := downloader.DownloadArtwork(context.Background(), id)
	if err != nil {
		t.Fatalf("DownloadArtwork() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected 2 downloads, got %d", calls.Load())
	}
	if want := filepath.Join(dir, "movie", "tmdb", "603_poster.jpg"); paths[ArtworkTypePoster] != want {
		t.Errorf("poster = %q, want %q", paths[ArtworkTypePoster], want)
	}
	if want := filepath.Join(dir, "movie", "tmdb", "603_backdrop.jpg"); paths[ArtworkTypeBackdrop] != want {
		t.Errorf("backdrop = %q, want %q", paths[ArtworkTypeBackdrop], want)
	}

	// Second call finds both files on disk.
	if _, err := downloader.DownloadArtwork(context.Background(), id); err != nil {
		t.Fatalf("DownloadArtwork() second call error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("existing artwork was fetched again: %d calls", calls.Load())
	}
}

func TestArtworkDownloader_DownloadArtwork_SeriesPartialFailure(t *testing.T) {
	server := imageServer(t, nil)
	downloader, dir := newTestDownloader(t)

	id := &Identification{Series: &SeriesResult{
		Provider:    "tvdb",
		ID:          81189,
		Title:       "Breaking Bad",
		PosterURL:   server.URL + "/poster.jpg",
		BackdropURL: server.URL + "/missing.jpg",
	}}

	paths, err := downloader.DownloadArtwork(context.Background(), id)
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("DownloadArtwork() error = %v, want %v", err, ErrDownloadFailed)
	}
	if want := filepath.Join(dir, "series", "tvdb", "81189_poster.jpg"); paths[ArtworkTypePoster] != want {
		t.Errorf("poster = %q, want %q", paths[ArtworkTypePoster], want)
	}
	if _, ok := paths[ArtworkTypeBackdrop]; ok {
		t.Error("backdrop path reported for failed download")
	}
}

func TestArtworkDownloader_DownloadArtwork_Unmatched(t *testing.T) {
	downloader, _ := newTestDownloader(t)

	if _, err := downloader.DownloadArtwork(context.Background(), nil); !errors.Is(err, ErrInvalidMediaType) {
		t.Errorf("DownloadArtwork(nil) error = %v, want %v", err, ErrInvalidMediaType)
	}
	if _, err := downloader.DownloadArtwork(context.Background(), &Identification{}); !errors.Is(err, ErrInvalidMediaType) {
		t.Errorf("DownloadArtwork(unmatched) error = %v, want %v", err, ErrInvalidMediaType)
	}
}

func TestArtworkDownloader_PathsAndDelete(t *testing.T) {
	downloader, dir := newTestDownloader(t)

	itemDir := filepath.Join(dir, "movie", "tmdb")
	if err := os.MkdirAll(itemDir, 0o755); err != nil {
		t.Fatal(err)
	}
	poster := filepath.Join(itemDir, "603_poster.png")
	backdrop := filepath.Join(itemDir, "603_backdrop.jpg")
	other := filepath.Join(itemDir, "6030_poster.jpg")
	for _, p := range []string{poster, backdrop, other} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if got := downloader.GetArtworkPath(matrixRef, ArtworkTypePoster); got != poster {
		t.Errorf("GetArtworkPath() = %q, want %q", got, poster)
	}
	if downloader.HasArtwork(ArtworkRef{MediaType: MediaTypeMovie, Provider: "tvdb", ID: 603}, ArtworkTypePoster) {
		t.Error("HasArtwork() matched another provider's file")
	}

	if err := downloader.DeleteArtwork(matrixRef); err != nil {
		t.Fatalf("DeleteArtwork() error = %v", err)
	}
	for _, p := range []string{poster, backdrop} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s should be deleted", p)
		}
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("DeleteArtwork removed another item's file: %v", err)
	}
}
