package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/mediascraper/internal/config"
	"github.com/slipstream/mediascraper/internal/metrics"
)

var (
	ErrInvalidURL       = errors.New("invalid artwork URL")
	ErrDownloadFailed   = errors.New("artwork download failed")
	ErrInvalidMediaType = errors.New("invalid media type")
)

// ArtworkType represents the type of artwork.
type ArtworkType string

const (
	ArtworkTypePoster   ArtworkType = "poster"
	ArtworkTypeBackdrop ArtworkType = "backdrop"
)

// MediaType represents the type of media.
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// ArtworkRef identifies the owner of an artwork file.
type ArtworkRef struct {
	MediaType MediaType
	Provider  string
	ID        int
}

func (r ArtworkRef) dir(baseDir string) string {
	return filepath.Join(baseDir, string(r.MediaType), r.Provider)
}

func (r ArtworkRef) String() string {
	return fmt.Sprintf("%s/%s/%d", r.MediaType, r.Provider, r.ID)
}

// ArtworkDownloader handles downloading and storing artwork images.
type ArtworkDownloader struct {
	baseDir    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewArtworkDownloader creates a new ArtworkDownloader.
func NewArtworkDownloader(cfg config.ArtworkConfig, logger zerolog.Logger) *ArtworkDownloader {
	return &ArtworkDownloader{
		baseDir: cfg.BaseDir,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		logger: logger.With().Str("component", "artwork").Logger(),
	}
}

// Download fetches rawURL and stores it as
// {baseDir}/{mediaType}/{provider}/{id}_{artworkType}{ext}.
// The file only appears once fully written. Returns the local path.
func (d *ArtworkDownloader) Download(ctx context.Context, rawURL string, ref ArtworkRef, artworkType ArtworkType) (string, error) {
	u, err := url.Parse(rawURL)
	if rawURL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	if ref.MediaType != MediaTypeMovie && ref.MediaType != MediaTypeSeries {
		return "", fmt.Errorf("%w: %q", ErrInvalidMediaType, ref.MediaType)
	}

	ext := imageExtension(u)
	dir := ref.dir(d.baseDir)
	destPath := filepath.Join(dir, fmt.Sprintf("%d_%s%s", ref.ID, artworkType, ext))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		d.logger.Error().Err(err).Str("dir", dir).Msg("Failed to create artwork directory")
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.record(artworkType, "error")
		d.logger.Error().Err(err).Str("url", rawURL).Msg("Artwork download failed")
		return "", fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.record(artworkType, "error")
		d.logger.Error().Int("status", resp.StatusCode).Str("url", rawURL).Msg("Artwork download failed")
		return "", fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(dir, ".artwork-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	written, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(tmp.Name())
		d.record(artworkType, "error")
		d.logger.Error().Err(err).Str("path", destPath).Msg("Failed to write artwork file")
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move artwork into place: %w", err)
	}

	d.record(artworkType, "ok")
	d.logger.Info().
		Str("url", rawURL).
		Str("path", destPath).
		Int64("bytes", written).
		Msg("Artwork downloaded successfully")

	return destPath, nil
}

func (d *ArtworkDownloader) record(artworkType ArtworkType, result string) {
	metrics.ArtworkDownloadsTotal.WithLabelValues(string(artworkType), result).Inc()
}

// DownloadArtwork downloads poster and backdrop of an identified file.
// Artwork already on disk is not fetched again. Every failed download is
// reported in the joined error; successful paths are returned regardless.
func (d *ArtworkDownloader) DownloadArtwork(ctx context.Context, id *Identification) (map[ArtworkType]string, error) {
	if id == nil || !id.Matched() {
		return nil, ErrInvalidMediaType
	}

	var (
		ref      ArtworkRef
		poster   string
		backdrop string
	)
	if id.Movie != nil {
		ref = ArtworkRef{MediaType: MediaTypeMovie, Provider: id.Movie.Provider, ID: id.Movie.ID}
		poster, backdrop = id.Movie.PosterURL, id.Movie.BackdropURL
	} else {
		ref = ArtworkRef{MediaType: MediaTypeSeries, Provider: id.Series.Provider, ID: id.Series.ID}
		poster, backdrop = id.Series.PosterURL, id.Series.BackdropURL
	}

	paths := make(map[ArtworkType]string, 2)
	var errs []error
	for _, item := range []struct {
		kind ArtworkType
		url  string
	}{
		{ArtworkTypePoster, poster},
		{ArtworkTypeBackdrop, backdrop},
	} {
		if item.url == "" {
			continue
		}
		if existing := d.GetArtworkPath(ref, item.kind); existing != "" {
			d.record(item.kind, "cached")
			paths[item.kind] = existing
			continue
		}
		p, err := d.Download(ctx, item.url, ref, item.kind)
		if err != nil {
			d.logger.Warn().Err(err).Stringer("item", ref).Str("type", string(item.kind)).Msg("Failed to download artwork")
			errs = append(errs, fmt.Errorf("%s: %w", item.kind, err))
			continue
		}
		paths[item.kind] = p
	}

	return paths, errors.Join(errs...)
}

// GetArtworkPath returns the local path for artwork if it exists.
func (d *ArtworkDownloader) GetArtworkPath(ref ArtworkRef, artworkType ArtworkType) string {
	for _, ext := range imageExtensions {
		p := filepath.Join(ref.dir(d.baseDir), fmt.Sprintf("%d_%s%s", ref.ID, artworkType, ext))
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// HasArtwork checks if artwork exists locally.
func (d *ArtworkDownloader) HasArtwork(ref ArtworkRef, artworkType ArtworkType) bool {
	return d.GetArtworkPath(ref, artworkType) != ""
}

// DeleteArtwork removes every artwork file of an item.
func (d *ArtworkDownloader) DeleteArtwork(ref ArtworkRef) error {
	matches, err := filepath.Glob(filepath.Join(ref.dir(d.baseDir), fmt.Sprintf("%d_*", ref.ID)))
	if err != nil {
		return fmt.Errorf("failed to find artwork files: %w", err)
	}

	var errs []error
	for _, p := range matches {
		if err := os.Remove(p); err != nil {
			errs = append(errs, err)
			continue
		}
		d.logger.Debug().Str("path", p).Msg("Deleted artwork file")
	}
	return errors.Join(errs...)
}

// imageExtension returns the image extension of u, ".jpg" when unknown.
func imageExtension(u *url.URL) string {
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	default:
		return ".jpg"
	}
}
