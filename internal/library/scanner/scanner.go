package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Kind selects how scanned files are categorized.
type Kind string

const (
	KindAuto  Kind = "auto"
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
)

// ParseKind parses a kind name. An empty name means KindAuto.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case "":
		return KindAuto, nil
	case KindAuto, KindMovie, KindTV:
		return k, nil
	default:
		return "", fmt.Errorf("unknown media kind %q (want auto, movie or tv)", s)
	}
}

// ScanError represents an error during scanning.
type ScanError struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// ScanResult contains the results of scanning a folder. Kind is the forced
// kind, or the folder's dominant kind when scanning with KindAuto.
type ScanResult struct {
	RootPath   string        `json:"rootPath" yaml:"rootPath"`
	Kind       Kind          `json:"kind" yaml:"kind"`
	Movies     []ParsedMedia `json:"movies" yaml:"movies"`
	Episodes   []ParsedMedia `json:"episodes" yaml:"episodes"`
	Errors     []ScanError   `json:"errors" yaml:"errors"`
	TotalFiles int           `json:"totalFiles" yaml:"totalFiles"`
	Skipped    int           `json:"skipped" yaml:"skipped"`
}

// Files returns movies followed by episodes.
func (r *ScanResult) Files() []ParsedMedia {
	out := make([]ParsedMedia, 0, len(r.Movies)+len(r.Episodes))
	out = append(out, r.Movies...)
	return append(out, r.Episodes...)
}

// ProgressCallback is called after each parsed file.
type ProgressCallback func(path string, scanned int)

// Service walks folders and parses the video files it finds.
type Service struct {
	logger zerolog.Logger
}

// NewService creates a new scanner service.
func NewService(logger zerolog.Logger) *Service {
	return &Service{
		logger: logger.With().Str("component", "scanner").Logger(),
	}
}

// ScanFolder walks folderPath and parses every video file below it.
// KindAuto keeps the filename's own movie/episode classification and
// reports the folder's dominant kind in ScanResult.Kind.
func (s *Service) ScanFolder(ctx context.Context, folderPath string, kind Kind, progressCb ProgressCallback) (*ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detected := kind
	if kind == KindAuto {
		var err error
		if detected, err = s.DetectMediaType(folderPath); err != nil {
			return nil, fmt.Errorf("detect media type: %w", err)
		}
	}

	result := &ScanResult{
		RootPath: folderPath,
		Kind:     detected,
		Movies:   make([]ParsedMedia, 0),
		Episodes: make([]ParsedMedia, 0),
		Errors:   make([]ScanError, 0),
	}

	s.logger.Info().
		Str("path", folderPath).
		Str("kind", string(kind)).
		Str("detected", string(detected)).
		Msg("Starting folder scan")

	err := filepath.WalkDir(folderPath, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			result.Errors = append(result.Errors, ScanError{Path: path, Error: walkErr.Error()})
			return nil //nolint:nilerr // Record error but continue scanning
		}
		if d.IsDir() {
			if path != folderPath && isHiddenDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		return s.processFile(path, d, kind, result, progressCb)
	})
	if err != nil {
		return result, err
	}

	s.logger.Info().
		Str("path", folderPath).
		Int("totalFiles", result.TotalFiles).
		Int("movies", len(result.Movies)).
		Int("episodes", len(result.Episodes)).
		Int("errors", len(result.Errors)).
		Int("skipped", result.Skipped).
		Msg("Folder scan completed")

	return result, nil
}

func (s *Service) processFile(path string, d fs.DirEntry, kind Kind, result *ScanResult, progressCb ProgressCallback) error {
	if !IsVideoFile(d.Name()) {
		return nil
	}
	if IsSampleFile(d.Name()) {
		result.Skipped++
		return nil
	}

	result.TotalFiles++

	info, err := d.Info()
	if err != nil {
		result.Errors = append(result.Errors, ScanError{Path: path, Error: err.Error()})
		return nil //nolint:nilerr // Record error but continue scanning
	}

	parsed := ParsePath(path)
	parsed.FileSize = info.Size()
	if parsed.Title == "" {
		s.logger.Debug().Str("path", path).Msg("No title could be parsed, skipping")
		result.Skipped++
		return nil
	}
	categorize(parsed, kind, result)

	if progressCb != nil {
		progressCb(path, result.TotalFiles)
	}
	return nil
}

func categorize(parsed *ParsedMedia, kind Kind, result *ScanResult) {
	switch {
	case kind == KindMovie, kind != KindTV && !parsed.IsTV:
		parsed.IsTV = false
		result.Movies = append(result.Movies, *parsed)
	default:
		parsed.IsTV = true
		result.Episodes = append(result.Episodes, *parsed)
	}
}

// ScanFile parses a single file.
func (s *Service) ScanFile(filePath string) (*ParsedMedia, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, os.ErrInvalid
	}

	parsed := ParsePath(filePath)
	parsed.FileSize = info.Size()
	return parsed, nil
}

// DetectMediaType samples up to ten video files and reports whether the
// folder holds mostly movies or episodes.
func (s *Service) DetectMediaType(folderPath string) (Kind, error) {
	movieCount := 0
	tvCount := 0

	err := filepath.WalkDir(folderPath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil //nolint:nilerr // Skip errors and directories during type detection
		}
		if !IsVideoFile(d.Name()) || IsSampleFile(d.Name()) {
			return nil
		}

		if ParseFilename(d.Name()).IsTV {
			tvCount++
		} else {
			movieCount++
		}

		if movieCount+tvCount >= 10 {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, filepath.SkipAll) {
		return "", err
	}

	if tvCount > movieCount {
		return KindTV, nil
	}
	return KindMovie, nil
}
