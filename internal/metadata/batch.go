package metadata

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/slipstream/mediascraper/internal/library/scanner"
)

const defaultIdentifyWorkers = 4

// FileIdentification is the outcome for one file of a batch.
type FileIdentification struct {
	Path           string          `json:"path" yaml:"path"`
	Identification *Identification `json:"identification,omitempty" yaml:"identification,omitempty"`
	Error          string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchProgress is called after each identified file.
type BatchProgress func(done, total int, item FileIdentification)

// IdentifyFiles identifies files with at most workers lookups in flight.
// Results keep the input order. A failing file is reported in its entry;
// the batch only stops on cancellation or when no provider is configured.
func (s *Service) IdentifyFiles(ctx context.Context, files []scanner.ParsedMedia, language string, workers int, progress BatchProgress) ([]FileIdentification, error) {
	if workers <= 0 {
		workers = defaultIdentifyWorkers
	}

	results := make([]FileIdentification, len(files))
	done := make(chan FileIdentification)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		n := 0
		for item := range done {
			n++
			if progress != nil {
				progress(n, len(files), item)
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parsed := files[i]
			results[i].Path = parsed.FilePath

			id, err := s.IdentifyParsed(gctx, &parsed, language)
			if errors.Is(err, ErrNoProvidersConfigured) {
				return err
			}
			if err != nil {
				results[i].Error = err.Error()
			}
			results[i].Identification = id
			done <- results[i]
			return nil
		})
	}

	err := g.Wait()
	close(done)
	<-finished

	matched := 0
	for _, r := range results {
		if r.Identification != nil && r.Identification.Matched() {
			matched++
		}
	}
	s.logger.Info().
		Int("files", len(files)).
		Int("matched", matched).
		Int("workers", workers).
		Msg("Batch identification finished")

	return results, err
}
