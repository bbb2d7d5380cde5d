package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/slipstream/mediascraper/internal/metadata/ranking"
	"github.com/slipstream/mediascraper/internal/metadata/search"
	"github.com/slipstream/mediascraper/internal/metadata/tmdb"
	"github.com/slipstream/mediascraper/internal/metadata/tvdb"
)

const (
	providerTMDB = "tmdb"
	providerTVDB = "tvdb"
)

// Search provider names. They key the response cache and label metrics,
// so movie and series searches against the same backend stay apart.
const (
	searchTMDBMovie  = "tmdb-movie"
	searchTMDBSeries = "tmdb-tv"
	searchTVDBSeries = "tvdb-tv"
)

type tmdbMovieProvider struct {
	client TMDBClient
}

func (p *tmdbMovieProvider) Name() string { return searchTMDBMovie }

func (p *tmdbMovieProvider) SearchByTitle(ctx context.Context, title, language string, year int, adult bool) ([]ranking.RawHit, error) {
	results, err := p.client.SearchMovies(ctx, tmdb.SearchParams{
		Query:        title,
		Language:     language,
		Year:         year,
		IncludeAdult: adult,
	})
	if err != nil {
		return nil, mapTMDBError(err)
	}

	hits := make([]ranking.RawHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, ranking.RawHit{
			ExternalID:    r.ID,
			Title:         r.Title,
			OriginalTitle: r.OriginalTitle,
			PosterPath:    r.PosterPath,
			BackdropPath:  r.BackdropPath,
			Language:      language,
			Year:          r.Year,
			Overview:      r.Overview,
		})
	}
	return hits, nil
}

type tmdbShowProvider struct {
	client TMDBClient
}

func (p *tmdbShowProvider) Name() string { return searchTMDBSeries }

func (p *tmdbShowProvider) SearchByTitle(ctx context.Context, title, language string, year int, adult bool) ([]ranking.RawHit, error) {
	results, err := p.client.SearchSeries(ctx, tmdb.SearchParams{
		Query:        title,
		Language:     language,
		Year:         year,
		IncludeAdult: adult,
	})
	if err != nil {
		return nil, mapTMDBError(err)
	}

	hits := make([]ranking.RawHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, ranking.RawHit{
			ExternalID:    r.ID,
			Title:         r.Title,
			OriginalTitle: r.OriginalTitle,
			PosterPath:    r.PosterPath,
			BackdropPath:  r.BackdropPath,
			Language:      language,
			Year:          r.Year,
			Overview:      r.Overview,
		})
	}
	return hits, nil
}

// tvdbShowProvider searches TVDB. TVDB has no adult flag.
type tvdbShowProvider struct {
	client TVDBClient
}

func (p *tvdbShowProvider) Name() string { return searchTVDBSeries }

func (p *tvdbShowProvider) SearchByTitle(ctx context.Context, title, language string, year int, _ bool) ([]ranking.RawHit, error) {
	results, err := p.client.SearchSeries(ctx, title, language, year)
	if err != nil {
		return nil, mapTVDBError(err)
	}

	hits := make([]ranking.RawHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, ranking.RawHit{
			ExternalID:    r.ID,
			Title:         r.Title,
			OriginalTitle: r.OriginalTitle,
			PosterPath:    r.PosterPath,
			BackdropPath:  r.BackdropPath,
			Slug:          r.Slug,
			Language:      language,
			Year:          r.Year,
			Overview:      r.Overview,
		})
	}
	return hits, nil
}

func (p *tvdbShowProvider) Reauthenticate(ctx context.Context) error {
	return p.client.Reauthenticate(ctx)
}

func mapTMDBError(err error) error {
	switch {
	case errors.Is(err, tmdb.ErrUnauthorized), errors.Is(err, tmdb.ErrAPIKeyMissing):
		return fmt.Errorf("%w: %w", search.ErrUnauthorized, err)
	case errors.Is(err, tmdb.ErrNotFound):
		return fmt.Errorf("%w: %w", search.ErrNotFound, err)
	case errors.Is(err, tmdb.ErrMalformedResponse):
		return fmt.Errorf("%w: %w", search.ErrMalformed, err)
	default:
		return err
	}
}

func mapTVDBError(err error) error {
	switch {
	case errors.Is(err, tvdb.ErrUnauthorized), errors.Is(err, tvdb.ErrAuthFailed), errors.Is(err, tvdb.ErrAPIKeyMissing):
		return fmt.Errorf("%w: %w", search.ErrUnauthorized, err)
	case errors.Is(err, tvdb.ErrNotFound):
		return fmt.Errorf("%w: %w", search.ErrNotFound, err)
	case errors.Is(err, tvdb.ErrMalformedResponse):
		return fmt.Errorf("%w: %w", search.ErrMalformed, err)
	default:
		return err
	}
}
