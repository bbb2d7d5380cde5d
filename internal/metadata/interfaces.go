package metadata

import (
	"context"

	"github.com/slipstream/mediascraper/internal/metadata/tmdb"
	"github.com/slipstream/mediascraper/internal/metadata/tvdb"
)

// TMDBClient defines the interface for TMDB API operations.
type TMDBClient interface {
	Name() string
	IsConfigured() bool
	IncludeAdult() bool
	Test(ctx context.Context) error
	SearchMovies(ctx context.Context, p tmdb.SearchParams) ([]tmdb.NormalizedMovieResult, error)
	SearchSeries(ctx context.Context, p tmdb.SearchParams) ([]tmdb.NormalizedSeriesResult, error)
	GetMovie(ctx context.Context, id int, language string) (*tmdb.NormalizedMovieResult, error)
	GetSeries(ctx context.Context, id int, language string) (*tmdb.NormalizedSeriesResult, error)
	GetSeasonDetails(ctx context.Context, seriesID, seasonNumber int, language string) (*tmdb.NormalizedSeasonResult, error)
	GetImageURL(path string, size string) string
}

// TVDBClient defines the interface for TVDB API operations.
type TVDBClient interface {
	Name() string
	IsConfigured() bool
	Test(ctx context.Context) error
	Reauthenticate(ctx context.Context) error
	ExcludedIDs() []int
	SearchSeries(ctx context.Context, query, lang string, year int) ([]tvdb.NormalizedSeriesResult, error)
	GetSeries(ctx context.Context, id int, lang string) (*tvdb.NormalizedSeriesResult, error)
	GetEpisode(ctx context.Context, seriesID, season, episode int) (*tvdb.NormalizedEpisodeResult, error)
}

var (
	_ TMDBClient = (*tmdb.Client)(nil)
	_ TVDBClient = (*tvdb.Client)(nil)
)
