package metadata

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/slipstream/mediascraper/internal/config"
	"github.com/slipstream/mediascraper/internal/library/scanner"
	"github.com/slipstream/mediascraper/internal/metadata/ranking"
	"github.com/slipstream/mediascraper/internal/metadata/search"
	"github.com/slipstream/mediascraper/internal/metadata/tmdb"
	"github.com/slipstream/mediascraper/internal/metadata/tvdb"
)

var (
	ErrNoProvidersConfigured = errors.New("no metadata providers configured")
	ErrNotFound              = errors.New("metadata not found")
	ErrUnknownProvider       = errors.New("unknown metadata provider")
	ErrNoTitle               = errors.New("no title could be parsed from the file name")
)

// ResponseCacheClearer is implemented by shared response caches that can be flushed.
type ResponseCacheClearer interface {
	Clear(ctx context.Context) error
}

// ProviderStatus reports whether a provider is configured and reachable.
type ProviderStatus struct {
	Name       string `json:"name" yaml:"name"`
	Configured bool   `json:"configured" yaml:"configured"`
	Reachable  bool   `json:"reachable" yaml:"reachable"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Service orchestrates metadata lookups across multiple providers.
type Service struct {
	tmdb   TMDBClient
	tvdb   TVDBClient
	search config.SearchConfig

	cache     *Cache
	responses search.ResponseCache

	mu     sync.RWMutex
	movies *search.Coordinator
	shows  map[string]*search.Coordinator

	logger zerolog.Logger
}

// NewService creates a new metadata service with real API clients.
func NewService(cfg *config.MetadataConfig, logger zerolog.Logger) *Service {
	return NewServiceWithClients(
		tmdb.NewClient(cfg.TMDB, logger),
		tvdb.NewClient(cfg.TVDB, logger),
		cfg.Search,
		cfg.Cache,
		logger,
	)
}

// NewServiceWithClients creates a new metadata service with custom clients.
func NewServiceWithClients(tmdbClient TMDBClient, tvdbClient TVDBClient, searchCfg config.SearchConfig, cacheCfg config.CacheConfig, logger zerolog.Logger) *Service {
	if searchCfg.Language == "" {
		searchCfg.Language = search.FallbackLanguage
	}
	if len(searchCfg.ShowProviderOrder) == 0 {
		searchCfg.ShowProviderOrder = []string{config.ProviderTVDB, config.ProviderTMDB}
	}

	s := &Service{
		tmdb:   tmdbClient,
		tvdb:   tvdbClient,
		search: searchCfg,
		cache:  NewCache(cacheCfg.Size, cacheCfg.TTL),
		logger: logger.With().Str("component", "metadata").Logger(),
	}
	s.responses = s.cache.Responses()
	s.buildCoordinators()
	return s
}

// SetResponseCache replaces the search response cache, for example with a
// RedisCache shared between processes. nil restores the in-memory cache.
// Searches already running may finish against the previous cache.
func (s *Service) SetResponseCache(cache search.ResponseCache) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cache == nil {
		cache = s.cache.Responses()
	}
	s.responses = cache
	s.movies.SetCache(cache)
	for _, c := range s.shows {
		c.SetCache(cache)
	}
}

func (s *Service) buildCoordinators() {
	years := search.YearExtractorFunc(scanner.ExtractYear)
	adult := s.tmdb.IncludeAdult()

	newCoordinator := func(p search.Provider, opts search.Options) *search.Coordinator {
		opts.Parallel = s.search.ParallelLanguages
		opts.YearStrip = s.search.YearStrip
		c := search.NewCoordinator(p, opts, s.logger)
		c.SetYearExtractor(years)
		c.SetCache(s.responses)
		return c
	}

	s.movies = newCoordinator(&tmdbMovieProvider{client: s.tmdb}, search.Options{
		Policy:       ranking.TMDbPolicy,
		AdultAllowed: adult,
	})

	tvdbProvider := &tvdbShowProvider{client: s.tvdb}
	tvdbCoordinator := newCoordinator(tvdbProvider, search.Options{
		Policy: ranking.LegacyPolicy,
		Bucket: ranking.BucketOptions{
			ClassifyOptions: ranking.ClassifyOptions{NumericSlugDemotion: true},
			ExcludedIDs:     s.tvdb.ExcludedIDs(),
		},
	})
	tvdbCoordinator.SetReauthenticator(tvdbProvider)

	s.shows = map[string]*search.Coordinator{
		providerTMDB: newCoordinator(&tmdbShowProvider{client: s.tmdb}, search.Options{
			Policy:       ranking.TMDbPolicy,
			AdultAllowed: adult,
		}),
		providerTVDB: tvdbCoordinator,
	}
}

// DefaultLanguage returns the configured search language.
func (s *Service) DefaultLanguage() string {
	return s.search.Language
}

// DefaultMaxItems returns the configured result limit (0 means unlimited).
func (s *Service) DefaultMaxItems() int {
	return s.search.MaxItems
}

// HasMovieProvider returns true if a movie metadata provider is configured.
func (s *Service) HasMovieProvider() bool {
	return s.tmdb.IsConfigured()
}

// HasSeriesProvider returns true if a series metadata provider is configured.
func (s *Service) HasSeriesProvider() bool {
	return s.tmdb.IsConfigured() || s.tvdb.IsConfigured()
}

func (s *Service) normalize(q ranking.Query, maxItems int) (ranking.Query, int) {
	if q.Language == "" {
		q.Language = s.search.Language
	}
	if maxItems < 0 {
		maxItems = s.search.MaxItems
	}
	return q, maxItems
}

// SearchMovie searches TMDB for q. A negative maxItems uses the configured limit.
// Provider failures are reported through the result status, not the error.
func (s *Service) SearchMovie(ctx context.Context, q ranking.Query, maxItems int) (search.Result, error) {
	if !s.HasMovieProvider() {
		return search.Result{}, ErrNoProvidersConfigured
	}
	q, maxItems = s.normalize(q, maxItems)

	s.mu.RLock()
	coordinator := s.movies
	s.mu.RUnlock()

	return coordinator.Search(ctx, q, maxItems), nil
}

// SearchShow searches the configured series providers in order and returns
// the first successful result. When none succeeds, the first failure other
// than NOT_FOUND is returned, so an authentication problem is not masked by
// a later provider's miss.
func (s *Service) SearchShow(ctx context.Context, q ranking.Query, maxItems int) (search.Result, error) {
	q, maxItems = s.normalize(q, maxItems)

	var (
		last    search.Result
		failure *search.Result
		tried   int
	)
	for _, name := range s.search.ShowProviderOrder {
		if !s.providerConfigured(name) {
			continue
		}
		s.mu.RLock()
		coordinator := s.shows[name]
		s.mu.RUnlock()
		if coordinator == nil {
			continue
		}

		tried++
		result := coordinator.Search(ctx, q, maxItems)
		if result.Status == search.StatusOK {
			return result, nil
		}
		if result.Status != search.StatusNotFound && failure == nil {
			failed := result
			failure = &failed
		}
		last = result

		s.logger.Debug().
			Str("provider", name).
			Str("status", result.Status.String()).
			Msg("Series provider had no match, trying next")
	}

	if tried == 0 {
		return search.Result{}, ErrNoProvidersConfigured
	}
	if failure != nil {
		return *failure, nil
	}
	return last, nil
}

func (s *Service) providerConfigured(name string) bool {
	switch name {
	case providerTMDB:
		return s.tmdb.IsConfigured()
	case providerTVDB:
		return s.tvdb.IsConfigured()
	default:
		return false
	}
}

// GetMovie gets detailed movie info by TMDB ID.
func (s *Service) GetMovie(ctx context.Context, tmdbID int, language string) (*MovieResult, error) {
	if !s.HasMovieProvider() {
		return nil, ErrNoProvidersConfigured
	}
	if language == "" {
		language = s.search.Language
	}

	cacheKey := fmt.Sprintf("movie:%s:%d:%s", providerTMDB, tmdbID, language)
	if result, ok := s.cache.GetMovieResult(cacheKey); ok {
		s.logger.Debug().Int("tmdbId", tmdbID).Msg("Movie cache hit")
		return result, nil
	}

	tmdbResult, err := s.tmdb.GetMovie(ctx, tmdbID, language)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			return nil, fmt.Errorf("%w: movie %d", ErrNotFound, tmdbID)
		}
		s.logger.Error().Err(err).Int("tmdbId", tmdbID).Msg("TMDB get movie failed")
		return nil, fmt.Errorf("get movie failed: %w", err)
	}

	result := movieFromTMDB(tmdbResult)
	s.cache.Set(cacheKey, result)

	s.logger.Info().
		Int("tmdbId", tmdbID).
		Str("title", result.Title).
		Msg("Got movie details")

	return result, nil
}

// GetShow gets detailed series info from the named provider.
func (s *Service) GetShow(ctx context.Context, provider string, id int, language string) (*SeriesResult, error) {
	if language == "" {
		language = s.search.Language
	}

	cacheKey := fmt.Sprintf("series:%s:%d:%s", provider, id, language)
	if result, ok := s.cache.GetSeriesResult(cacheKey); ok {
		s.logger.Debug().Str("provider", provider).Int("id", id).Msg("Series cache hit")
		return result, nil
	}

	var (
		result *SeriesResult
		err    error
	)
	switch provider {
	case providerTMDB:
		if !s.tmdb.IsConfigured() {
			return nil, ErrNoProvidersConfigured
		}
		var series *tmdb.NormalizedSeriesResult
		if series, err = s.tmdb.GetSeries(ctx, id, language); err == nil {
			result = seriesFromTMDB(series)
		} else if errors.Is(err, tmdb.ErrNotFound) {
			return nil, fmt.Errorf("%w: series %d", ErrNotFound, id)
		}
	case providerTVDB:
		if !s.tvdb.IsConfigured() {
			return nil, ErrNoProvidersConfigured
		}
		var series *tvdb.NormalizedSeriesResult
		if series, err = s.tvdb.GetSeries(ctx, id, language); err == nil {
			result = seriesFromTVDB(series)
		} else if errors.Is(err, tvdb.ErrNotFound) {
			return nil, fmt.Errorf("%w: series %d", ErrNotFound, id)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("provider", provider).Int("id", id).Msg("Get series failed")
		return nil, fmt.Errorf("get series failed: %w", err)
	}

	s.cache.Set(cacheKey, result)

	s.logger.Info().
		Str("provider", provider).
		Int("id", id).
		Str("title", result.Title).
		Msg("Got series details")

	return result, nil
}

// GetEpisode gets one episode of a series from the named provider.
func (s *Service) GetEpisode(ctx context.Context, provider string, seriesID, season, episode int, language string) (*EpisodeResult, error) {
	if language == "" {
		language = s.search.Language
	}

	cacheKey := fmt.Sprintf("episode:%s:%d:%d:%d:%s", provider, seriesID, season, episode, language)
	if result, ok := s.cache.GetEpisodeResult(cacheKey); ok {
		return result, nil
	}

	var result *EpisodeResult
	switch provider {
	case providerTMDB:
		details, err := s.tmdb.GetSeasonDetails(ctx, seriesID, season, language)
		if err != nil {
			return nil, fmt.Errorf("get season failed: %w", err)
		}
		result = episodeFromTMDB(details, episode)
	case providerTVDB:
		ep, err := s.tvdb.GetEpisode(ctx, seriesID, season, episode)
		if err != nil && !errors.Is(err, tvdb.ErrNotFound) {
			return nil, fmt.Errorf("get episode failed: %w", err)
		}
		if ep != nil {
			result = episodeFromTVDB(ep)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: S%02dE%02d of series %d", ErrNotFound, season, episode, seriesID)
	}

	s.cache.Set(cacheKey, result)
	return result, nil
}

// Identify parses a file path, searches for it and fetches the details of
// the best match. An unmatched file is not an error: the returned
// Identification carries the search status.
func (s *Service) Identify(ctx context.Context, path, language string) (*Identification, error) {
	return s.IdentifyParsed(ctx, scanner.ParsePath(path), language)
}

// IdentifyParsed is Identify for a file the scanner already parsed.
func (s *Service) IdentifyParsed(ctx context.Context, parsed *scanner.ParsedMedia, language string) (*Identification, error) {
	path := parsed.FilePath
	if parsed.Title == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoTitle, path)
	}
	if language == "" {
		language = s.search.Language
	}

	id := &Identification{Parsed: parsed}
	q := parsed.Query(language)

	var err error
	if parsed.IsTV {
		id.Search, err = s.SearchShow(ctx, q, 1)
	} else {
		id.Search, err = s.SearchMovie(ctx, q, 1)
	}
	if err != nil {
		return nil, err
	}

	top, ok := id.Search.Top()
	if !ok {
		s.logger.Info().
			Str("path", path).
			Str("title", parsed.Title).
			Str("status", id.Search.Status.String()).
			Msg("No match for file")
		return id, nil
	}

	detailLanguage := id.Search.Language
	if detailLanguage == "" {
		detailLanguage = language
	}

	if !parsed.IsTV {
		id.Movie, err = s.GetMovie(ctx, top.ExternalID, detailLanguage)
		if err != nil {
			return id, err
		}
		return id, nil
	}

	provider := backendOf(id.Search.Provider)
	id.Series, err = s.GetShow(ctx, provider, top.ExternalID, detailLanguage)
	if err != nil {
		return id, err
	}

	if parsed.Episode > 0 {
		id.Episode, err = s.GetEpisode(ctx, provider, top.ExternalID, parsed.Season, parsed.Episode, detailLanguage)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("path", path).
				Int("season", parsed.Season).
				Int("episode", parsed.Episode).
				Msg("Episode lookup failed")
		}
	}

	return id, nil
}

// backendOf maps a search provider name to the client that serves details.
func backendOf(searchProvider string) string {
	switch searchProvider {
	case searchTVDBSeries:
		return providerTVDB
	default:
		return providerTMDB
	}
}

// ClearCache drops cached details and search responses.
func (s *Service) ClearCache(ctx context.Context) error {
	s.cache.Clear()

	s.mu.RLock()
	responses := s.responses
	s.mu.RUnlock()

	if clearer, ok := responses.(ResponseCacheClearer); ok {
		if err := clearer.Clear(ctx); err != nil {
			return fmt.Errorf("clear response cache: %w", err)
		}
	}
	s.logger.Info().Msg("Metadata cache cleared")
	return nil
}

// Status tests every provider concurrently.
func (s *Service) Status(ctx context.Context) []ProviderStatus {
	type tester struct {
		name       string
		configured bool
		test       func(context.Context) error
	}
	testers := []tester{
		{providerTMDB, s.tmdb.IsConfigured(), s.tmdb.Test},
		{providerTVDB, s.tvdb.IsConfigured(), s.tvdb.Test},
	}

	statuses := make([]ProviderStatus, len(testers))
	var g errgroup.Group
	for i, t := range testers {
		statuses[i] = ProviderStatus{Name: t.name, Configured: t.configured}
		if !t.configured {
			continue
		}
		g.Go(func() error {
			if err := t.test(ctx); err != nil {
				statuses[i].Error = err.Error()
				return nil
			}
			statuses[i].Reachable = true
			return nil
		})
	}
	_ = g.Wait()

	return statuses
}
