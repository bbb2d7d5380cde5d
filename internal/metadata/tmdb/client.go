package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/mediascraper/internal/config"
)

var (
	ErrAPIKeyMissing     = errors.New("TMDB API key is not configured")
	ErrUnauthorized      = errors.New("TMDB rejected the API key")
	ErrNotFound          = errors.New("TMDB resource not found")
	ErrAPIError          = errors.New("TMDB API error")
	ErrRateLimited       = errors.New("TMDB API rate limited")
	ErrMalformedResponse = errors.New("malformed TMDB response")
)

const (
	maxCastMembers = 10
	posterSize     = "w500"
	backdropSize   = "w780"
	profileSize    = "w185"
)

// SearchParams are the inputs of a title search.
type SearchParams struct {
	Query        string
	Language     string // ISO 639-1, empty means the TMDB default
	Year         int    // 0 means no year filter
	IncludeAdult bool
}

func (p SearchParams) values(apiKey, yearParam string) url.Values {
	params := url.Values{}
	params.Set("api_key", apiKey)
	params.Set("query", p.Query)
	params.Set("include_adult", strconv.FormatBool(p.IncludeAdult))
	if p.Language != "" {
		params.Set("language", p.Language)
	}
	if p.Year > 0 {
		params.Set(yearParam, strconv.Itoa(p.Year))
	}
	return params
}

// Client is a TMDB API client.
type Client struct {
	httpClient *http.Client
	config     config.TMDBConfig
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client.
func NewClient(cfg config.TMDBConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "tmdb").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "tmdb"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// IncludeAdult reports whether adult titles are allowed in searches.
func (c *Client) IncludeAdult() bool {
	return c.config.IncludeAdult
}

// Test verifies connectivity to the TMDB API by making a configuration request.
func (c *Client) Test(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	endpoint := fmt.Sprintf("%s/configuration", c.config.BaseURL)
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)

	var result struct {
		Images struct {
			BaseURL string `json:"base_url"`
		} `json:"images"`
	}

	return c.doRequest(ctx, endpoint, params, &result)
}

// SearchMovies searches for movies. Results keep the TMDB response order.
func (c *Client) SearchMovies(ctx context.Context, p SearchParams) ([]NormalizedMovieResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	endpoint := fmt.Sprintf("%s/search/movie", c.config.BaseURL)

	var response SearchMoviesResponse
	if err := c.doRequest(ctx, endpoint, p.values(c.config.APIKey, "year"), &response); err != nil {
		return nil, err
	}

	results := make([]NormalizedMovieResult, len(response.Results))
	for i, movie := range response.Results {
		results[i] = c.toMovieResult(movie, p.Language)
	}

	c.logger.Debug().
		Str("query", p.Query).
		Str("language", p.Language).
		Int("year", p.Year).
		Int("results", len(results)).
		Msg("Movie search completed")

	return results, nil
}

// SearchSeries searches for TV series. Results keep the TMDB response order.
func (c *Client) SearchSeries(ctx context.Context, p SearchParams) ([]NormalizedSeriesResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	endpoint := fmt.Sprintf("%s/search/tv", c.config.BaseURL)

	var response SearchTVResponse
	if err := c.doRequest(ctx, endpoint, p.values(c.config.APIKey, "first_air_date_year"), &response); err != nil {
		return nil, err
	}

	results := make([]NormalizedSeriesResult, len(response.Results))
	for i, series := range response.Results {
		results[i] = c.toSeriesResult(series, p.Language)
	}

	c.logger.Debug().
		Str("query", p.Query).
		Str("language", p.Language).
		Int("year", p.Year).
		Int("results", len(results)).
		Msg("TV search completed")

	return results, nil
}

// GetMovie gets detailed movie info, credits and trailers by TMDB ID.
func (c *Client) GetMovie(ctx context.Context, id int, language string) (*NormalizedMovieResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	endpoint := fmt.Sprintf("%s/movie/%d", c.config.BaseURL, id)

	var details MovieDetails
	if err := c.doRequest(ctx, endpoint, c.detailParams(language), &details); err != nil {
		return nil, err
	}

	result := c.movieDetailsToResult(details, language)

	c.logger.Debug().
		Int("id", id).
		Str("title", result.Title).
		Msg("Got movie details")

	return &result, nil
}

// GetSeries gets detailed TV series info, credits and trailers by TMDB ID.
func (c *Client) GetSeries(ctx context.Context, id int, language string) (*NormalizedSeriesResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	endpoint := fmt.Sprintf("%s/tv/%d", c.config.BaseURL, id)

	var details TVDetails
	if err := c.doRequest(ctx, endpoint, c.detailParams(language), &details); err != nil {
		return nil, err
	}

	result := c.tvDetailsToResult(details, language)

	c.logger.Debug().
		Int("id", id).
		Str("title", result.Title).
		Msg("Got TV series details")

	return &result, nil
}

// GetSeasonDetails gets detailed info for a specific season including all episodes.
func (c *Client) GetSeasonDetails(ctx context.Context, seriesID, seasonNumber int, language string) (*NormalizedSeasonResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	endpoint := fmt.Sprintf("%s/tv/%d/season/%d", c.config.BaseURL, seriesID, seasonNumber)
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)
	if language != "" {
		params.Set("language", language)
	}

	var details SeasonDetails
	if err := c.doRequest(ctx, endpoint, params, &details); err != nil {
		return nil, err
	}

	result := c.seasonDetailsToResult(details)

	c.logger.Debug().
		Int("seriesID", seriesID).
		Int("seasonNumber", seasonNumber).
		Int("episodes", len(result.Episodes)).
		Msg("Got season details")

	return &result, nil
}

// GetImageURL returns a full image URL for a given path and size.
// Size options: "w92", "w154", "w185", "w342", "w500", "w780", "original"
func (c *Client) GetImageURL(path string, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", c.config.ImageBaseURL, size, path)
}

func (c *Client) detailParams(language string) url.Values {
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)
	params.Set("append_to_response", "credits,videos,external_ids")
	if language != "" {
		params.Set("language", language)
		// Trailers are often only published in English.
		params.Set("include_video_language", language+",en,null")
	}
	return params
}

// doRequest performs an HTTP GET request and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", endpoint).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Handle error responses
	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil {
			c.logger.Error().
				Int("status", resp.StatusCode).
				Str("message", errResp.StatusMessage).
				Msg("TMDB API error")
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusUnauthorized:
			return ErrUnauthorized
		case http.StatusTooManyRequests:
			return ErrRateLimited
		default:
			return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: empty body", ErrNotFound)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return nil
}

func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, _ := strconv.Atoi(date[:4])
	return year
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// toMovieResult converts a TMDB movie search result to a NormalizedMovieResult.
func (c *Client) toMovieResult(movie MovieResult, language string) NormalizedMovieResult {
	result := NormalizedMovieResult{
		ID:            movie.ID,
		Title:         movie.Title,
		OriginalTitle: movie.OriginalTitle,
		Language:      language,
		Year:          parseYear(movie.ReleaseDate),
		Overview:      movie.Overview,
		PosterPath:    deref(movie.PosterPath),
		BackdropPath:  deref(movie.BackdropPath),
		ReleaseDate:   movie.ReleaseDate,
	}
	result.PosterURL = c.GetImageURL(result.PosterPath, posterSize)
	result.BackdropURL = c.GetImageURL(result.BackdropPath, backdropSize)
	return result
}

// movieDetailsToResult converts TMDB movie details to a NormalizedMovieResult.
func (c *Client) movieDetailsToResult(details MovieDetails, language string) NormalizedMovieResult {
	genres := make([]string, len(details.Genres))
	for i, g := range details.Genres {
		genres[i] = g.Name
	}

	result := NormalizedMovieResult{
		ID:            details.ID,
		Title:         details.Title,
		OriginalTitle: details.OriginalTitle,
		Language:      language,
		Year:          parseYear(details.ReleaseDate),
		Overview:      details.Overview,
		PosterPath:    deref(details.PosterPath),
		BackdropPath:  deref(details.BackdropPath),
		Runtime:       details.Runtime,
		ImdbID:        details.ImdbID,
		Genres:        genres,
		ReleaseDate:   details.ReleaseDate,
		Tagline:       details.Tagline,
		Rating:        details.VoteAverage,
		Trailers:      trailers(details.Videos),
	}
	result.PosterURL = c.GetImageURL(result.PosterPath, posterSize)
	result.BackdropURL = c.GetImageURL(result.BackdropPath, backdropSize)

	if details.Credits != nil {
		result.Cast = c.castMembers(details.Credits.Cast)
		for _, crew := range details.Credits.Crew {
			if crew.Job == "Director" {
				result.Directors = append(result.Directors, NormalizedPerson{ID: crew.ID, Name: crew.Name, Role: crew.Job})
			}
		}
	}

	return result
}

// toSeriesResult converts a TMDB TV search result to a NormalizedSeriesResult.
func (c *Client) toSeriesResult(tv TVResult, language string) NormalizedSeriesResult {
	result := NormalizedSeriesResult{
		ID:            tv.ID,
		Title:         tv.Name,
		OriginalTitle: tv.OriginalName,
		Language:      language,
		Year:          parseYear(tv.FirstAirDate),
		Overview:      tv.Overview,
		PosterPath:    deref(tv.PosterPath),
		BackdropPath:  deref(tv.BackdropPath),
		OriginCountry: tv.OriginCountry,
	}
	result.PosterURL = c.GetImageURL(result.PosterPath, posterSize)
	result.BackdropURL = c.GetImageURL(result.BackdropPath, backdropSize)
	return result
}

// tvDetailsToResult converts TMDB TV details to a NormalizedSeriesResult.
func (c *Client) tvDetailsToResult(details TVDetails, language string) NormalizedSeriesResult {
	genres := make([]string, len(details.Genres))
	for i, g := range details.Genres {
		genres[i] = g.Name
	}

	// Map TMDB status to our status format
	status := "continuing"
	switch details.Status {
	case "Ended", "Canceled":
		status = "ended"
	case "Returning Series", "In Production":
		status = "continuing"
	case "Planned":
		status = "upcoming"
	}

	network := ""
	if len(details.Networks) > 0 {
		network = details.Networks[0].Name
	}

	result := NormalizedSeriesResult{
		ID:              details.ID,
		Title:           details.Name,
		OriginalTitle:   details.OriginalName,
		Language:        language,
		Year:            parseYear(details.FirstAirDate),
		Overview:        details.Overview,
		PosterPath:      deref(details.PosterPath),
		BackdropPath:    deref(details.BackdropPath),
		OriginCountry:   details.OriginCountry,
		Status:          status,
		Genres:          genres,
		Network:         network,
		NumberOfSeasons: details.NumberOfSeasons,
		Rating:          details.VoteAverage,
		Trailers:        trailers(details.Videos),
	}
	result.PosterURL = c.GetImageURL(result.PosterPath, posterSize)
	result.BackdropURL = c.GetImageURL(result.BackdropPath, backdropSize)

	if details.ExternalIDs != nil {
		result.ImdbID = details.ExternalIDs.ImdbID
		result.TvdbID = details.ExternalIDs.TvdbID
	}

	if len(details.EpisodeRunTime) > 0 {
		result.Runtime = details.EpisodeRunTime[0]
	}

	for _, creator := range details.CreatedBy {
		result.Creators = append(result.Creators, NormalizedPerson{ID: creator.ID, Name: creator.Name, Role: "Creator"})
	}
	if details.Credits != nil {
		result.Cast = c.castMembers(details.Credits.Cast)
	}

	return result
}

// seasonDetailsToResult converts TMDB season details to a NormalizedSeasonResult.
func (c *Client) seasonDetailsToResult(details SeasonDetails) NormalizedSeasonResult {
	episodes := make([]NormalizedEpisodeResult, len(details.Episodes))
	for i, ep := range details.Episodes {
		episodes[i] = NormalizedEpisodeResult{
			EpisodeNumber: ep.EpisodeNumber,
			SeasonNumber:  ep.SeasonNumber,
			Title:         ep.Name,
			Overview:      ep.Overview,
			AirDate:       ep.AirDate,
			Runtime:       ep.Runtime,
		}
	}

	return NormalizedSeasonResult{
		SeasonNumber: details.SeasonNumber,
		Name:         details.Name,
		Overview:     details.Overview,
		AirDate:      details.AirDate,
		PosterURL:    c.GetImageURL(deref(details.PosterPath), posterSize),
		Episodes:     episodes,
	}
}

// castMembers returns the top billed cast in credit order.
func (c *Client) castMembers(cast []CastMember) []NormalizedPerson {
	n := min(len(cast), maxCastMembers)
	people := make([]NormalizedPerson, 0, n)
	for _, m := range cast[:n] {
		people = append(people, NormalizedPerson{
			ID:       m.ID,
			Name:     m.Name,
			Role:     m.Character,
			PhotoURL: c.GetImageURL(deref(m.ProfilePath), profileSize),
		})
	}
	return people
}

// trailers keeps YouTube trailers, official ones first.
func trailers(videos *VideosResponse) []Trailer {
	if videos == nil {
		return nil
	}
	var official, other []Trailer
	for _, v := range videos.Results {
		if v.Site != "YouTube" || v.Type != "Trailer" || v.Key == "" {
			continue
		}
		t := Trailer{Name: v.Name, URL: "https://www.youtube.com/watch?v=" + url.QueryEscape(v.Key)}
		if v.Official {
			official = append(official, t)
		} else {
			other = append(other, t)
		}
	}
	return append(official, other...)
}
