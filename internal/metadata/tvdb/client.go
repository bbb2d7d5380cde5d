package tvdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/slipstream/mediascraper/internal/config"
)

var (
	ErrAPIKeyMissing     = errors.New("TVDB API key is not configured")
	ErrUnauthorized      = errors.New("TVDB rejected the token")
	ErrNotFound          = errors.New("TVDB resource not found")
	ErrAPIError          = errors.New("TVDB API error")
	ErrAuthFailed        = errors.New("TVDB authentication failed")
	ErrRateLimited       = errors.New("TVDB API rate limited")
	ErrMalformedResponse = errors.New("malformed TVDB response")
)

// tokenLifetime is shorter than the 30 days TVDB grants.
const tokenLifetime = 24 * time.Hour

const maxCastMembers = 10

// Client is a TVDB API client.
type Client struct {
	httpClient *http.Client
	config     config.TVDBConfig
	logger     zerolog.Logger

	// Token management
	mu          sync.RWMutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a new TVDB client.
func NewClient(cfg config.TVDBConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "tvdb").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "tvdb"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// ExcludedIDs returns the series IDs that must never be offered.
func (c *Client) ExcludedIDs() []int {
	return slices.Clone(c.config.ExcludedIDs)
}

// Test verifies the credentials by logging in.
func (c *Client) Test(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}
	return c.authenticate(ctx)
}

// Reauthenticate drops the current token and logs in again.
func (c *Client) Reauthenticate(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}
	c.invalidateToken()
	c.logger.Info().Msg("Re-authenticating with TVDB")
	return c.authenticate(ctx)
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

// authenticate gets or refreshes the authentication token.
func (c *Client) authenticate(ctx context.Context) error {
	c.mu.RLock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return nil
	}

	loginURL := fmt.Sprintf("%s/login", c.config.BaseURL)
	loginReq := LoginRequest{APIKey: c.config.APIKey, PIN: c.config.PIN}

	body, err := json.Marshal(loginReq)
	if err != nil {
		return fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().Int("status", resp.StatusCode).Msg("TVDB authentication failed")
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %w", ErrAuthFailed, ErrUnauthorized)
		}
		return fmt.Errorf("%w: status %d", ErrAuthFailed, resp.StatusCode)
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return fmt.Errorf("%w: login: %v", ErrMalformedResponse, err)
	}
	if loginResp.Data.Token == "" {
		return fmt.Errorf("%w: empty token", ErrAuthFailed)
	}

	c.token = loginResp.Data.Token
	c.tokenExpiry = time.Now().Add(tokenLifetime)

	c.logger.Debug().Msg("TVDB authentication successful")
	return nil
}

// SearchSeries searches for TV series by query. language is ISO 639-1 and
// selects which translation becomes the result title. Results keep the
// TVDB response order.
func (c *Client) SearchSeries(ctx context.Context, query, lang string, year int) ([]NormalizedSeriesResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}

	code := LanguageCode(lang)

	endpoint := fmt.Sprintf("%s/search", c.config.BaseURL)
	params := url.Values{}
	params.Set("query", query)
	params.Set("type", "series")
	if code != "" {
		params.Set("language", code)
	}
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var response SearchResponse
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}

	results := make([]NormalizedSeriesResult, 0, len(response.Data))
	for _, item := range response.Data {
		if item.Type == "series" {
			results = append(results, c.searchResultToSeries(item, lang, code))
		}
	}

	c.logger.Debug().
		Str("query", query).
		Str("language", code).
		Int("year", year).
		Int("results", len(results)).
		Msg("TV search completed")

	return results, nil
}

// GetSeries gets detailed TV series info by TVDB ID.
func (c *Client) GetSeries(ctx context.Context, id int, lang string) (*NormalizedSeriesResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/series/%d/extended", c.config.BaseURL, id)
	params := url.Values{}
	params.Set("meta", "translations")

	var response SeriesResponse
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}

	result := c.seriesDetailToResult(response.Data, lang)

	c.logger.Debug().
		Int("id", id).
		Str("title", result.Title).
		Msg("Got series details")

	return &result, nil
}

// GetEpisode gets one episode of a series in the default (aired) order.
func (c *Client) GetEpisode(ctx context.Context, seriesID, season, episode int) (*NormalizedEpisodeResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/series/%d/episodes/default", c.config.BaseURL, seriesID)
	params := url.Values{}
	params.Set("season", strconv.Itoa(season))
	params.Set("episodeNumber", strconv.Itoa(episode))

	var response EpisodesResponse
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}

	for _, ep := range response.Data.Episodes {
		if ep.SeasonNumber == season && ep.Number == episode {
			return &NormalizedEpisodeResult{
				ID:            ep.ID,
				SeasonNumber:  ep.SeasonNumber,
				EpisodeNumber: ep.Number,
				Title:         ep.Name,
				Overview:      ep.Overview,
				AirDate:       ep.Aired,
				Runtime:       ep.Runtime,
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: S%02dE%02d of series %d", ErrNotFound, season, episode, seriesID)
}

// doRequest performs an HTTP GET request with authentication.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", endpoint).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusUnauthorized:
			// Token might be expired, clear it
			c.invalidateToken()
			return ErrUnauthorized
		case http.StatusTooManyRequests:
			return ErrRateLimited
		default:
			return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: empty body", ErrNotFound)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return nil
}

// LanguageCode converts an ISO 639-1 code to the ISO 639-2 code TVDB uses.
// Unknown input is returned unchanged.
func LanguageCode(lang string) string {
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	base, _ := tag.Base()
	return base.ISO3()
}

// searchResultToSeries converts a TVDB search result to a NormalizedSeriesResult.
// The thumbnail is the poster; image_url carries the banner and falls back to
// the missing/series.jpg placeholder.
func (c *Client) searchResultToSeries(item SearchResult, lang, code string) NormalizedSeriesResult {
	year := 0
	if item.Year != "" {
		year, _ = strconv.Atoi(item.Year)
	}

	tvdbID := 0
	if item.TvdbID != "" {
		tvdbID, _ = strconv.Atoi(item.TvdbID)
	}

	title := item.Name
	if translated, ok := item.Translations[code]; ok && translated != "" {
		title = translated
	}

	overview := item.Overview
	if translated, ok := item.Overviews[code]; ok && translated != "" {
		overview = translated
	} else if overview == "" {
		overview = item.Overviews["eng"]
	}

	imdbID := ""
	for _, rid := range item.RemoteIDs {
		if rid.SourceName == "IMDB" {
			imdbID = rid.ID
			break
		}
	}

	return NormalizedSeriesResult{
		ID:            tvdbID,
		Title:         title,
		OriginalTitle: item.Name,
		Slug:          item.Slug,
		Language:      lang,
		Year:          year,
		Overview:      overview,
		PosterPath:    item.Thumbnail,
		BackdropPath:  item.ImageURL,
		ImdbID:        imdbID,
		Country:       item.Country,
		Network:       item.Network,
		Status:        mapStatus(item.Status),
	}
}

// seriesDetailToResult converts a TVDB series detail to a NormalizedSeriesResult.
func (c *Client) seriesDetailToResult(detail SeriesDetail, lang string) NormalizedSeriesResult {
	year := 0
	if detail.Year != "" {
		year, _ = strconv.Atoi(detail.Year)
	}

	genres := make([]string, len(detail.Genres))
	for i, g := range detail.Genres {
		genres[i] = g.Name
	}

	imdbID := ""
	tmdbID := 0
	for _, rid := range detail.RemoteIDs {
		switch rid.SourceName {
		case "IMDB":
			imdbID = rid.ID
		case "TheMovieDB.com":
			tmdbID, _ = strconv.Atoi(rid.ID)
		}
	}

	posterURL := detail.Image
	backdropURL := ""
	for _, art := range detail.Artworks {
		if art.Type == ArtworkTypePoster && posterURL == "" {
			posterURL = art.Image
		}
		if art.Type == ArtworkTypeBackground && backdropURL == "" {
			backdropURL = art.Image
		}
	}

	code := LanguageCode(lang)
	title, overview := detail.Name, detail.Overview
	for _, tr := range detail.Translations.NameTranslations {
		if tr.Language == code && tr.Name != "" {
			title = tr.Name
		}
	}
	for _, tr := range detail.Translations.OverviewTranslations {
		if tr.Language == code && tr.Overview != "" {
			overview = tr.Overview
		}
	}

	var cast []Person
	for _, ch := range detail.Characters {
		if ch.PeopleType != "Actor" {
			continue
		}
		cast = append(cast, Person{Name: ch.PersonName, Role: ch.Name, PhotoURL: ch.Image})
		if len(cast) == maxCastMembers {
			break
		}
	}

	return NormalizedSeriesResult{
		ID:            detail.ID,
		Title:         title,
		OriginalTitle: detail.Name,
		Slug:          detail.Slug,
		Language:      lang,
		Year:          year,
		Overview:      overview,
		PosterPath:    posterURL,
		BackdropPath:  backdropURL,
		ImdbID:        imdbID,
		TmdbID:        tmdbID,
		Country:       detail.OriginalCountry,
		Genres:        genres,
		Status:        mapStatus(detail.Status.Name),
		Runtime:       detail.AverageRuntime,
		Rating:        detail.Score,
		Cast:          cast,
	}
}

func mapStatus(s string) string {
	switch s {
	case "Ended":
		return "ended"
	case "Upcoming":
		return "upcoming"
	default:
		return "continuing"
	}
}
