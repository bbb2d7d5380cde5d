package metadata

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/slipstream/mediascraper/internal/metadata/ranking"
	"github.com/slipstream/mediascraper/internal/metadata/search"
)

// Handlers provides HTTP handlers for metadata operations.
type Handlers struct {
	service *Service
	artwork *ArtworkDownloader
}

// NewHandlers creates new metadata handlers.
func NewHandlers(service *Service, artwork *ArtworkDownloader) *Handlers {
	return &Handlers{
		service: service,
		artwork: artwork,
	}
}

// RegisterRoutes registers the metadata routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/movie/search", h.SearchMovie)
	g.GET("/movie/:id", h.GetMovie)

	g.GET("/show/search", h.SearchShow)
	g.GET("/show/:provider/:id", h.GetShow)
	g.GET("/show/:provider/:id/season/:season/episode/:episode", h.GetEpisode)

	g.POST("/identify", h.Identify)
	g.GET("/artwork/:type/:provider/:id/:artworkType", h.GetArtwork)

	g.DELETE("/cache", h.ClearCache)
	g.GET("/status", h.GetStatus)
}

// SearchResponse is a search result with its failure reason spelled out.
type SearchResponse struct {
	search.Result
	Error string `json:"error,omitempty"`
}

func newSearchResponse(r search.Result) SearchResponse {
	resp := SearchResponse{Result: r}
	if r.Reason != nil {
		resp.Error = r.Reason.Error()
	}
	if resp.Hits == nil {
		resp.Hits = []ranking.RawHit{}
	}
	return resp
}

// searchStatusCode maps provider failures to 502 so clients can retry;
// a clean miss is still a successful request.
func searchStatusCode(s search.Status) int {
	switch s {
	case search.StatusOK, search.StatusNotFound:
		return http.StatusOK
	default:
		return http.StatusBadGateway
	}
}

func queryFromRequest(c echo.Context) (ranking.Query, int, error) {
	title := c.QueryParam("query")
	if title == "" {
		return ranking.Query{}, 0, echo.NewHTTPError(http.StatusBadRequest, "query parameter is required")
	}
	q := ranking.Query{Title: title, Language: c.QueryParam("lang"), RawTitle: title}

	if yearStr := c.QueryParam("year"); yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil || y < 0 {
			return ranking.Query{}, 0, echo.NewHTTPError(http.StatusBadRequest, "invalid year")
		}
		q.Year = y
	}

	maxItems := -1
	if maxStr := c.QueryParam("max"); maxStr != "" {
		m, err := strconv.Atoi(maxStr)
		if err != nil || m < 0 {
			return ranking.Query{}, 0, echo.NewHTTPError(http.StatusBadRequest, "invalid max")
		}
		maxItems = m
	}
	return q, maxItems, nil
}

func serviceError(err error, notFound string) error {
	switch {
	case errors.Is(err, ErrNoProvidersConfigured):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no metadata providers configured")
	case errors.Is(err, ErrUnknownProvider):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	case errors.Is(err, ErrNoTitle):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
}

// SearchMovie searches for movies.
// GET /movie/search?query=...&lang=...&year=...&max=...
func (h *Handlers) SearchMovie(c echo.Context) error {
	q, maxItems, err := queryFromRequest(c)
	if err != nil {
		return err
	}

	result, err := h.service.SearchMovie(c.Request().Context(), q, maxItems)
	if err != nil {
		return serviceError(err, "movie not found")
	}
	return c.JSON(searchStatusCode(result.Status), newSearchResponse(result))
}

// SearchShow searches for TV series.
// GET /show/search?query=...&lang=...&year=...&max=...
func (h *Handlers) SearchShow(c echo.Context) error {
	q, maxItems, err := queryFromRequest(c)
	if err != nil {
		return err
	}

	result, err := h.service.SearchShow(c.Request().Context(), q, maxItems)
	if err != nil {
		return serviceError(err, "series not found")
	}
	return c.JSON(searchStatusCode(result.Status), newSearchResponse(result))
}

// GetMovie gets detailed movie info by TMDB ID.
// GET /movie/:id?lang=...
func (h *Handlers) GetMovie(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	result, err := h.service.GetMovie(c.Request().Context(), id, c.QueryParam("lang"))
	if err != nil {
		return serviceError(err, "movie not found")
	}
	return c.JSON(http.StatusOK, result)
}

// GetShow gets detailed series info.
// GET /show/:provider/:id?lang=...
func (h *Handlers) GetShow(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	result, err := h.service.GetShow(c.Request().Context(), c.Param("provider"), id, c.QueryParam("lang"))
	if err != nil {
		return serviceError(err, "series not found")
	}
	return c.JSON(http.StatusOK, result)
}

// GetEpisode gets one episode of a series.
// GET /show/:provider/:id/season/:season/episode/:episode?lang=...
func (h *Handlers) GetEpisode(c echo.Context) error {
	var nums [3]int
	for i, name := range []string{"id", "season", "episode"} {
		n, err := strconv.Atoi(c.Param(name))
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
		}
		nums[i] = n
	}

	result, err := h.service.GetEpisode(c.Request().Context(), c.Param("provider"), nums[0], nums[1], nums[2], c.QueryParam("lang"))
	if err != nil {
		return serviceError(err, "episode not found")
	}
	return c.JSON(http.StatusOK, result)
}

// IdentifyRequest is the body of POST /identify.
type IdentifyRequest struct {
	Path            string `json:"path"`
	Language        string `json:"language,omitempty"`
	DownloadArtwork bool   `json:"downloadArtwork,omitempty"`
}

// IdentifyResponse is an identification with optional artwork paths.
type IdentifyResponse struct {
	*Identification
	Artwork      map[ArtworkType]string `json:"artwork,omitempty"`
	ArtworkError string                 `json:"artworkError,omitempty"`
}

// Identify matches a file path against the providers.
// POST /identify
func (h *Handlers) Identify(c echo.Context) error {
	var req IdentifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "path is required")
	}

	ctx := c.Request().Context()
	id, err := h.service.Identify(ctx, req.Path, req.Language)
	if err != nil {
		return serviceError(err, "no match")
	}

	resp := IdentifyResponse{Identification: id}
	if req.DownloadArtwork && id.Matched() && h.artwork != nil {
		resp.Artwork, err = h.artwork.DownloadArtwork(ctx, id)
		if err != nil {
			resp.ArtworkError = err.Error()
		}
	}
	return c.JSON(searchStatusCode(id.Search.Status), resp)
}

// GetArtwork serves downloaded artwork.
// GET /artwork/:type/:provider/:id/:artworkType
func (h *Handlers) GetArtwork(c echo.Context) error {
	if h.artwork == nil {
		return echo.NewHTTPError(http.StatusNotFound, "artwork not enabled")
	}

	var ref ArtworkRef
	switch MediaType(c.Param("type")) {
	case MediaTypeMovie:
		ref.MediaType = MediaTypeMovie
	case MediaTypeSeries:
		ref.MediaType = MediaTypeSeries
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid media type, must be 'movie' or 'series'")
	}

	switch p := c.Param("provider"); p {
	case providerTMDB, providerTVDB:
		ref.Provider = p
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown provider")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ref.ID = id

	artworkType := ArtworkType(c.Param("artworkType"))
	if artworkType != ArtworkTypePoster && artworkType != ArtworkTypeBackdrop {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid artwork type, must be 'poster' or 'backdrop'")
	}

	path := h.artwork.GetArtworkPath(ref, artworkType)
	if path == "" {
		return echo.NewHTTPError(http.StatusNotFound, "artwork not found")
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.File(path)
}

// ClearCache clears the metadata cache.
// DELETE /cache
func (h *Handlers) ClearCache(c echo.Context) error {
	if err := h.service.ClearCache(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// StatusResponse represents the metadata service status.
type StatusResponse struct {
	Providers []ProviderStatus `json:"providers"`
	Language  string           `json:"language"`
	CacheSize int              `json:"cacheSize"`
}

// GetStatus tests the providers and reports their state.
// GET /status
func (h *Handlers) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{
		Providers: h.service.Status(c.Request().Context()),
		Language:  h.service.DefaultLanguage(),
		CacheSize: h.service.cache.Len(),
	})
}
