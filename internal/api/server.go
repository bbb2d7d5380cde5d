package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	apimw "github.com/slipstream/mediascraper/internal/api/middleware"
	"github.com/slipstream/mediascraper/internal/api/ratelimit"
	"github.com/slipstream/mediascraper/internal/config"
	"github.com/slipstream/mediascraper/internal/library/scanner"
	"github.com/slipstream/mediascraper/internal/metadata"
	"github.com/slipstream/mediascraper/internal/metrics"
	"github.com/slipstream/mediascraper/internal/scheduler"
	"github.com/slipstream/mediascraper/internal/scheduler/tasks"
)

// Version is reported by the status endpoint. Set at build time.
var Version = "0.0.1-dev"

// Server handles HTTP requests for the mediascraper API.
type Server struct {
	echo      *echo.Echo
	logger    zerolog.Logger
	cfg       *config.Config
	startTime time.Time

	metadataService   *metadata.Service
	artworkDownloader *metadata.ArtworkDownloader
	scannerService    *scanner.Service
	rateLimiter       *ratelimit.Limiter
	scheduler         *scheduler.Scheduler
	registry          *prometheus.Registry
	logs              LogsProvider
}

// NewServer creates a new API server around an existing metadata service.
// logs may be nil, in which case the log endpoints are not registered.
func NewServer(cfg *config.Config, svc *metadata.Service, logs LogsProvider, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:            e,
		logger:          logger.With().Str("component", "api").Logger(),
		cfg:             cfg,
		startTime:       time.Now(),
		metadataService: svc,
		scannerService:  scanner.NewService(logger),
		registry:        prometheus.NewRegistry(),
		logs:            logs,
	}

	s.artworkDownloader = metadata.NewArtworkDownloader(cfg.Metadata.Artwork, logger)

	if cfg.Server.RateLimit > 0 {
		s.rateLimiter = ratelimit.NewLimiter(cfg.Server.RateLimit, time.Minute)
	}

	sched, err := scheduler.New(logger)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to initialize scheduler")
	} else {
		s.scheduler = sched
		s.registerTasks()
	}

	metrics.Register(s.registry)
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) registerTasks() {
	health := tasks.NewProviderHealthTask(s.metadataService, s.logger)
	if err := tasks.RegisterProviderHealthTask(s.scheduler, health, s.cfg.Server.HealthCheckCron); err != nil {
		s.logger.Error().Err(err).Msg("Failed to register provider health task")
	}
	if s.rateLimiter != nil {
		if err := tasks.RegisterRateLimitCleanupTask(s.scheduler, s.rateLimiter); err != nil {
			s.logger.Error().Err(err).Msg("Failed to register rate limit cleanup task")
		}
	}
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(apimw.SecurityHeaders())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := s.echo.Group("/api/v1")
	api.GET("/status", s.getStatus)

	// Provider lookups share the rate limit.
	var lookup []echo.MiddlewareFunc
	if s.rateLimiter != nil {
		lookup = append(lookup, s.rateLimiter.Middleware())
	}

	metadataHandlers := metadata.NewHandlers(s.metadataService, s.artworkDownloader)
	metadataHandlers.RegisterRoutes(api.Group("/metadata", lookup...))

	api.POST("/scan", s.scanFolder, lookup...)

	if s.logs != nil {
		NewLogsHandlers(s.logs).RegisterRoutes(api.Group("/logs"))
	}

	if s.scheduler != nil {
		api.GET("/tasks", s.listTasks)
		api.POST("/tasks/:id/run", s.runTask)
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")

	if s.scheduler != nil {
		s.scheduler.Start()
	}

	err := s.echo.Start(address)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	if s.scheduler != nil {
		if err := s.scheduler.Stop(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to stop scheduler")
		}
	}

	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// --- Handler implementations ---

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"version":        Version,
		"startTime":      s.startTime.Format(time.RFC3339),
		"uptimeSeconds":  int(time.Since(s.startTime).Seconds()),
		"language":       s.metadataService.DefaultLanguage(),
		"movieProvider":  s.metadataService.HasMovieProvider(),
		"seriesProvider": s.metadataService.HasSeriesProvider(),
		"rateLimit":      s.cfg.Server.RateLimit,
	})
}

func (s *Server) listTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.scheduler.ListTasks())
}

func (s *Server) runTask(c echo.Context) error {
	err := s.scheduler.RunNow(c.Param("id"))
	switch {
	case errors.Is(err, scheduler.ErrTaskNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, scheduler.ErrTaskRunning):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}

// ScanRequest is the body of POST /scan.
type ScanRequest struct {
	Path            string `json:"path"`
	Kind            string `json:"kind,omitempty"`
	Language        string `json:"language,omitempty"`
	Workers         int    `json:"workers,omitempty"`
	DownloadArtwork bool   `json:"downloadArtwork,omitempty"`
}

// ScanResponse summarizes a folder scan and the identification of each file.
type ScanResponse struct {
	RootPath   string                        `json:"rootPath"`
	Kind       scanner.Kind                  `json:"kind"`
	TotalFiles int                           `json:"totalFiles"`
	Skipped    int                           `json:"skipped"`
	Matched    int                           `json:"matched"`
	Errors     []scanner.ScanError           `json:"errors"`
	Results    []metadata.FileIdentification `json:"results"`
}

func (s *Server) scanFolder(c echo.Context) error {
	var req ScanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "path is required")
	}
	kind, err := scanner.ParseKind(req.Kind)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if info, err := os.Stat(req.Path); err != nil || !info.IsDir() {
		return echo.NewHTTPError(http.StatusBadRequest, "path is not a readable directory")
	}

	workers := req.Workers
	if workers <= 0 {
		workers = s.cfg.Scan.Workers
	}

	ctx := c.Request().Context()
	scan, err := s.scannerService.ScanFolder(ctx, req.Path, kind, nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	results, err := s.metadataService.IdentifyFiles(ctx, scan.Files(), req.Language, workers, nil)
	if errors.Is(err, metadata.ErrNoProvidersConfigured) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := ScanResponse{
		RootPath:   scan.RootPath,
		Kind:       scan.Kind,
		TotalFiles: scan.TotalFiles,
		Skipped:    scan.Skipped,
		Errors:     scan.Errors,
		Results:    results,
	}
	for _, r := range results {
		if r.Identification == nil || !r.Identification.Matched() {
			continue
		}
		resp.Matched++
		if req.DownloadArtwork {
			if _, err := s.artworkDownloader.DownloadArtwork(ctx, r.Identification); err != nil {
				s.logger.Warn().Err(err).Str("path", r.Path).Msg("Artwork download failed")
			}
		}
	}

	return c.JSON(http.StatusOK, resp)
}
