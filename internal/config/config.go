package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider names accepted in search.show_provider_order.
const (
	ProviderTMDB = "tmdb"
	ProviderTVDB = "tvdb"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Metadata MetadataConfig `mapstructure:",squash"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// RateLimit is the number of lookup requests allowed per minute and
	// client IP. Zero disables limiting.
	RateLimit int `mapstructure:"rate_limit"`
	// HealthCheckCron schedules the provider probe. Empty disables it.
	HealthCheckCron string `mapstructure:"health_check_cron"`
}

// ScanConfig controls batch identification of scanned folders.
type ScanConfig struct {
	Workers int `mapstructure:"workers"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// MetadataConfig groups everything the metadata service needs.
type MetadataConfig struct {
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	TVDB    TVDBConfig    `mapstructure:"tvdb"`
	Search  SearchConfig  `mapstructure:"search"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Artwork ArtworkConfig `mapstructure:"artwork"`
}

// TMDBConfig holds TheMovieDB client settings.
type TMDBConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	ImageBaseURL string `mapstructure:"image_base_url"`
	Timeout      int    `mapstructure:"timeout"` // seconds
	IncludeAdult bool   `mapstructure:"include_adult"`
}

// TVDBConfig holds TheTVDB client settings.
type TVDBConfig struct {
	APIKey  string `mapstructure:"api_key"`
	PIN     string `mapstructure:"pin"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // seconds
	// ExcludedIDs are series IDs never offered as candidates.
	ExcludedIDs []int `mapstructure:"excluded_ids"`
}

// SearchConfig controls the language fallback protocol.
type SearchConfig struct {
	Language          string   `mapstructure:"language"`
	MaxItems          int      `mapstructure:"max_items"`
	ParallelLanguages bool     `mapstructure:"parallel_languages"`
	YearStrip         bool     `mapstructure:"year_strip"`
	ShowProviderOrder []string `mapstructure:"show_provider_order"`
}

// CacheConfig selects and sizes the provider response cache.
// A non-empty RedisAddr switches from the in-process LRU to Redis.
type CacheConfig struct {
	Size          int           `mapstructure:"size"`
	TTL           time.Duration `mapstructure:"ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

// ArtworkConfig holds artwork download settings.
type ArtworkConfig struct {
	BaseDir string `mapstructure:"base_dir"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			RateLimit:       60,
			HealthCheckCron: "*/15 * * * *",
		},
		Scan: ScanConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Metadata: MetadataConfig{
			TMDB: TMDBConfig{
				BaseURL:      "https://api.themoviedb.org/3",
				ImageBaseURL: "https://image.tmdb.org/t/p",
				Timeout:      30,
			},
			TVDB: TVDBConfig{
				BaseURL: "https://api4.thetvdb.com/v4",
				Timeout: 30,
			},
			Search: SearchConfig{
				Language:          "en",
				MaxItems:          10,
				YearStrip:         true,
				ShowProviderOrder: []string{ProviderTVDB, ProviderTMDB},
			},
			Cache: CacheConfig{
				Size: 512,
				TTL:  24 * time.Hour,
			},
			Artwork: ArtworkConfig{
				BaseDir: "./data/artwork",
				Timeout: 60,
			},
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.mediascraper")
	}

	v.SetEnvPrefix("MEDIASCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Metadata.ApplyEmbeddedKeys()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	d := Default()

	// Server defaults
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)
	v.SetDefault("server.health_check_cron", d.Server.HealthCheckCron)

	v.SetDefault("scan.workers", d.Scan.Workers)

	// Logging defaults
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", d.Logging.Compress)

	// Provider defaults
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", d.Metadata.TMDB.BaseURL)
	v.SetDefault("tmdb.image_base_url", d.Metadata.TMDB.ImageBaseURL)
	v.SetDefault("tmdb.timeout", d.Metadata.TMDB.Timeout)
	v.SetDefault("tmdb.include_adult", false)

	v.SetDefault("tvdb.api_key", "")
	v.SetDefault("tvdb.pin", "")
	v.SetDefault("tvdb.base_url", d.Metadata.TVDB.BaseURL)
	v.SetDefault("tvdb.timeout", d.Metadata.TVDB.Timeout)
	v.SetDefault("tvdb.excluded_ids", []int{})

	// Search defaults
	v.SetDefault("search.language", d.Metadata.Search.Language)
	v.SetDefault("search.max_items", d.Metadata.Search.MaxItems)
	v.SetDefault("search.parallel_languages", false)
	v.SetDefault("search.year_strip", d.Metadata.Search.YearStrip)
	v.SetDefault("search.show_provider_order", d.Metadata.Search.ShowProviderOrder)

	// Cache defaults
	v.SetDefault("cache.size", d.Metadata.Cache.Size)
	v.SetDefault("cache.ttl", d.Metadata.Cache.TTL)
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	// Artwork defaults
	v.SetDefault("artwork.base_dir", d.Metadata.Artwork.BaseDir)
	v.SetDefault("artwork.timeout", d.Metadata.Artwork.Timeout)
}

// ApplyEmbeddedKeys fills empty API keys with the build-time defaults.
func (m *MetadataConfig) ApplyEmbeddedKeys() {
	if m.TMDB.APIKey == "" {
		m.TMDB.APIKey = EmbeddedTMDBKey
	}
	if m.TVDB.APIKey == "" {
		m.TVDB.APIKey = EmbeddedTVDBKey
	}
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	var errs []error

	s := c.Metadata.Search
	if len(s.Language) != 2 {
		errs = append(errs, fmt.Errorf("search.language must be an ISO 639-1 code, got %q", s.Language))
	}
	if s.MaxItems < 0 {
		errs = append(errs, fmt.Errorf("search.max_items must not be negative, got %d", s.MaxItems))
	}
	if len(s.ShowProviderOrder) == 0 {
		errs = append(errs, errors.New("search.show_provider_order must name at least one provider"))
	}
	for i, name := range s.ShowProviderOrder {
		if name != ProviderTMDB && name != ProviderTVDB {
			errs = append(errs, fmt.Errorf("search.show_provider_order: unknown provider %q", name))
		} else if slices.Index(s.ShowProviderOrder, name) != i {
			errs = append(errs, fmt.Errorf("search.show_provider_order: duplicate provider %q", name))
		}
	}
	if c.Metadata.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("cache.size must not be negative, got %d", c.Metadata.Cache.Size))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must not be negative, got %d", c.Server.RateLimit))
	}
	if c.Scan.Workers < 1 {
		errs = append(errs, fmt.Errorf("scan.workers must be at least 1, got %d", c.Scan.Workers))
	}

	return errors.Join(errs...)
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
