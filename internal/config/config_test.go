package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.Server, cfg.Server)
	assert.Equal(t, want.Metadata.TMDB.BaseURL, cfg.Metadata.TMDB.BaseURL)
	assert.Equal(t, want.Metadata.TVDB.BaseURL, cfg.Metadata.TVDB.BaseURL)
	assert.Equal(t, "en", cfg.Metadata.Search.Language)
	assert.Equal(t, 10, cfg.Metadata.Search.MaxItems)
	assert.True(t, cfg.Metadata.Search.YearStrip)
	assert.Equal(t, []string{ProviderTVDB, ProviderTMDB}, cfg.Metadata.Search.ShowProviderOrder)
	assert.Equal(t, 24*time.Hour, cfg.Metadata.Cache.TTL)
	assert.Empty(t, cfg.Metadata.Cache.RedisAddr)
	assert.Equal(t, 4, cfg.Scan.Workers)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  rate_limit: 0
scan:
  workers: 8
logging:
  level: debug
tmdb:
  api_key: file-key
  include_adult: true
tvdb:
  pin: "1234"
  excluded_ids: [11, 12]
search:
  language: fr
  max_items: 3
  parallel_languages: true
  show_provider_order: [tmdb]
cache:
  ttl: 90m
  redis_addr: localhost:6379
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0, cfg.Server.RateLimit)
	assert.Equal(t, 8, cfg.Scan.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "file-key", cfg.Metadata.TMDB.APIKey)
	assert.True(t, cfg.Metadata.TMDB.IncludeAdult)
	assert.Equal(t, "1234", cfg.Metadata.TVDB.PIN)
	assert.Equal(t, []int{11, 12}, cfg.Metadata.TVDB.ExcludedIDs)
	assert.Equal(t, "fr", cfg.Metadata.Search.Language)
	assert.Equal(t, 3, cfg.Metadata.Search.MaxItems)
	assert.True(t, cfg.Metadata.Search.ParallelLanguages)
	assert.Equal(t, []string{ProviderTMDB}, cfg.Metadata.Search.ShowProviderOrder)
	assert.Equal(t, 90*time.Minute, cfg.Metadata.Cache.TTL)
	assert.Equal(t, "localhost:6379", cfg.Metadata.Cache.RedisAddr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "tmdb:\n  api_key: file-key\n")
	t.Setenv("MEDIASCRAPER_TMDB_API_KEY", "env-key")
	t.Setenv("MEDIASCRAPER_SEARCH_LANGUAGE", "de")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Metadata.TMDB.APIKey)
	assert.Equal(t, "de", cfg.Metadata.Search.Language)
}

func TestLoad_EmbeddedKeys(t *testing.T) {
	oldTMDB, oldTVDB := EmbeddedTMDBKey, EmbeddedTVDBKey
	t.Cleanup(func() { EmbeddedTMDBKey, EmbeddedTVDBKey = oldTMDB, oldTVDB })
	EmbeddedTMDBKey = "embedded-tmdb"
	EmbeddedTVDBKey = "embedded-tvdb"

	cfg, err := Load(writeConfig(t, "tvdb:\n  api_key: configured\n"))
	require.NoError(t, err)

	assert.Equal(t, "embedded-tmdb", cfg.Metadata.TMDB.APIKey)
	assert.Equal(t, "configured", cfg.Metadata.TVDB.APIKey)
}

func TestLoad_InvalidFile(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad language", func(c *Config) { c.Metadata.Search.Language = "french" }, "search.language"},
		{"negative max", func(c *Config) { c.Metadata.Search.MaxItems = -1 }, "search.max_items"},
		{"unknown provider", func(c *Config) { c.Metadata.Search.ShowProviderOrder = []string{"imdb"} }, "unknown provider"},
		{"duplicate provider", func(c *Config) { c.Metadata.Search.ShowProviderOrder = []string{"tmdb", "tmdb"} }, "duplicate provider"},
		{"no providers", func(c *Config) { c.Metadata.Search.ShowProviderOrder = nil }, "at least one provider"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"negative rate limit", func(c *Config) { c.Server.RateLimit = -5 }, "server.rate_limit"},
		{"no workers", func(c *Config) { c.Scan.Workers = 0 }, "scan.workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	assert.Equal(t, "127.0.0.1:8080", s.Address())
}
