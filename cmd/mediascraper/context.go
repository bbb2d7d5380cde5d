package main

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/slipstream/mediascraper/internal/config"
	"github.com/slipstream/mediascraper/internal/logger"
	"github.com/slipstream/mediascraper/internal/metadata"
)

const redisConnectTimeout = 3 * time.Second

type commandContext struct {
	configFlag *string
	langFlag   *string
	outputFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	// recordLogs keeps recent entries in memory for the log endpoints.
	recordLogs bool

	serviceOnce sync.Once
	log         *logger.Logger
	service     *metadata.Service
	closers     []func() error
}

func newCommandContext(configFlag, langFlag, outputFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		langFlag:   langFlag,
		outputFlag: outputFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureService builds the logger and metadata service once per invocation.
// Logs go to the command's stderr so table and JSON output stay clean.
func (c *commandContext) ensureService(cmd *cobra.Command) (*metadata.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	c.serviceOnce.Do(func() {
		recent := 0
		if c.recordLogs {
			recent = 1000
		}
		c.log = logger.New(logger.Config{
			Level:         cfg.Logging.Level,
			Format:        cfg.Logging.Format,
			Path:          cfg.Logging.Path,
			MaxSizeMB:     cfg.Logging.MaxSizeMB,
			MaxBackups:    cfg.Logging.MaxBackups,
			MaxAgeDays:    cfg.Logging.MaxAgeDays,
			Compress:      cfg.Logging.Compress,
			Out:           cmd.ErrOrStderr(),
			RecentEntries: recent,
		})
		c.closers = append(c.closers, c.log.Close)

		c.service = metadata.NewService(&cfg.Metadata, c.log.Logger)

		if cfg.Metadata.Cache.RedisAddr != "" {
			ctx, cancel := context.WithTimeout(cmd.Context(), redisConnectTimeout)
			defer cancel()
			cache, err := metadata.NewRedisCache(ctx, cfg.Metadata.Cache, c.log.Logger)
			if err != nil {
				c.log.Warn().Err(err).
					Str("addr", cfg.Metadata.Cache.RedisAddr).
					Msg("Redis unavailable, using in-memory response cache")
				return
			}
			c.service.SetResponseCache(cache)
			c.closers = append(c.closers, cache.Close)
		}
	})
	return c.service, nil
}

func (c *commandContext) language() string {
	if c.langFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.langFlag)
}

func (c *commandContext) output() outputFormat {
	if c.outputFlag == nil {
		return outputTable
	}
	f, _ := parseOutputFormat(*c.outputFlag)
	return f
}

func (c *commandContext) close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errs...)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
