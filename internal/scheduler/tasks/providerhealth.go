package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/slipstream/mediascraper/internal/metadata"
	"github.com/slipstream/mediascraper/internal/metrics"
	"github.com/slipstream/mediascraper/internal/scheduler"
)

// ProviderStatusChecker reports provider reachability.
type ProviderStatusChecker interface {
	Status(ctx context.Context) []metadata.ProviderStatus
}

// ProviderHealthTask probes the metadata providers and publishes the
// result as the provider_up gauge.
type ProviderHealthTask struct {
	checker ProviderStatusChecker
	logger  zerolog.Logger
}

// NewProviderHealthTask creates a provider health task.
func NewProviderHealthTask(checker ProviderStatusChecker, logger zerolog.Logger) *ProviderHealthTask {
	return &ProviderHealthTask{
		checker: checker,
		logger:  logger.With().Str("task", "provider-health").Logger(),
	}
}

// Run checks every configured provider. It fails when a configured
// provider is unreachable so the scheduler records the error.
func (t *ProviderHealthTask) Run(ctx context.Context) error {
	var down []string
	for _, s := range t.checker.Status(ctx) {
		up := 0.0
		if s.Configured && s.Reachable {
			up = 1
		}
		metrics.ProviderUp.WithLabelValues(s.Name).Set(up)

		if s.Configured && !s.Reachable {
			t.logger.Warn().Str("provider", s.Name).Str("error", s.Error).Msg("Provider unreachable")
			down = append(down, s.Name)
		}
	}
	if len(down) > 0 {
		return fmt.Errorf("%w: %s", errProvidersDown, strings.Join(down, ", "))
	}
	return nil
}

var errProvidersDown = errors.New("providers unreachable")

// RegisterProviderHealthTask schedules the provider probe. An empty cron
// expression disables it.
func RegisterProviderHealthTask(sched *scheduler.Scheduler, task *ProviderHealthTask, cron string) error {
	if cron == "" {
		return nil
	}
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "provider-health",
		Name:        "Provider Health Check",
		Description: "Tests TMDB and TheTVDB credentials and reachability",
		Cron:        cron,
		RunOnStart:  true,
		Func:        task.Run,
	})
}
