package tasks

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/mediascraper/internal/metadata"
	"github.com/slipstream/mediascraper/internal/metrics"
	"github.com/slipstream/mediascraper/internal/scheduler"
)

type fakeChecker []metadata.ProviderStatus

func (f fakeChecker) Status(context.Context) []metadata.ProviderStatus { return f }

type countingCleaner struct{ calls int }

func (c *countingCleaner) Cleanup() { c.calls++ }

func TestProviderHealthTask(t *testing.T) {
	healthy := fakeChecker{
		{Name: "tmdb", Configured: true, Reachable: true},
		{Name: "tvdb", Configured: false},
	}
	require.NoError(t, NewProviderHealthTask(healthy, zerolog.Nop()).Run(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProviderUp.WithLabelValues("tmdb")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.ProviderUp.WithLabelValues("tvdb")))

	down := fakeChecker{{Name: "tmdb", Configured: true, Error: "401"}}
	err := NewProviderHealthTask(down, zerolog.Nop()).Run(context.Background())
	require.ErrorIs(t, err, errProvidersDown)
	assert.Contains(t, err.Error(), "tmdb")
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.ProviderUp.WithLabelValues("tmdb")))
}

func TestRegisterTasks(t *testing.T) {
	sched, err := scheduler.New(zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Stop() })

	task := NewProviderHealthTask(fakeChecker{}, zerolog.Nop())
	require.NoError(t, RegisterProviderHealthTask(sched, task, ""))
	assert.Empty(t, sched.ListTasks())

	require.NoError(t, RegisterProviderHealthTask(sched, task, "*/15 * * * *"))
	cleaner := &countingCleaner{}
	require.NoError(t, RegisterRateLimitCleanupTask(sched, cleaner))

	tasks := sched.ListTasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "provider-health", tasks[0].ID)
	assert.Equal(t, "ratelimit-cleanup", tasks[1].ID)
}
