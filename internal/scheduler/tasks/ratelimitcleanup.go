package tasks

import (
	"context"

	"github.com/slipstream/mediascraper/internal/scheduler"
)

// Cleaner drops expired state.
type Cleaner interface {
	Cleanup()
}

// RegisterRateLimitCleanupTask prunes expired rate limit buckets every five minutes.
func RegisterRateLimitCleanupTask(sched *scheduler.Scheduler, limiter Cleaner) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "ratelimit-cleanup",
		Name:        "Rate Limit Cleanup",
		Description: "Forgets clients whose rate limit window has expired",
		Cron:        "*/5 * * * *",
		Func: func(context.Context) error {
			limiter.Cleanup()
			return nil
		},
	})
}
