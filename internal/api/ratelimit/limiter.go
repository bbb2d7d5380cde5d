// Package ratelimit throttles clients of the lookup endpoints so one caller
// cannot burn through the shared provider quota.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	DefaultRequestsPerMinute = 60
	DefaultWindow            = time.Minute
)

type ipBucket struct {
	count     int
	resetTime time.Time
}

// Limiter is a fixed-window request counter per client IP.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*ipBucket
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewLimiter allows limit requests per window and client. A limit of zero
// or less uses DefaultRequestsPerMinute.
func NewLimiter(limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultRequestsPerMinute
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		buckets: make(map[string]*ipBucket),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (l *Limiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, retry := l.Allow(c.RealIP())
			if !ok {
				seconds := int(retry.Round(time.Second) / time.Second)
				if seconds < 1 {
					seconds = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
			}
			return next(c)
		}
	}
}

// Allow counts a request from ip. When the limit is reached it returns
// false and the time until the window resets.
func (l *Limiter) Allow(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	bucket, exists := l.buckets[ip]
	if !exists || now.After(bucket.resetTime) {
		l.buckets[ip] = &ipBucket{
			count:     1,
			resetTime: now.Add(l.window),
		}
		return true, 0
	}

	if bucket.count >= l.limit {
		return false, bucket.resetTime.Sub(now)
	}

	bucket.count++
	return true, 0
}

// Cleanup drops expired buckets.
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for ip, bucket := range l.buckets {
		if now.After(bucket.resetTime) {
			delete(l.buckets, ip)
		}
	}
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
