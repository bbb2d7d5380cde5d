package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/slipstream/mediascraper/internal/metadata/ranking"
	"github.com/slipstream/mediascraper/internal/metrics"
)

// FallbackLanguage is queried alongside every non-English search.
const FallbackLanguage = "en"

// maxRetries bounds the year-strip / year-drop re-query.
const maxRetries = 1

// Options configures a Coordinator for one provider.
type Options struct {
	Policy       ranking.BucketOrderPolicy
	Bucket       ranking.BucketOptions
	AdultAllowed bool
	// Parallel issues the native and English queries concurrently.
	Parallel bool
	// YearStrip enables the re-query with a year taken from the raw title.
	YearStrip bool
}

// Coordinator runs the native/English/year-strip search protocol against a
// single provider. It keeps no state between calls besides the injected cache.
type Coordinator struct {
	provider Provider
	opts     Options
	years    YearExtractor
	reauth   Reauthenticator
	logger   zerolog.Logger

	cacheMu sync.RWMutex
	cache   ResponseCache
}

// NewCoordinator creates a coordinator for provider.
func NewCoordinator(provider Provider, opts Options, logger zerolog.Logger) *Coordinator {
	if len(opts.Policy) == 0 {
		opts.Policy = ranking.TMDbPolicy
	}
	return &Coordinator{
		provider: provider,
		opts:     opts,
		logger:   logger.With().Str("component", "search").Str("provider", provider.Name()).Logger(),
	}
}

// SetYearExtractor sets the heuristic used for the year-strip retry.
func (c *Coordinator) SetYearExtractor(y YearExtractor) {
	c.years = y
}

// SetReauthenticator sets the hook fired when the provider answers 401.
func (c *Coordinator) SetReauthenticator(r Reauthenticator) {
	c.reauth = r
}

// SetCache sets the read-through response cache. nil disables caching.
// It is safe to call while searches are running.
func (c *Coordinator) SetCache(cache ResponseCache) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache = cache
}

func (c *Coordinator) responseCache() ResponseCache {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	return c.cache
}

// Provider returns the name of the provider this coordinator searches.
func (c *Coordinator) Provider() string {
	return c.provider.Name()
}

type state int

const (
	stateQueryNative state = iota
	stateQueryEnglish
	stateYearStrip
	stateMerge
	stateDone
)

type outcome int

const (
	outcomeOK outcome = iota
	outcomeNotFound
	outcomeAuth
	outcomeError
	outcomeParse
)

func (o outcome) String() string {
	switch o {
	case outcomeOK:
		return "ok"
	case outcomeNotFound:
		return "not_found"
	case outcomeAuth:
		return "auth_error"
	case outcomeParse:
		return "parse_error"
	default:
		return "error"
	}
}

// attempt is the bucketed response of one provider call.
type attempt struct {
	language string
	outcome  outcome
	bucketed ranking.BucketedResult
	err      error
}

type run struct {
	query   ranking.Query
	state   state
	retries int
	native  *attempt
	english *attempt
	result  Result
	logger  zerolog.Logger
}

// Search runs the full fallback protocol for q and returns at most maxItems
// hits (maxItems <= 0 means no limit). It never returns provider errors
// directly; they are reported through Result.Status and Result.Reason.
func (c *Coordinator) Search(ctx context.Context, q ranking.Query, maxItems int) Result {
	r := &run{
		query:  q,
		state:  stateQueryNative,
		logger: c.logger.With().Str("searchId", uuid.NewString()).Logger(),
	}

	r.logger.Debug().
		Str("title", q.Title).
		Int("year", q.Year).
		Str("language", q.Language).
		Msg("Starting search")

	for r.state != stateDone {
		switch r.state {
		case stateQueryNative:
			c.queryNative(ctx, r)
		case stateQueryEnglish:
			c.queryEnglish(ctx, r)
		case stateYearStrip:
			c.yearStrip(r)
		case stateMerge:
			c.merge(r, maxItems)
		}
	}

	r.result.Provider = c.provider.Name()
	metrics.SearchResultsTotal.WithLabelValues(c.provider.Name(), r.result.Status.String()).Inc()

	event := r.logger.Info()
	if r.result.Reason != nil {
		event = r.logger.Warn().Err(r.result.Reason)
	}
	event.
		Str("title", r.result.Query.Title).
		Int("year", r.result.Query.Year).
		Str("status", r.result.Status.String()).
		Str("language", r.result.Language).
		Int("results", len(r.result.Hits)).
		Int("bestDistance", r.result.BestDistance).
		Bool("reordered", r.result.Reordered).
		Msg("Search completed")

	return r.result
}

func (c *Coordinator) needsEnglish(q ranking.Query) bool {
	return q.Language != FallbackLanguage
}

func (c *Coordinator) queryNative(ctx context.Context, r *run) {
	q := r.query
	q.Language = strings.ToLower(strings.TrimSpace(q.Language))
	if q.Language == "" {
		q.Language = FallbackLanguage
	}
	r.query = q

	if c.opts.Parallel && c.needsEnglish(q) {
		var g errgroup.Group
		g.Go(func() error {
			r.native = c.attempt(ctx, r, q)
			return nil
		})
		g.Go(func() error {
			r.english = c.attempt(ctx, r, q.WithLanguage(FallbackLanguage))
			return nil
		})
		_ = g.Wait()

		if c.abortOnAuth(ctx, r, r.native) || c.keepNative(ctx, r) || c.abortOnAuth(ctx, r, r.english) {
			return
		}
		r.state = c.afterLanguages(r)
		return
	}

	r.native = c.attempt(ctx, r, q)
	if c.abortOnAuth(ctx, r, r.native) {
		return
	}
	if c.needsEnglish(q) {
		r.state = stateQueryEnglish
		return
	}
	r.state = c.afterLanguages(r)
}

func (c *Coordinator) queryEnglish(ctx context.Context, r *run) {
	r.english = c.attempt(ctx, r, r.query.WithLanguage(FallbackLanguage))
	if c.keepNative(ctx, r) || c.abortOnAuth(ctx, r, r.english) {
		return
	}
	r.state = c.afterLanguages(r)
}

// abortOnAuth ends the search when a was rejected with 401.
func (c *Coordinator) abortOnAuth(ctx context.Context, r *run, a *attempt) bool {
	if a == nil || a.outcome != outcomeAuth {
		return false
	}
	r.logger.Error().Err(a.err).Str("language", a.language).Msg("Provider rejected credentials, aborting search")
	c.reauthenticate(ctx, r)
	r.result = Result{
		Status:       StatusAuthError,
		Language:     a.language,
		Query:        r.query,
		BestDistance: -1,
		Reason:       a.err,
	}
	r.state = stateDone
	return true
}

// keepNative handles a 401 on the English comparison query when the native
// query already found hits: the native result is merged on its own and no
// retry follows.
func (c *Coordinator) keepNative(ctx context.Context, r *run) bool {
	if r.english == nil || r.english.outcome != outcomeAuth || !c.found(r.native) {
		return false
	}
	r.logger.Warn().Err(r.english.err).Msg("English query rejected credentials, keeping native results")
	c.reauthenticate(ctx, r)
	r.english = nil
	r.state = stateMerge
	return true
}

func (c *Coordinator) reauthenticate(ctx context.Context, r *run) {
	if c.reauth == nil {
		return
	}
	if err := c.reauth.Reauthenticate(ctx); err != nil {
		r.logger.Warn().Err(err).Msg("Reauthentication failed")
	}
}

func (c *Coordinator) afterLanguages(r *run) state {
	if c.found(r.native) || c.found(r.english) {
		return stateMerge
	}
	if r.retries >= maxRetries || !c.opts.YearStrip {
		return stateMerge
	}
	// Failures are reported as such; only a clean miss warrants a re-query.
	if failed(r.native) || failed(r.english) {
		return stateMerge
	}
	return stateYearStrip
}

func (c *Coordinator) yearStrip(r *run) {
	r.retries++
	q := r.query

	if q.HasYear() {
		r.logger.Debug().Int("year", q.Year).Msg("Nothing found, retrying without year")
		c.restart(r, q.WithoutYear())
		return
	}

	if c.years == nil {
		r.state = stateMerge
		return
	}
	title, year, ok := c.years.ExtractYear(q.Raw())
	if !ok || year <= 0 || title == "" {
		r.logger.Debug().Str("raw", q.Raw()).Msg("No year found in raw title")
		r.state = stateMerge
		return
	}

	r.logger.Debug().Str("title", title).Int("year", year).Msg("Nothing found, retrying with year from raw title")
	c.restart(r, q.WithTitleYear(title, year))
}

func (c *Coordinator) restart(r *run, q ranking.Query) {
	r.query = q
	r.native = nil
	r.english = nil
	r.state = stateQueryNative
}

func (c *Coordinator) merge(r *run, maxItems int) {
	r.state = stateDone
	r.result = Result{Query: r.query, BestDistance: -1}

	native, english := r.native, r.english
	nativeFound, englishFound := c.found(native), c.found(english)

	if !nativeFound && !englishFound {
		r.result.Status, r.result.Reason = failureStatus(native, english)
		if native != nil {
			r.result.Language = native.language
		}
		return
	}

	chosen, language := c.choose(r, native, english, nativeFound, englishFound)

	r.result.Status = StatusOK
	r.result.Language = language
	r.result.Hits = ranking.Flatten(chosen, c.opts.Policy, maxItems)
	if best, ok := chosen.BestDistance(); ok {
		r.result.BestDistance = best
	}
}

// choose picks the bucketed result to flatten. When both languages have
// probable hits and English matched strictly better, the native hits are
// returned in the English order.
func (c *Coordinator) choose(r *run, native, english *attempt, nativeFound, englishFound bool) (ranking.BucketedResult, string) {
	switch {
	case nativeFound && englishFound:
		nativeBest, nativeHas := native.bucketed.BestDistance()
		englishBest, englishHas := english.bucketed.BestDistance()
		switch {
		case nativeHas && englishHas:
			if englishBest < nativeBest {
				r.logger.Debug().
					Int("nativeBest", nativeBest).
					Int("englishBest", englishBest).
					Msg("English ranking matched better, reordering native results")
				metrics.LanguageReordersTotal.WithLabelValues(c.provider.Name()).Inc()
				r.result.Reordered = true
				return ranking.ReorderByReference(native.bucketed, english.bucketed), native.language
			}
			return native.bucketed, native.language
		case englishHas:
			return english.bucketed, english.language
		default:
			return native.bucketed, native.language
		}
	case nativeFound:
		return native.bucketed, native.language
	default:
		return english.bucketed, english.language
	}
}

func (c *Coordinator) found(a *attempt) bool {
	if a == nil || a.outcome != outcomeOK {
		return false
	}
	return len(ranking.Flatten(a.bucketed, c.opts.Policy, 1)) > 0
}

func failed(a *attempt) bool {
	return a != nil && (a.outcome == outcomeError || a.outcome == outcomeParse)
}

func failureStatus(attempts ...*attempt) (Status, error) {
	for _, a := range attempts {
		if a == nil {
			continue
		}
		switch a.outcome {
		case outcomeError:
			return StatusError, a.err
		case outcomeParse:
			return StatusParseError, a.err
		}
	}
	return StatusNotFound, nil
}

// attempt performs one provider call, consulting the cache first, and
// buckets the hits. Errors are captured, never returned.
func (c *Coordinator) attempt(ctx context.Context, r *run, q ranking.Query) *attempt {
	a := &attempt{language: q.Language}
	key := c.cacheKey(q)

	hits, cached := c.cacheGet(ctx, key)
	if !cached {
		var err error
		hits, err = c.provider.SearchByTitle(ctx, q.Title, q.Language, q.Year, c.opts.AdultAllowed)
		if err != nil {
			a.outcome = classify(err)
			a.err = err
		} else if len(hits) == 0 {
			a.outcome = outcomeNotFound
		} else {
			c.cachePut(ctx, key, hits)
		}
		metrics.ProviderRequestsTotal.WithLabelValues(c.provider.Name(), q.Language, a.outcome.String()).Inc()
	}

	if a.outcome == outcomeOK {
		a.bucketed = ranking.SortProbable(ranking.Bucket(hits, q, c.opts.Bucket))
	}

	event := r.logger.Debug()
	if a.outcome == outcomeError || a.outcome == outcomeParse {
		event = r.logger.Warn().Err(a.err)
	}
	event.
		Str("title", q.Title).
		Int("year", q.Year).
		Str("language", q.Language).
		Bool("cached", cached).
		Str("outcome", a.outcome.String()).
		Int("probable", len(a.bucketed.Probable)).
		Int("noBanner", len(a.bucketed.NoBanner)).
		Int("noPoster", len(a.bucketed.NoPoster)).
		Int("numericSlug", len(a.bucketed.NumericSlug)).
		Msg("Provider search attempt")

	return a
}

func classify(err error) outcome {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return outcomeAuth
	case errors.Is(err, ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, ErrMalformed):
		return outcomeParse
	default:
		return outcomeError
	}
}

func (c *Coordinator) cacheKey(q ranking.Query) string {
	return fmt.Sprintf("%s|%s|%d|%s", c.provider.Name(), cases.Fold().String(q.Title), q.Year, q.Language)
}

func (c *Coordinator) cacheGet(ctx context.Context, key string) ([]ranking.RawHit, bool) {
	cache := c.responseCache()
	if cache == nil {
		return nil, false
	}
	hits, ok := cache.Get(ctx, key)
	if ok && len(hits) > 0 {
		metrics.CacheHitsTotal.Inc()
		return hits, true
	}
	metrics.CacheMissesTotal.Inc()
	return nil, false
}

func (c *Coordinator) cachePut(ctx context.Context, key string, hits []ranking.RawHit) {
	cache := c.responseCache()
	if cache == nil {
		return
	}
	cache.Put(ctx, key, hits)
}
