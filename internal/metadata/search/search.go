// Package search runs a provider search across the caller's language and
// English and picks the final candidate ordering.
package search

import (
	"context"
	"errors"

	"github.com/slipstream/mediascraper/internal/metadata/ranking"
)

// Errors providers return so the coordinator can classify failures.
var (
	ErrUnauthorized = errors.New("provider rejected credentials")
	ErrNotFound     = errors.New("no matching entries")
	ErrMalformed    = errors.New("malformed provider response")
)

// Status is the final outcome of a search.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
	StatusAuthError
	StatusError
	StatusParseError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OKAY"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusAuthError:
		return "AUTH_ERROR"
	case StatusError:
		return "ERROR"
	case StatusParseError:
		return "ERROR_PARSER"
	default:
		return "UNKNOWN"
	}
}

// MarshalText lets Status render as its name in JSON and YAML.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Provider performs one title search against a metadata source.
type Provider interface {
	Name() string
	SearchByTitle(ctx context.Context, title, language string, year int, adult bool) ([]ranking.RawHit, error)
}

// YearExtractor splits a trailing release year off a raw title.
type YearExtractor interface {
	ExtractYear(raw string) (title string, year int, ok bool)
}

// YearExtractorFunc adapts a function to YearExtractor.
type YearExtractorFunc func(raw string) (string, int, bool)

func (f YearExtractorFunc) ExtractYear(raw string) (string, int, bool) {
	return f(raw)
}

// Reauthenticator refreshes provider credentials after a 401.
type Reauthenticator interface {
	Reauthenticate(ctx context.Context) error
}

// ResponseCache stores successful provider responses.
// Implementations must be safe for concurrent use.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]ranking.RawHit, bool)
	Put(ctx context.Context, key string, hits []ranking.RawHit)
}

// Result is the ranked outcome of one search call.
type Result struct {
	Status   Status           `json:"status" yaml:"status"`
	Provider string           `json:"provider" yaml:"provider"`
	Language string           `json:"language,omitempty" yaml:"language,omitempty"`
	Query    ranking.Query    `json:"query" yaml:"query"`
	Hits     []ranking.RawHit `json:"hits" yaml:"hits"`
	// BestDistance is the edit distance of the best probable hit, -1 if none.
	BestDistance int   `json:"bestDistance" yaml:"bestDistance"`
	Reordered    bool  `json:"reordered,omitempty" yaml:"reordered,omitempty"`
	Reason       error `json:"-" yaml:"-"`
}

// Top returns the first hit.
func (r Result) Top() (ranking.RawHit, bool) {
	if len(r.Hits) == 0 {
		return ranking.RawHit{}, false
	}
	return r.Hits[0], true
}
