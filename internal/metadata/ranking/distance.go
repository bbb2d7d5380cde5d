package ranking

import (
	"github.com/adrg/strutil/metrics"
)

// levenshtein is read-only after init and safe to share between goroutines.
var levenshtein = &metrics.Levenshtein{
	CaseSensitive: false,
	InsertCost:    1,
	DeleteCost:    1,
	ReplaceCost:   1,
}

// Distance returns the case-insensitive Levenshtein distance between a and b.
// An empty string is at the length of the other string.
func Distance(a, b string) int {
	return levenshtein.Distance(a, b)
}

// Score computes the edit distance between the query title and a hit.
// The original title is only considered when the provider supplied one.
func Score(title string, hit RawHit) int {
	d := Distance(title, hit.Title)
	if hit.OriginalTitle == "" {
		return d
	}
	if od := Distance(title, hit.OriginalTitle); od < d {
		return od
	}
	return d
}
