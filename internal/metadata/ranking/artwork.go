package ranking

import (
	"regexp"
	"strings"
)

// Placeholder artwork the providers return instead of an empty path.
var missingArtworkSuffixes = []string{
	"missing/series.jpg",
	"missing/movie.jpg",
}

var numericSlugPattern = regexp.MustCompile(`^[0-9]+$`)

// ClassifyOptions carries the provider-specific classification quirks.
type ClassifyOptions struct {
	// NumericSlugDemotion moves hits with a purely numeric slug out of the
	// probable bucket. Only the legacy provider auto-generates such entries.
	NumericSlugDemotion bool
}

// Classify assigns exactly one ArtworkClass to hit.
// A missing backdrop wins over a missing poster.
func Classify(hit RawHit, opts ClassifyOptions) ArtworkClass {
	if !hasArtwork(hit.BackdropPath) {
		return MissingBackdrop
	}
	if !hasArtwork(hit.PosterPath) {
		return MissingPoster
	}
	if opts.NumericSlugDemotion && numericSlugPattern.MatchString(hit.Slug) {
		return NumericIdentifier
	}
	return HasArtwork
}

func hasArtwork(path string) bool {
	path = strings.TrimSpace(path)
	if path == "" {
		return false
	}
	for _, suffix := range missingArtworkSuffixes {
		if strings.HasSuffix(path, suffix) {
			return false
		}
	}
	return true
}
