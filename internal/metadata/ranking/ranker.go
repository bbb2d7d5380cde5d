package ranking

import (
	"fmt"
	"slices"
	"strings"
)

// BucketName identifies one bucket of a BucketedResult.
type BucketName string

const (
	BucketProbable    BucketName = "probable"
	BucketNoBanner    BucketName = "noBanner"
	BucketNoPoster    BucketName = "noPoster"
	BucketNumericSlug BucketName = "numericSlug"
)

// BucketOrderPolicy lists the buckets to flatten, in priority order.
// Buckets not listed are dropped from the final result.
type BucketOrderPolicy []BucketName

var (
	// TMDbPolicy keeps hits without a backdrop after the scored ones.
	TMDbPolicy = BucketOrderPolicy{BucketProbable, BucketNoBanner, BucketNumericSlug}

	// LegacyPolicy never offers hits without a banner.
	LegacyPolicy = BucketOrderPolicy{BucketProbable, BucketNumericSlug}
)

// ParsePolicy parses a comma separated list of bucket names.
func ParsePolicy(s string) (BucketOrderPolicy, error) {
	var policy BucketOrderPolicy
	for _, part := range strings.Split(s, ",") {
		name := BucketName(strings.TrimSpace(part))
		switch name {
		case "":
			continue
		case BucketProbable, BucketNoBanner, BucketNoPoster, BucketNumericSlug:
			if slices.Contains(policy, name) {
				return nil, fmt.Errorf("duplicate bucket %q", name)
			}
			policy = append(policy, name)
		default:
			return nil, fmt.Errorf("unknown bucket %q", name)
		}
	}
	if len(policy) == 0 {
		return nil, fmt.Errorf("empty bucket order policy")
	}
	return policy, nil
}

// SortProbable returns a copy of b whose Probable bucket is ordered by
// ascending edit distance. Ties keep provider order.
func SortProbable(b BucketedResult) BucketedResult {
	sorted := slices.Clone(b.Probable)
	slices.SortStableFunc(sorted, func(x, y ScoredCandidate) int {
		return x.EditDistance - y.EditDistance
	})
	b.Probable = sorted
	return b
}

// Flatten concatenates the buckets named by policy without re-sorting and
// truncates the result to maxItems when maxItems is positive.
func Flatten(b BucketedResult, policy BucketOrderPolicy, maxItems int) []RawHit {
	out := make([]RawHit, 0, b.Len())
	for _, name := range policy {
		switch name {
		case BucketProbable:
			for _, c := range b.Probable {
				out = append(out, c.Hit)
			}
		case BucketNoBanner:
			out = append(out, b.NoBanner...)
		case BucketNoPoster:
			out = append(out, b.NoPoster...)
		case BucketNumericSlug:
			out = append(out, b.NumericSlug...)
		}
	}
	if maxItems > 0 && len(out) > maxItems {
		out = out[:maxItems]
	}
	return out
}

// Rank sorts the probable bucket and flattens b according to policy.
func Rank(b BucketedResult, policy BucketOrderPolicy, maxItems int) []RawHit {
	return Flatten(SortProbable(b), policy, maxItems)
}

// ReorderByReference returns a copy of native whose Probable entries follow
// the order of reference.Probable, matched by ExternalID. Native entries the
// reference does not know keep their relative order after the matched ones.
// Only the order changes: titles and artwork stay those of native.
func ReorderByReference(native, reference BucketedResult) BucketedResult {
	byID := make(map[int]int, len(native.Probable))
	for i, c := range native.Probable {
		if _, dup := byID[c.Hit.ExternalID]; !dup {
			byID[c.Hit.ExternalID] = i
		}
	}

	used := make([]bool, len(native.Probable))
	reordered := make([]ScoredCandidate, 0, len(native.Probable))
	for _, ref := range reference.Probable {
		i, ok := byID[ref.Hit.ExternalID]
		if !ok || used[i] {
			continue
		}
		used[i] = true
		reordered = append(reordered, native.Probable[i])
	}
	for i, c := range native.Probable {
		if !used[i] {
			reordered = append(reordered, c)
		}
	}

	native.Probable = reordered
	return native
}
