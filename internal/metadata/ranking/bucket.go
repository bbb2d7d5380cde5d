package ranking

// BucketOptions configures how one provider's hits are bucketed.
type BucketOptions struct {
	ClassifyOptions

	// ExcludedIDs lists identifiers that must never be offered, such as the
	// legacy provider's "series not permitted" entries.
	ExcludedIDs []int
}

func (o BucketOptions) excluded(id int) bool {
	for _, ex := range o.ExcludedIDs {
		if ex == id {
			return true
		}
	}
	return false
}

// Bucket groups hits by artwork class, scoring the ones with full artwork.
// Order inside every bucket is the provider response order.
func Bucket(hits []RawHit, query Query, opts BucketOptions) BucketedResult {
	var result BucketedResult
	for _, hit := range hits {
		if opts.excluded(hit.ExternalID) {
			continue
		}
		switch Classify(hit, opts.ClassifyOptions) {
		case HasArtwork:
			result.Probable = append(result.Probable, ScoredCandidate{
				Hit:          hit,
				EditDistance: Score(query.Title, hit),
			})
		case MissingBackdrop:
			result.NoBanner = append(result.NoBanner, hit)
		case MissingPoster:
			result.NoPoster = append(result.NoPoster, hit)
		case NumericIdentifier:
			result.NumericSlug = append(result.NumericSlug, hit)
		}
	}
	return result
}
