// Package ranking buckets and orders provider search hits against a query.
package ranking

// Query describes one search attempt derived from a local file name.
// Zero values for Year, Season and Episode mean the field is absent.
type Query struct {
	Title           string `json:"title" yaml:"title"`
	Year            int    `json:"year,omitempty" yaml:"year,omitempty"`
	Season          int    `json:"season,omitempty" yaml:"season,omitempty"`
	Episode         int    `json:"episode,omitempty" yaml:"episode,omitempty"`
	Language        string `json:"language" yaml:"language"`
	CountryOfOrigin string `json:"countryOfOrigin,omitempty" yaml:"countryOfOrigin,omitempty"`
	// RawTitle is the uncleaned title the query was derived from.
	RawTitle string `json:"rawTitle,omitempty" yaml:"rawTitle,omitempty"`
}

// Raw returns the uncleaned title, falling back to Title.
func (q Query) Raw() string {
	if q.RawTitle != "" {
		return q.RawTitle
	}
	return q.Title
}

// WithLanguage returns a copy of q searching in the given language.
func (q Query) WithLanguage(language string) Query {
	q.Language = language
	return q
}

// WithTitleYear returns a copy of q with a new title and year.
func (q Query) WithTitleYear(title string, year int) Query {
	q.Title = title
	q.Year = year
	return q
}

// WithoutYear returns a copy of q with the year dropped.
func (q Query) WithoutYear() Query {
	q.Year = 0
	return q
}

// HasYear reports whether the query carries a release year.
func (q Query) HasYear() bool {
	return q.Year > 0
}

// RawHit is a single candidate returned by a provider for one language.
type RawHit struct {
	ExternalID    int    `json:"externalId" yaml:"externalId"`
	Title         string `json:"title" yaml:"title"`
	OriginalTitle string `json:"originalTitle,omitempty" yaml:"originalTitle,omitempty"`
	PosterPath    string `json:"posterPath,omitempty" yaml:"posterPath,omitempty"`
	BackdropPath  string `json:"backdropPath,omitempty" yaml:"backdropPath,omitempty"`
	// Slug is only populated by the legacy provider.
	Slug     string `json:"slug,omitempty" yaml:"slug,omitempty"`
	Language string `json:"language" yaml:"language"`
	Year     int    `json:"year,omitempty" yaml:"year,omitempty"`
	Overview string `json:"overview,omitempty" yaml:"overview,omitempty"`
}

// ArtworkClass is the single classification assigned to a hit.
type ArtworkClass int

const (
	HasArtwork ArtworkClass = iota
	MissingPoster
	MissingBackdrop
	NumericIdentifier
)

func (c ArtworkClass) String() string {
	switch c {
	case HasArtwork:
		return "has_artwork"
	case MissingPoster:
		return "missing_poster"
	case MissingBackdrop:
		return "missing_backdrop"
	case NumericIdentifier:
		return "numeric_identifier"
	default:
		return "unknown"
	}
}

// ScoredCandidate pairs a hit with its edit distance to the query title.
type ScoredCandidate struct {
	Hit          RawHit `json:"hit" yaml:"hit"`
	EditDistance int    `json:"editDistance" yaml:"editDistance"`
}

// BucketedResult groups one provider response by artwork class.
// It is built once and only read afterwards.
type BucketedResult struct {
	Probable    []ScoredCandidate `json:"probable" yaml:"probable"`
	NoBanner    []RawHit          `json:"noBanner" yaml:"noBanner"`
	NoPoster    []RawHit          `json:"noPoster" yaml:"noPoster"`
	NumericSlug []RawHit          `json:"numericSlug" yaml:"numericSlug"`
}

// Len returns the number of hits across all buckets.
func (b BucketedResult) Len() int {
	return len(b.Probable) + len(b.NoBanner) + len(b.NoPoster) + len(b.NumericSlug)
}

// IsEmpty reports whether no bucket holds a hit.
func (b BucketedResult) IsEmpty() bool {
	return b.Len() == 0
}

// BestDistance returns the smallest edit distance in Probable.
// ok is false when Probable is empty.
func (b BucketedResult) BestDistance() (int, bool) {
	if len(b.Probable) == 0 {
		return 0, false
	}
	best := b.Probable[0].EditDistance
	for _, c := range b.Probable[1:] {
		if c.EditDistance < best {
			best = c.EditDistance
		}
	}
	return best, true
}
