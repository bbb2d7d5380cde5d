package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hit(id int, title string) RawHit {
	return RawHit{
		ExternalID:   id,
		Title:        title,
		PosterPath:   "/poster.jpg",
		BackdropPath: "/backdrop.jpg",
		Language:     "en",
	}
}

func ids(hits []RawHit) []int {
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.ExternalID
	}
	return out
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"the matrx", "the matrix", 1},
		{"The Matrix", "the matrix", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"", "", 0},
		{"kitten", "sitting", 3},
		{"amélie", "AMÉLIE", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
		})
	}
}

func TestScore_UsesBestOfTitleAndOriginalTitle(t *testing.T) {
	h := hit(1, "La Matrice")
	assert.Equal(t, Distance("the matrix", "La Matrice"), Score("the matrix", h))

	h.OriginalTitle = "The Matrix"
	assert.Equal(t, 0, Score("the matrix", h))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		hit  RawHit
		opts ClassifyOptions
		want ArtworkClass
	}{
		{
			name: "full artwork",
			hit:  hit(1, "a"),
			want: HasArtwork,
		},
		{
			name: "empty backdrop",
			hit:  RawHit{PosterPath: "/p.jpg"},
			want: MissingBackdrop,
		},
		{
			name: "placeholder backdrop",
			hit:  RawHit{PosterPath: "/p.jpg", BackdropPath: "https://artworks.thetvdb.com/banners/images/missing/series.jpg"},
			want: MissingBackdrop,
		},
		{
			name: "backdrop missing wins over poster missing",
			hit:  RawHit{},
			want: MissingBackdrop,
		},
		{
			name: "placeholder poster",
			hit:  RawHit{PosterPath: "images/missing/movie.jpg", BackdropPath: "/b.jpg"},
			want: MissingPoster,
		},
		{
			name: "numeric slug without demotion",
			hit:  RawHit{PosterPath: "/p.jpg", BackdropPath: "/b.jpg", Slug: "12345"},
			want: HasArtwork,
		},
		{
			name: "numeric slug with demotion",
			hit:  RawHit{PosterPath: "/p.jpg", BackdropPath: "/b.jpg", Slug: "12345"},
			opts: ClassifyOptions{NumericSlugDemotion: true},
			want: NumericIdentifier,
		},
		{
			name: "textual slug with demotion",
			hit:  RawHit{PosterPath: "/p.jpg", BackdropPath: "/b.jpg", Slug: "breaking-bad"},
			opts: ClassifyOptions{NumericSlugDemotion: true},
			want: HasArtwork,
		},
		{
			name: "numeric slug with missing poster stays missing poster",
			hit:  RawHit{BackdropPath: "/b.jpg", Slug: "42"},
			opts: ClassifyOptions{NumericSlugDemotion: true},
			want: MissingPoster,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.hit, tt.opts))
		})
	}
}

func TestBucket_SingleProbableHit(t *testing.T) {
	h := RawHit{
		ExternalID:    603,
		Title:         "The Matrix",
		OriginalTitle: "The Matrix",
		PosterPath:    "/x.jpg",
		BackdropPath:  "/y.jpg",
		Language:      "fr",
	}

	b := Bucket([]RawHit{h}, Query{Title: "the matrx", Language: "fr"}, BucketOptions{})

	require.Len(t, b.Probable, 1)
	assert.Equal(t, 1, b.Probable[0].EditDistance)
	assert.Equal(t, h, b.Probable[0].Hit)
	assert.Empty(t, b.NoBanner)
	assert.Empty(t, b.NoPoster)
	assert.Empty(t, b.NumericSlug)
}

func TestBucket_MissingBannerNeverProbable(t *testing.T) {
	h := RawHit{ExternalID: 7, Title: "Foo Show", PosterPath: "/p.jpg", BackdropPath: "missing/series.jpg"}

	b := Bucket([]RawHit{h}, Query{Title: "foo show"}, BucketOptions{})

	assert.Empty(t, b.Probable)
	require.Len(t, b.NoBanner, 1)
	assert.Equal(t, 7, b.NoBanner[0].ExternalID)
}

func TestBucket_ExcludedIDsNeverAppear(t *testing.T) {
	const blocked = 99
	hits := []RawHit{
		hit(1, "one"),
		hit(blocked, "blocked"),
		{ExternalID: blocked, Title: "blocked no art"},
		{ExternalID: blocked, Title: "blocked no poster", BackdropPath: "/b.jpg"},
		{ExternalID: blocked, Title: "blocked numeric", BackdropPath: "/b.jpg", PosterPath: "/p.jpg", Slug: "5"},
		{ExternalID: 2, Title: "two"},
	}
	opts := BucketOptions{
		ClassifyOptions: ClassifyOptions{NumericSlugDemotion: true},
		ExcludedIDs:     []int{blocked},
	}

	b := Bucket(hits, Query{Title: "one"}, opts)

	for _, c := range b.Probable {
		assert.NotEqual(t, blocked, c.Hit.ExternalID)
	}
	for _, bucket := range [][]RawHit{b.NoBanner, b.NoPoster, b.NumericSlug} {
		assert.NotContains(t, ids(bucket), blocked)
	}
	assert.Equal(t, 2, b.Len())
}

func TestBucket_PreservesProviderOrder(t *testing.T) {
	hits := []RawHit{
		{ExternalID: 1, Title: "a"},
		{ExternalID: 2, Title: "b", BackdropPath: "/b.jpg"},
		{ExternalID: 3, Title: "c"},
		{ExternalID: 4, Title: "d", BackdropPath: "/b.jpg"},
	}

	b := Bucket(hits, Query{Title: "x"}, BucketOptions{})

	assert.Equal(t, []int{1, 3}, ids(b.NoBanner))
	assert.Equal(t, []int{2, 4}, ids(b.NoPoster))
}

func TestRank_OrdersByDistanceAndTruncates(t *testing.T) {
	hits := []RawHit{
		hit(1, "abcdxyz"), // 3
		hit(2, "abcde"),   // 1
		hit(3, "abcdef"),  // 2
	}
	b := Bucket(hits, Query{Title: "abcd"}, BucketOptions{})

	assert.Equal(t, []int{2, 3, 1}, ids(Rank(b, TMDbPolicy, -1)))

	top := Rank(b, TMDbPolicy, 1)
	require.Len(t, top, 1)
	assert.Equal(t, 2, top[0].ExternalID)
}

func TestRank_StableTies(t *testing.T) {
	hits := []RawHit{
		hit(10, "abcx"),
		hit(11, "abcy"),
		hit(12, "abc"),
		hit(13, "abcz"),
	}
	b := Bucket(hits, Query{Title: "abc"}, BucketOptions{})

	assert.Equal(t, []int{12, 10, 11, 13}, ids(Rank(b, LegacyPolicy, 0)))
}

func TestRank_Monotonic(t *testing.T) {
	titles := []string{"the matrix", "matrix", "the matrix reloaded", "the animatrix", "matrix 4", "the matrx"}
	var hits []RawHit
	for i, title := range titles {
		hits = append(hits, hit(i+1, title))
	}

	sorted := SortProbable(Bucket(hits, Query{Title: "the matrix"}, BucketOptions{}))

	for i := 1; i < len(sorted.Probable); i++ {
		assert.LessOrEqual(t, sorted.Probable[i-1].EditDistance, sorted.Probable[i].EditDistance)
	}
}

func TestRank_Deterministic(t *testing.T) {
	hits := []RawHit{
		hit(1, "alpha"),
		{ExternalID: 2, Title: "alpha two"},
		hit(3, "alpah"),
		{ExternalID: 4, Title: "alp", BackdropPath: "/b.jpg", PosterPath: "/p.jpg", Slug: "4"},
		hit(5, "alpha"),
	}
	q := Query{Title: "alpha"}
	opts := BucketOptions{ClassifyOptions: ClassifyOptions{NumericSlugDemotion: true}}

	first := Rank(Bucket(hits, q, opts), TMDbPolicy, 0)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Rank(Bucket(hits, q, opts), TMDbPolicy, 0))
	}
}

func TestRank_PolicyOrder(t *testing.T) {
	hits := []RawHit{
		{ExternalID: 1, Title: "no banner"},
		{ExternalID: 2, Title: "numeric", BackdropPath: "/b.jpg", PosterPath: "/p.jpg", Slug: "2"},
		{ExternalID: 3, Title: "no poster", BackdropPath: "/b.jpg"},
		hit(4, "probable"),
	}
	opts := BucketOptions{ClassifyOptions: ClassifyOptions{NumericSlugDemotion: true}}
	b := Bucket(hits, Query{Title: "probable"}, opts)

	assert.Equal(t, []int{4, 1, 2}, ids(Rank(b, TMDbPolicy, 0)))
	assert.Equal(t, []int{4, 2}, ids(Rank(b, LegacyPolicy, 0)))
	assert.Equal(t, []int{3, 4}, ids(Rank(b, BucketOrderPolicy{BucketNoPoster, BucketProbable}, 0)))
}

func TestRank_EmptyBuckets(t *testing.T) {
	assert.Empty(t, Rank(BucketedResult{}, TMDbPolicy, 5))
}

func TestRank_TruncationIsPrefix(t *testing.T) {
	hits := []RawHit{
		hit(1, "abcdxyz"),
		{ExternalID: 2, Title: "nb"},
		hit(3, "abcde"),
		{ExternalID: 4, Title: "ns", BackdropPath: "/b.jpg", PosterPath: "/p.jpg", Slug: "9"},
		hit(5, "abcd"),
	}
	b := Bucket(hits, Query{Title: "abcd"}, BucketOptions{ClassifyOptions: ClassifyOptions{NumericSlugDemotion: true}})
	full := Rank(b, TMDbPolicy, -1)
	require.Len(t, full, 5)

	for n := 1; n <= len(full)+2; n++ {
		got := Rank(b, TMDbPolicy, n)
		want := full[:min(n, len(full))]
		assert.Equal(t, want, got, "maxItems=%d", n)
	}
}

func TestSortProbable_DoesNotMutateInput(t *testing.T) {
	b := Bucket([]RawHit{hit(1, "zzzz"), hit(2, "abc")}, Query{Title: "abc"}, BucketOptions{})

	sorted := SortProbable(b)

	assert.Equal(t, 1, b.Probable[0].Hit.ExternalID)
	assert.Equal(t, 2, sorted.Probable[0].Hit.ExternalID)
}

func TestReorderByReference(t *testing.T) {
	native := BucketedResult{Probable: []ScoredCandidate{
		{Hit: RawHit{ExternalID: 1, Title: "Le Parrain"}, EditDistance: 5},
		{Hit: RawHit{ExternalID: 2, Title: "Le Parrain II"}, EditDistance: 6},
		{Hit: RawHit{ExternalID: 3, Title: "Parrain local"}, EditDistance: 7},
	}}
	english := BucketedResult{Probable: []ScoredCandidate{
		{Hit: RawHit{ExternalID: 2, Title: "The Godfather Part II"}, EditDistance: 2},
		{Hit: RawHit{ExternalID: 9, Title: "Unrelated"}, EditDistance: 3},
		{Hit: RawHit{ExternalID: 1, Title: "The Godfather"}, EditDistance: 4},
	}}

	got := ReorderByReference(native, english)

	require.Len(t, got.Probable, 3)
	assert.Equal(t, "Le Parrain II", got.Probable[0].Hit.Title)
	assert.Equal(t, "Le Parrain", got.Probable[1].Hit.Title)
	assert.Equal(t, "Parrain local", got.Probable[2].Hit.Title)
	assert.Equal(t, 1, native.Probable[0].Hit.ExternalID, "input must not be modified")
}

func TestBestDistance(t *testing.T) {
	_, ok := BucketedResult{}.BestDistance()
	assert.False(t, ok)

	d, ok := BucketedResult{Probable: []ScoredCandidate{{EditDistance: 4}, {EditDistance: 2}}}.BestDistance()
	assert.True(t, ok)
	assert.Equal(t, 2, d)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("probable, numericSlug")
	require.NoError(t, err)
	assert.Equal(t, LegacyPolicy, p)

	_, err = ParsePolicy("probable,bogus")
	assert.Error(t, err)

	_, err = ParsePolicy("probable,probable")
	assert.Error(t, err)

	_, err = ParsePolicy("")
	assert.Error(t, err)
}
