package metadata

import (
	"github.com/slipstream/mediascraper/internal/library/scanner"
	"github.com/slipstream/mediascraper/internal/metadata/search"
	"github.com/slipstream/mediascraper/internal/metadata/tmdb"
	"github.com/slipstream/mediascraper/internal/metadata/tvdb"
)

// Person is a cast or crew member.
type Person struct {
	Name     string `json:"name" yaml:"name"`
	Role     string `json:"role,omitempty" yaml:"role,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty" yaml:"photoUrl,omitempty"`
}

// Trailer is a playable trailer link.
type Trailer struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// MovieResult represents a movie from a metadata provider.
type MovieResult struct {
	Provider      string    `json:"provider" yaml:"provider"`
	ID            int       `json:"id" yaml:"id"`
	Title         string    `json:"title" yaml:"title"`
	OriginalTitle string    `json:"originalTitle,omitempty" yaml:"originalTitle,omitempty"`
	Year          int       `json:"year" yaml:"year"`
	Overview      string    `json:"overview" yaml:"overview"`
	Tagline       string    `json:"tagline,omitempty" yaml:"tagline,omitempty"`
	ReleaseDate   string    `json:"releaseDate,omitempty" yaml:"releaseDate,omitempty"`
	PosterURL     string    `json:"posterUrl,omitempty" yaml:"posterUrl,omitempty"`
	BackdropURL   string    `json:"backdropUrl,omitempty" yaml:"backdropUrl,omitempty"`
	ImdbID        string    `json:"imdbId,omitempty" yaml:"imdbId,omitempty"`
	Genres        []string  `json:"genres,omitempty" yaml:"genres,omitempty"`
	Runtime       int       `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	Rating        float64   `json:"rating,omitempty" yaml:"rating,omitempty"`
	Directors     []Person  `json:"directors,omitempty" yaml:"directors,omitempty"`
	Cast          []Person  `json:"cast,omitempty" yaml:"cast,omitempty"`
	Trailers      []Trailer `json:"trailers,omitempty" yaml:"trailers,omitempty"`
}

// SeriesResult represents a TV series from a metadata provider.
type SeriesResult struct {
	Provider      string    `json:"provider" yaml:"provider"`
	ID            int       `json:"id" yaml:"id"`
	Title         string    `json:"title" yaml:"title"`
	OriginalTitle string    `json:"originalTitle,omitempty" yaml:"originalTitle,omitempty"`
	Year          int       `json:"year" yaml:"year"`
	Overview      string    `json:"overview" yaml:"overview"`
	PosterURL     string    `json:"posterUrl,omitempty" yaml:"posterUrl,omitempty"`
	BackdropURL   string    `json:"backdropUrl,omitempty" yaml:"backdropUrl,omitempty"`
	ImdbID        string    `json:"imdbId,omitempty" yaml:"imdbId,omitempty"`
	TvdbID        int       `json:"tvdbId,omitempty" yaml:"tvdbId,omitempty"`
	TmdbID        int       `json:"tmdbId,omitempty" yaml:"tmdbId,omitempty"`
	Genres        []string  `json:"genres,omitempty" yaml:"genres,omitempty"`
	Status        string    `json:"status,omitempty" yaml:"status,omitempty"` // continuing, ended or upcoming
	Runtime       int       `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	Network       string    `json:"network,omitempty" yaml:"network,omitempty"`
	Rating        float64   `json:"rating,omitempty" yaml:"rating,omitempty"`
	Creators      []Person  `json:"creators,omitempty" yaml:"creators,omitempty"`
	Cast          []Person  `json:"cast,omitempty" yaml:"cast,omitempty"`
	Trailers      []Trailer `json:"trailers,omitempty" yaml:"trailers,omitempty"`
}

// EpisodeResult represents a TV episode from a metadata provider.
type EpisodeResult struct {
	SeasonNumber  int    `json:"seasonNumber" yaml:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber" yaml:"episodeNumber"`
	Title         string `json:"title" yaml:"title"`
	Overview      string `json:"overview,omitempty" yaml:"overview,omitempty"`
	AirDate       string `json:"airDate,omitempty" yaml:"airDate,omitempty"`
	Runtime       int    `json:"runtime,omitempty" yaml:"runtime,omitempty"`
}

// Identification is the outcome of matching a local file.
type Identification struct {
	Parsed  *scanner.ParsedMedia `json:"parsed" yaml:"parsed"`
	Search  search.Result        `json:"search" yaml:"search"`
	Movie   *MovieResult         `json:"movie,omitempty" yaml:"movie,omitempty"`
	Series  *SeriesResult        `json:"series,omitempty" yaml:"series,omitempty"`
	Episode *EpisodeResult       `json:"episode,omitempty" yaml:"episode,omitempty"`
}

// Matched reports whether details were resolved for the file.
func (i *Identification) Matched() bool {
	return i.Movie != nil || i.Series != nil
}

// Title returns the display title of the match, or the parsed title.
func (i *Identification) Title() string {
	switch {
	case i.Movie != nil:
		return i.Movie.Title
	case i.Series != nil:
		return i.Series.Title
	case i.Parsed != nil:
		return i.Parsed.Title
	default:
		return ""
	}
}

func tmdbPeople(in []tmdb.NormalizedPerson) []Person {
	if len(in) == 0 {
		return nil
	}
	out := make([]Person, 0, len(in))
	for _, p := range in {
		out = append(out, Person{Name: p.Name, Role: p.Role, PhotoURL: p.PhotoURL})
	}
	return out
}

func tmdbTrailers(in []tmdb.Trailer) []Trailer {
	if len(in) == 0 {
		return nil
	}
	out := make([]Trailer, 0, len(in))
	for _, t := range in {
		out = append(out, Trailer{Name: t.Name, URL: t.URL})
	}
	return out
}

func movieFromTMDB(m *tmdb.NormalizedMovieResult) *MovieResult {
	return &MovieResult{
		Provider:      providerTMDB,
		ID:            m.ID,
		Title:         m.Title,
		OriginalTitle: m.OriginalTitle,
		Year:          m.Year,
		Overview:      m.Overview,
		Tagline:       m.Tagline,
		ReleaseDate:   m.ReleaseDate,
		PosterURL:     m.PosterURL,
		BackdropURL:   m.BackdropURL,
		ImdbID:        m.ImdbID,
		Genres:        m.Genres,
		Runtime:       m.Runtime,
		Rating:        m.Rating,
		Directors:     tmdbPeople(m.Directors),
		Cast:          tmdbPeople(m.Cast),
		Trailers:      tmdbTrailers(m.Trailers),
	}
}

func seriesFromTMDB(s *tmdb.NormalizedSeriesResult) *SeriesResult {
	return &SeriesResult{
		Provider:      providerTMDB,
		ID:            s.ID,
		Title:         s.Title,
		OriginalTitle: s.OriginalTitle,
		Year:          s.Year,
		Overview:      s.Overview,
		PosterURL:     s.PosterURL,
		BackdropURL:   s.BackdropURL,
		ImdbID:        s.ImdbID,
		TvdbID:        s.TvdbID,
		TmdbID:        s.ID,
		Genres:        s.Genres,
		Status:        s.Status,
		Runtime:       s.Runtime,
		Network:       s.Network,
		Rating:        s.Rating,
		Creators:      tmdbPeople(s.Creators),
		Cast:          tmdbPeople(s.Cast),
		Trailers:      tmdbTrailers(s.Trailers),
	}
}

// seriesFromTVDB converts a TVDB record. TVDB serves absolute artwork URLs.
func seriesFromTVDB(s *tvdb.NormalizedSeriesResult) *SeriesResult {
	var cast []Person
	for _, p := range s.Cast {
		cast = append(cast, Person{Name: p.Name, Role: p.Role, PhotoURL: p.PhotoURL})
	}
	return &SeriesResult{
		Provider:      providerTVDB,
		ID:            s.ID,
		Title:         s.Title,
		OriginalTitle: s.OriginalTitle,
		Year:          s.Year,
		Overview:      s.Overview,
		PosterURL:     s.PosterPath,
		BackdropURL:   s.BackdropPath,
		ImdbID:        s.ImdbID,
		TvdbID:        s.ID,
		TmdbID:        s.TmdbID,
		Genres:        s.Genres,
		Status:        s.Status,
		Runtime:       s.Runtime,
		Network:       s.Network,
		Rating:        s.Rating,
		Cast:          cast,
	}
}

func episodeFromTMDB(season *tmdb.NormalizedSeasonResult, episode int) *EpisodeResult {
	for _, ep := range season.Episodes {
		if ep.EpisodeNumber == episode {
			return &EpisodeResult{
				SeasonNumber:  ep.SeasonNumber,
				EpisodeNumber: ep.EpisodeNumber,
				Title:         ep.Title,
				Overview:      ep.Overview,
				AirDate:       ep.AirDate,
				Runtime:       ep.Runtime,
			}
		}
	}
	return nil
}

func episodeFromTVDB(ep *tvdb.NormalizedEpisodeResult) *EpisodeResult {
	return &EpisodeResult{
		SeasonNumber:  ep.SeasonNumber,
		EpisodeNumber: ep.EpisodeNumber,
		Title:         ep.Title,
		Overview:      ep.Overview,
		AirDate:       ep.AirDate,
		Runtime:       ep.Runtime,
	}
}
