package tvdb

// LoginRequest is the request body for TVDB authentication.
type LoginRequest struct {
	APIKey string `json:"apikey"`
	PIN    string `json:"pin,omitempty"`
}

// LoginResponse is the response from TVDB authentication.
type LoginResponse struct {
	Status string `json:"status"`
	Data   struct {
		Token string `json:"token"`
	} `json:"data"`
}

// SearchResponse is the response from TVDB search.
type SearchResponse struct {
	Status string         `json:"status"`
	Data   []SearchResult `json:"data"`
}

// SearchResult is a search result from TVDB.
type SearchResult struct {
	ObjectID        string            `json:"objectID"`
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Slug            string            `json:"slug"`
	Type            string            `json:"type"` // "series", "movie", etc.
	Year            string            `json:"year"`
	Overview        string            `json:"overview"`
	ImageURL        string            `json:"image_url"`
	Thumbnail       string            `json:"thumbnail"`
	PrimaryLanguage string            `json:"primary_language"`
	Country         string            `json:"country"`
	Status          string            `json:"status"`
	Network         string            `json:"network"`
	TvdbID          string            `json:"tvdb_id"`
	RemoteIDs       []RemoteID        `json:"remote_ids"`
	Overviews       map[string]string `json:"overviews"`
	Translations    map[string]string `json:"translations"`
}

// RemoteID represents an external ID.
type RemoteID struct {
	ID         string `json:"id"`
	Type       int    `json:"type"`
	SourceName string `json:"sourceName"`
}

// SeriesResponse is the response for a single series.
type SeriesResponse struct {
	Status string       `json:"status"`
	Data   SeriesDetail `json:"data"`
}

// SeriesDetail contains detailed series information.
type SeriesDetail struct {
	ID               int                `json:"id"`
	Name             string             `json:"name"`
	Slug             string             `json:"slug"`
	Image            string             `json:"image"`
	FirstAired       string             `json:"firstAired"`
	Score            float64            `json:"score"`
	Status           SeriesStatus       `json:"status"`
	OriginalCountry  string             `json:"originalCountry"`
	OriginalLanguage string             `json:"originalLanguage"`
	AverageRuntime   int                `json:"averageRuntime"`
	Overview         string             `json:"overview"`
	Year             string             `json:"year"`
	Artworks         []Artwork          `json:"artworks"`
	Genres           []Genre            `json:"genres"`
	RemoteIDs        []RemoteID         `json:"remoteIds"`
	Characters       []Character        `json:"characters"`
	Translations     SeriesTranslations `json:"translations"`
}

// SeriesStatus represents the status of a series.
type SeriesStatus struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Genre represents a genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Artwork types used by the extended series record.
const (
	ArtworkTypeBanner     = 1
	ArtworkTypePoster     = 2
	ArtworkTypeBackground = 3
)

// Artwork represents artwork for a series.
type Artwork struct {
	ID        int     `json:"id"`
	Image     string  `json:"image"`
	Thumbnail string  `json:"thumbnail"`
	Language  string  `json:"language"`
	Type      int     `json:"type"`
	Score     float64 `json:"score"`
}

// Character is a cast entry of the extended series record.
type Character struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	PersonName string `json:"personName"`
	PeopleType string `json:"peopleType"`
	Image      string `json:"image"`
	Sort       int    `json:"sort"`
}

// SeriesTranslations is returned when meta=translations is requested.
type SeriesTranslations struct {
	NameTranslations     []Translation `json:"nameTranslations"`
	OverviewTranslations []Translation `json:"overviewTranslations"`
}

// Translation is one localized name or overview.
type Translation struct {
	Language  string `json:"language"`
	Name      string `json:"name"`
	Overview  string `json:"overview"`
	IsPrimary bool   `json:"isPrimary"`
}

// EpisodesResponse is the response for series episodes.
type EpisodesResponse struct {
	Status string `json:"status"`
	Data   struct {
		Episodes []Episode `json:"episodes"`
	} `json:"data"`
}

// Episode represents a TV episode.
type Episode struct {
	ID           int    `json:"id"`
	SeriesID     int    `json:"seriesId"`
	Name         string `json:"name"`
	Aired        string `json:"aired"`
	Runtime      int    `json:"runtime"`
	Overview     string `json:"overview"`
	Image        string `json:"image"`
	SeasonNumber int    `json:"seasonNumber"`
	Number       int    `json:"number"`
}

// NormalizedSeriesResult is the normalized series result returned by the client.
// PosterPath and BackdropPath may hold TVDB placeholder images.
type NormalizedSeriesResult struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"originalTitle,omitempty"`
	Slug          string   `json:"slug,omitempty"`
	Language      string   `json:"language,omitempty"`
	Year          int      `json:"year"`
	Overview      string   `json:"overview"`
	PosterPath    string   `json:"posterPath,omitempty"`
	BackdropPath  string   `json:"backdropPath,omitempty"`
	ImdbID        string   `json:"imdbId,omitempty"`
	TmdbID        int      `json:"tmdbId,omitempty"`
	Country       string   `json:"country,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Status        string   `json:"status,omitempty"`
	Runtime       int      `json:"runtime,omitempty"`
	Network       string   `json:"network,omitempty"`
	Rating        float64  `json:"rating,omitempty"`
	Cast          []Person `json:"cast,omitempty"`
}

// Person is a normalized cast member.
type Person struct {
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// NormalizedEpisodeResult is the normalized episode result.
type NormalizedEpisodeResult struct {
	ID            int    `json:"id"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	Overview      string `json:"overview,omitempty"`
	AirDate       string `json:"airDate,omitempty"`
	Runtime       int    `json:"runtime,omitempty"`
}
