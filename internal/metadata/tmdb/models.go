package tmdb

// SearchMoviesResponse is the response from TMDB movie search.
type SearchMoviesResponse struct {
	Page         int           `json:"page"`
	Results      []MovieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// MovieResult is a movie from TMDB search results.
type MovieResult struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	Adult            bool    `json:"adult"`
}

// MovieDetails is the detailed movie info from TMDB.
type MovieDetails struct {
	ID               int              `json:"id"`
	Title            string           `json:"title"`
	OriginalTitle    string           `json:"original_title"`
	OriginalLanguage string           `json:"original_language"`
	Overview         string           `json:"overview"`
	ReleaseDate      string           `json:"release_date"`
	PosterPath       *string          `json:"poster_path"`
	BackdropPath     *string          `json:"backdrop_path"`
	VoteAverage      float64          `json:"vote_average"`
	Runtime          int              `json:"runtime"`
	Status           string           `json:"status"`
	Tagline          string           `json:"tagline"`
	ImdbID           string           `json:"imdb_id"`
	Genres           []Genre          `json:"genres"`
	Credits          *CreditsResponse `json:"credits,omitempty"`
	Videos           *VideosResponse  `json:"videos,omitempty"`
}

// SearchTVResponse is the response from TMDB TV search.
type SearchTVResponse struct {
	Page         int        `json:"page"`
	Results      []TVResult `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

// TVResult is a TV series from TMDB search results.
type TVResult struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	OriginalName     string   `json:"original_name"`
	Overview         string   `json:"overview"`
	FirstAirDate     string   `json:"first_air_date"`
	PosterPath       *string  `json:"poster_path"`
	BackdropPath     *string  `json:"backdrop_path"`
	OriginCountry    []string `json:"origin_country"`
	OriginalLanguage string   `json:"original_language"`
}

// TVDetails is the detailed TV series info from TMDB.
type TVDetails struct {
	ID               int              `json:"id"`
	Name             string           `json:"name"`
	OriginalName     string           `json:"original_name"`
	Overview         string           `json:"overview"`
	FirstAirDate     string           `json:"first_air_date"`
	PosterPath       *string          `json:"poster_path"`
	BackdropPath     *string          `json:"backdrop_path"`
	VoteAverage      float64          `json:"vote_average"`
	Status           string           `json:"status"`
	OriginalLanguage string           `json:"original_language"`
	OriginCountry    []string         `json:"origin_country"`
	Genres           []Genre          `json:"genres"`
	Networks         []Network        `json:"networks"`
	NumberOfSeasons  int              `json:"number_of_seasons"`
	EpisodeRunTime   []int            `json:"episode_run_time"`
	ExternalIDs      *ExternalIDs     `json:"external_ids,omitempty"`
	CreatedBy        []TVCreator      `json:"created_by,omitempty"`
	Credits          *CreditsResponse `json:"credits,omitempty"`
	Videos           *VideosResponse  `json:"videos,omitempty"`
}

// Genre represents a genre from TMDB.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Network represents a TV network from TMDB.
type Network struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ExternalIDs contains external IDs from TMDB.
type ExternalIDs struct {
	ImdbID string `json:"imdb_id"`
	TvdbID int    `json:"tvdb_id"`
}

// TVCreator represents a series creator from TMDB TV details.
type TVCreator struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CreditsResponse is the credits block appended to details responses.
type CreditsResponse struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// CastMember represents a cast member from TMDB credits.
type CastMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	Order       int     `json:"order"`
	ProfilePath *string `json:"profile_path"`
}

// CrewMember represents a crew member from TMDB credits.
type CrewMember struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// VideosResponse is the videos block appended to details responses.
type VideosResponse struct {
	Results []Video `json:"results"`
}

// Video represents a video (trailer, teaser, etc.) from TMDB.
type Video struct {
	Key      string `json:"key"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Official bool   `json:"official"`
}

// SeasonDetails is the detailed season info from TMDB /tv/{id}/season/{number} endpoint.
type SeasonDetails struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	Overview     string           `json:"overview"`
	AirDate      string           `json:"air_date"`
	PosterPath   *string          `json:"poster_path"`
	SeasonNumber int              `json:"season_number"`
	Episodes     []EpisodeDetails `json:"episodes"`
}

// EpisodeDetails is the episode info from TMDB season details.
type EpisodeDetails struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	AirDate       string `json:"air_date"`
	EpisodeNumber int    `json:"episode_number"`
	SeasonNumber  int    `json:"season_number"`
	Runtime       int    `json:"runtime"`
}

// ErrorResponse is an error from the TMDB API.
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}

// NormalizedMovieResult is the normalized movie result returned by the client.
// PosterPath and BackdropPath are the raw TMDB paths, empty when absent.
type NormalizedMovieResult struct {
	ID            int                `json:"id"`
	Title         string             `json:"title"`
	OriginalTitle string             `json:"originalTitle,omitempty"`
	Language      string             `json:"language,omitempty"`
	Year          int                `json:"year"`
	Overview      string             `json:"overview"`
	PosterPath    string             `json:"posterPath,omitempty"`
	BackdropPath  string             `json:"backdropPath,omitempty"`
	PosterURL     string             `json:"posterUrl,omitempty"`
	BackdropURL   string             `json:"backdropUrl,omitempty"`
	ImdbID        string             `json:"imdbId,omitempty"`
	Genres        []string           `json:"genres,omitempty"`
	Runtime       int                `json:"runtime,omitempty"`
	ReleaseDate   string             `json:"releaseDate,omitempty"`
	Tagline       string             `json:"tagline,omitempty"`
	Rating        float64            `json:"rating,omitempty"`
	Directors     []NormalizedPerson `json:"directors,omitempty"`
	Cast          []NormalizedPerson `json:"cast,omitempty"`
	Trailers      []Trailer          `json:"trailers,omitempty"`
}

// NormalizedSeriesResult is the normalized series result returned by the client.
type NormalizedSeriesResult struct {
	ID              int                `json:"id"`
	Title           string             `json:"title"`
	OriginalTitle   string             `json:"originalTitle,omitempty"`
	Language        string             `json:"language,omitempty"`
	Year            int                `json:"year"`
	Overview        string             `json:"overview"`
	PosterPath      string             `json:"posterPath,omitempty"`
	BackdropPath    string             `json:"backdropPath,omitempty"`
	PosterURL       string             `json:"posterUrl,omitempty"`
	BackdropURL     string             `json:"backdropUrl,omitempty"`
	ImdbID          string             `json:"imdbId,omitempty"`
	TvdbID          int                `json:"tvdbId,omitempty"`
	OriginCountry   []string           `json:"originCountry,omitempty"`
	Genres          []string           `json:"genres,omitempty"`
	Status          string             `json:"status,omitempty"`
	Runtime         int                `json:"runtime,omitempty"`
	Network         string             `json:"network,omitempty"`
	NumberOfSeasons int                `json:"numberOfSeasons,omitempty"`
	Rating          float64            `json:"rating,omitempty"`
	Creators        []NormalizedPerson `json:"creators,omitempty"`
	Cast            []NormalizedPerson `json:"cast,omitempty"`
	Trailers        []Trailer          `json:"trailers,omitempty"`
}

// NormalizedSeasonResult is the normalized season result with episodes.
type NormalizedSeasonResult struct {
	SeasonNumber int                       `json:"seasonNumber"`
	Name         string                    `json:"name"`
	Overview     string                    `json:"overview"`
	PosterURL    string                    `json:"posterUrl,omitempty"`
	AirDate      string                    `json:"airDate,omitempty"`
	Episodes     []NormalizedEpisodeResult `json:"episodes"`
}

// NormalizedEpisodeResult is the normalized episode result.
type NormalizedEpisodeResult struct {
	EpisodeNumber int    `json:"episodeNumber"`
	SeasonNumber  int    `json:"seasonNumber"`
	Title         string `json:"title"`
	Overview      string `json:"overview,omitempty"`
	AirDate       string `json:"airDate,omitempty"`
	Runtime       int    `json:"runtime,omitempty"`
}

// NormalizedPerson represents a person with optional role and photo.
type NormalizedPerson struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// Trailer is a playable trailer link.
type Trailer struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
