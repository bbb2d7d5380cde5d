// Package testutil provides canned provider servers for tests that run the
// real TMDB client over HTTP.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/slipstream/mediascraper/internal/config"
)

// Movie fixtures served by NewTMDBServer.
const (
	MatrixSearchJSON  = `{"page":1,"total_results":1,"results":[{"id":603,"title":"The Matrix","original_title":"The Matrix","release_date":"1999-03-30","poster_path":"/matrix.jpg","backdrop_path":"/matrix-bg.jpg"}]}`
	MatrixDetailsJSON = `{"id":603,"title":"The Matrix","release_date":"1999-03-30","runtime":136,"genres":[{"id":28,"name":"Action"}],"poster_path":"/matrix.jpg"}`
)

type response struct {
	status int
	body   string
}

// TMDBServer is a fake TMDB API. Unknown paths answer 404.
type TMDBServer struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]response
	requests []string
}

// NewTMDBServer starts a server answering /configuration, a search for
// "The Matrix" and its details. It is closed when the test ends.
func NewTMDBServer(t *testing.T) *TMDBServer {
	t.Helper()

	s := &TMDBServer{routes: make(map[string]response)}
	s.JSON("/configuration", `{"images":{"base_url":"http://image.test/"}}`)
	s.JSON("/search/movie", MatrixSearchJSON)
	s.JSON("/movie/603", MatrixDetailsJSON)

	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *TMDBServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.Path)
	resp, ok := s.routes[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

// JSON answers path with 200 and body.
func (s *TMDBServer) JSON(path, body string) {
	s.Handle(path, http.StatusOK, body)
}

// Handle answers path with status and body.
func (s *TMDBServer) Handle(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[path] = response{status: status, body: body}
}

// Requests returns the paths requested so far.
func (s *TMDBServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Config returns TMDB settings pointing at the server.
func (s *TMDBServer) Config() config.TMDBConfig {
	return config.TMDBConfig{
		APIKey:       "test-key",
		BaseURL:      s.URL,
		ImageBaseURL: s.URL,
		Timeout:      5,
	}
}

// NewTestLogger creates a test logger that outputs to t.Log.
func NewTestLogger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
}
