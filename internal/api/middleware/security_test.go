package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeaders())
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/health", ok)
	e.GET("/api/v1/status", ok)
	e.GET("/api/v1/metadata/artwork/movie/tmdb/603/poster", ok)

	tests := []struct {
		path      string
		wantCache string
	}{
		{"/health", ""},
		{"/api/v1/status", "no-store, no-cache, must-revalidate, private"},
		{"/api/v1/metadata/artwork/movie/tmdb/603/poster", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options = %q", got)
			}
			if got := rec.Header().Get("Cache-Control"); got != tt.wantCache {
				t.Errorf("Cache-Control = %q, want %q", got, tt.wantCache)
			}
		})
	}
}
