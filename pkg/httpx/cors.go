package httpx

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows cross-origin browser clients. An empty origins list reflects
// any origin, which is what the bundled web client expects in development.
func CORS(origins []string) Middleware {
	opts := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Anon-Id", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(origins) == 0 {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
	} else {
		opts.AllowedOrigins = origins
	}
	return cors.Handler(opts)
}
