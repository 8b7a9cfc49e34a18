// Package middleware provides HTTP middleware for the callpilot API.
package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"
)

var (
	corsMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}
	corsHeaders = []string{"Accept", "Authorization", "Content-Type"}
)

// CORS returns middleware that handles CORS headers. Origins listed
// explicitly get credentialed responses; a "*" entry admits any other
// origin without credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	wildcard := slices.Contains(allowedOrigins, "*")
	explicit := func(origin string) bool {
		return origin != "*" && slices.Contains(allowedOrigins, origin)
	}

	credentialed := cors.New(cors.Options{
		AllowOriginFunc:  explicit,
		AllowedMethods:   corsMethods,
		AllowedHeaders:   corsHeaders,
		AllowCredentials: true,
		MaxAge:           300,
	})
	anonymous := cors.New(cors.Options{
		AllowOriginFunc: func(string) bool { return wildcard },
		AllowedMethods:  corsMethods,
		AllowedHeaders:  corsHeaders,
		MaxAge:          300,
	})

	return func(next http.Handler) http.Handler {
		withCredentials := credentialed.Handler(next)
		withoutCredentials := anonymous.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if explicit(r.Header.Get("Origin")) {
				withCredentials.ServeHTTP(w, r)
				return
			}
			withoutCredentials.ServeHTTP(w, r)
		})
	}
}

// MaxBody caps request bodies at limit bytes.
func MaxBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
