package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/shelfline/server/internal/api/problem"
)

// Recover converts handler panics into a generic 500 problem response. The
// panic value is logged server-side and never reaches the client.
func Recover(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					zerolog.Ctx(r.Context()).Error().
						Interface("panic", rec).
						Str("path", r.URL.Path).
						Str("method", r.Method).
						Msg("handler panic")

					problem.Write(w, r, http.StatusInternalServerError,
						problem.TypeServerError, "Server error", nil, env,
						problem.WithDetail("An unexpected error occurred on the server."))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
