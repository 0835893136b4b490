package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/shelfline/server/internal/api/problem"
	"github.com/shelfline/server/internal/auth"
)

type contextKeySubject string

const subjectKey contextKeySubject = "subject"

// BearerAuth validates the Authorization bearer token on every request and
// rejects with 401 before the protected handler runs. The token subject is
// placed on the request context.
func BearerAuth(manager *auth.JWTManager, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				writeUnauthorized(w, r, err, env)
				return
			}

			subject, err := manager.Validate(token)
			if err != nil {
				writeUnauthorized(w, r, err, env)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, err error, env string) {
	title := "Unauthorized"
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		title = "Missing token"
	case errors.Is(err, auth.ErrMalformedToken):
		title = "Invalid token payload"
	case errors.Is(err, auth.ErrInvalidToken):
		title = "Invalid or expired token"
	}
	w.Header().Set("WWW-Authenticate", "Bearer")
	problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, title, err, env)
}

// Subject returns the authenticated token subject, or empty if the request
// did not pass BearerAuth.
func Subject(ctx context.Context) string {
	if subject, ok := ctx.Value(subjectKey).(string); ok {
		return subject
	}
	return ""
}
