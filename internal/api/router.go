// Package api wires handlers, middleware, and routes into the HTTP surface.
package api

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/shelfline/server/internal/api/handlers"
	"github.com/shelfline/server/internal/api/middleware"
	"github.com/shelfline/server/internal/auth"
	"github.com/shelfline/server/internal/bus"
	"github.com/shelfline/server/internal/config"
	"github.com/shelfline/server/internal/domain/books"
	"github.com/shelfline/server/internal/metrics"
)

// Dependencies are the process-scoped services the router needs. They are
// constructed once in the serve command and injected here; nothing in the
// API layer reaches for ambient singletons.
type Dependencies struct {
	Config      config.Config
	Logger      zerolog.Logger
	Pool        *pgxpool.Pool
	Queue       *bus.Queue
	Books       *books.Service
	JWTManager  *auth.JWTManager
	Credentials *auth.Credentials
}

func NewRouter(deps Dependencies) http.Handler {
	env := deps.Config.Environment

	authHandler := handlers.NewAuthHandler(deps.Credentials, deps.JWTManager, env)
	booksHandler := handlers.NewBooksHandler(deps.Books, env)
	streamHandler := handlers.NewStreamHandler(deps.Queue, env)

	bearer := middleware.BearerAuth(deps.JWTManager, env)
	loginLimit := middleware.LoginRateLimit(deps.Config.RateLimit.LoginPerMinute)

	mux := http.NewServeMux()

	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /readyz", handlers.Readyz(deps.Pool))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("POST /login", loginLimit(http.HandlerFunc(authHandler.Login)))

	mux.Handle("POST /books/{$}", bearer(http.HandlerFunc(booksHandler.Create)))
	mux.Handle("GET /books/{$}", bearer(http.HandlerFunc(booksHandler.List)))
	mux.Handle("GET /books/{id}", bearer(http.HandlerFunc(booksHandler.Get)))
	mux.Handle("PUT /books/{id}", bearer(http.HandlerFunc(booksHandler.Update)))
	mux.Handle("DELETE /books/{id}", bearer(http.HandlerFunc(booksHandler.Delete)))

	mux.Handle("GET /sse", bearer(http.HandlerFunc(streamHandler.Stream)))

	// Outermost first: panics are caught around everything, then each
	// request gets a correlation ID and logger before tracing and metrics.
	var handler http.Handler = mux
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(deps.Logger)(handler)
	handler = middleware.SecurityHeaders(env == "production")(handler)
	if deps.Config.Tracing.Enabled {
		handler = middleware.Tracing(handler)
	}
	handler = middleware.CorrelationID(deps.Logger)(handler)
	handler = middleware.Recover(env)(handler)
	return handler
}
