package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/shelfline/server/internal/auth"
	"github.com/shelfline/server/internal/bus"
	"github.com/shelfline/server/internal/config"
	"github.com/shelfline/server/internal/domain/books"
)

type memoryRepo struct {
	nextID int64
	items  map[int64]books.Book
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, items: make(map[int64]books.Book)}
}

func (m *memoryRepo) Create(_ context.Context, params books.CreateParams) (*books.Book, error) {
	book := books.Book{
		ID:     m.nextID,
		Title:  params.Title,
		Author: params.Author,
	}
	m.items[book.ID] = book
	m.nextID++
	return &book, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (*books.Book, error) {
	book, ok := m.items[id]
	if !ok {
		return nil, books.ErrNotFound
	}
	return &book, nil
}

func (m *memoryRepo) List(_ context.Context, page books.Page) (books.ListResult, error) {
	out := make([]books.Book, 0, len(m.items))
	for _, book := range m.items {
		out = append(out, book)
	}
	return books.ListResult{Books: out, TotalCount: int64(len(m.items))}, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, params books.UpdateParams) (*books.Book, error) {
	book, ok := m.items[id]
	if !ok {
		return nil, books.ErrNotFound
	}
	if params.Title != nil {
		book.Title = *params.Title
	}
	if params.Author != nil {
		book.Author = *params.Author
	}
	m.items[id] = book
	return &book, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return books.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func newTestRouter(t *testing.T) (http.Handler, *auth.JWTManager) {
	t.Helper()

	cfg := config.Config{Environment: "test"}
	cfg.RateLimit.LoginPerMinute = 0

	queue := bus.NewQueue()
	manager := auth.NewJWTManager("test-secret", time.Hour, "shelfline-test")

	router := NewRouter(Dependencies{
		Config:      cfg,
		Logger:      zerolog.Nop(),
		Queue:       queue,
		Books:       books.NewService(newMemoryRepo(), queue),
		JWTManager:  manager,
		Credentials: auth.NewCredentials("admin", "secret", ""),
	})
	return router, manager
}

func TestRouterProtectedRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/books/"},
		{http.MethodPost, "/books/"},
		{http.MethodGet, "/books/1"},
		{http.MethodPut, "/books/1"},
		{http.MethodDelete, "/books/1"},
		{http.MethodGet, "/sse"},
	}

	for _, route := range routes {
		req := httptest.NewRequest(route.method, route.path, nil)
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)
		require.Equalf(t, http.StatusUnauthorized, res.Code, "%s %s", route.method, route.path)
	}
}

func TestRouterCreateThenGet(t *testing.T) {
	router, manager := newTestRouter(t)

	token, _, err := manager.Issue("admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/books/", strings.NewReader(`{"title":"Dune","author":"Herbert"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusCreated, res.Code)

	var created map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	require.Equal(t, float64(1), created["id"])

	req = httptest.NewRequest(http.MethodGet, "/books/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	require.Equal(t, "Dune", got["title"])
}

func TestRouterLoginIsPublic(t *testing.T) {
	router, _ := newTestRouter(t)

	form := strings.NewReader("username=admin&password=secret")
	req := httptest.NewRequest(http.MethodPost, "/login", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.NotEmpty(t, body["access_token"])
}

func TestRouterHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
}

func TestRouterCorrelationIDHeader(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.NotEmpty(t, res.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, "abc-123", res.Header().Get("X-Request-ID"))
}
