package problem

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteDevelopmentIncludesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/books/9", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusNotFound, TypeNotFound, "Not found", errors.New("book not found"), "development")

	require.Equal(t, http.StatusNotFound, res.Code)
	require.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))

	var p ProblemDetails
	require.NoError(t, json.NewDecoder(res.Body).Decode(&p))
	require.Equal(t, TypeNotFound, p.Type)
	require.Equal(t, "book not found", p.Detail)
	require.Equal(t, "/books/9", p.Instance)
}

func TestWriteProductionHidesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/books/", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusInternalServerError, TypeServerError, "Server error", errors.New("pq: connection refused"), "production")

	var p ProblemDetails
	require.NoError(t, json.NewDecoder(res.Body).Decode(&p))
	require.Equal(t, http.StatusText(http.StatusInternalServerError), p.Detail)
	require.NotContains(t, p.Detail, "connection refused")
}

func TestWriteWithErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/books/", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusUnprocessableEntity, TypeValidation, "Invalid request", errors.New("validation failed"), "test",
		WithErrors(map[string]any{"title": "required"}))

	var p ProblemDetails
	require.NoError(t, json.NewDecoder(res.Body).Decode(&p))
	require.Equal(t, "required", p.Errors["title"])
}
