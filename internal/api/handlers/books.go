package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shelfline/server/internal/api/problem"
	"github.com/shelfline/server/internal/domain/books"
)

type BooksHandler struct {
	Service *books.Service
	Env     string
}

func NewBooksHandler(service *books.Service, env string) *BooksHandler {
	return &BooksHandler{Service: service, Env: env}
}

type pageResponse struct {
	Data       []books.Book `json:"data"`
	TotalCount int64        `json:"total_count"`
	NextURL    *string      `json:"next_url"`
	PrevURL    *string      `json:"prev_url"`
}

func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	var params books.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	book, err := h.Service.Create(r.Context(), params)
	if err != nil {
		if verrs, ok := books.ValidationErrors(err); ok {
			problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeValidation, "Invalid request", err, h.Env,
				problem.WithErrors(fieldErrors(verrs)))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, book)
}

func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	page, err := books.ParsePage(r.URL.Query())
	if err != nil {
		problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	result, err := h.Service.List(r.Context(), page)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, pageResponse{
		Data:       result.Books,
		TotalCount: result.TotalCount,
		NextURL:    nextURL(r.URL.Path, page, result.TotalCount),
		PrevURL:    prevURL(r.URL.Path, page),
	})
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	id, ok := parseIDParam(w, r, h.Env)
	if !ok {
		return
	}

	book, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeLookupError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	id, ok := parseIDParam(w, r, h.Env)
	if !ok {
		return
	}

	var params books.UpdateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	book, err := h.Service.Update(r.Context(), id, params)
	if err != nil {
		writeLookupError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	id, ok := parseIDParam(w, r, h.Env)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeLookupError(w, r, err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseIDParam(w http.ResponseWriter, r *http.Request, env string) (int64, bool) {
	id, err := books.ParseID(r.PathValue("id"))
	if err != nil {
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Book not found", err, env)
		return 0, false
	}
	return id, true
}

func writeLookupError(w http.ResponseWriter, r *http.Request, err error, env string) {
	if errors.Is(err, books.ErrNotFound) {
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Book not found", err, env)
		return
	}
	problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, env)
}

func nextURL(path string, page books.Page, total int64) *string {
	if int64(page.Skip+page.Limit) >= total {
		return nil
	}
	return pageURL(path, page.Skip+page.Limit, page.Limit)
}

func prevURL(path string, page books.Page) *string {
	if page.Skip <= 0 {
		return nil
	}
	skip := page.Skip - page.Limit
	if skip < 0 {
		skip = 0
	}
	return pageURL(path, skip, page.Limit)
}

func pageURL(path string, skip, limit int) *string {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))
	u := path + "?" + query.Encode()
	return &u
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
