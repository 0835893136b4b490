package books

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when no book exists with the requested id.
var ErrNotFound = errors.New("book not found")

// Book is the persistent record. Optional fields are pointers so the wire
// format carries explicit nulls when they are unset.
type Book struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	PublishedDate *string `json:"published_date"`
	Summary       *string `json:"summary"`
	Genre         *string `json:"genre"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// CreateParams carries the fields accepted on create.
type CreateParams struct {
	Title         string  `json:"title" validate:"required"`
	Author        string  `json:"author" validate:"required"`
	PublishedDate *string `json:"published_date"`
	Summary       *string `json:"summary"`
	Genre         *string `json:"genre"`
}

// UpdateParams carries a partial update. Nil fields are left untouched.
type UpdateParams struct {
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	PublishedDate *string `json:"published_date"`
	Summary       *string `json:"summary"`
	Genre         *string `json:"genre"`
}

// Empty reports whether no field was supplied.
func (p UpdateParams) Empty() bool {
	return p.Title == nil && p.Author == nil && p.PublishedDate == nil &&
		p.Summary == nil && p.Genre == nil
}

// Page is an offset/limit window over the collection.
type Page struct {
	Skip  int
	Limit int
}

// ListResult is one page of books plus the collection size.
type ListResult struct {
	Books      []Book
	TotalCount int64
}

// Repository is the persistence contract for books.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Book, error)
	GetByID(ctx context.Context, id int64) (*Book, error)
	List(ctx context.Context, page Page) (ListResult, error)
	Update(ctx context.Context, id int64, params UpdateParams) (*Book, error)
	Delete(ctx context.Context, id int64) error
}

// FilterError is a validation failure on a query or path parameter.
type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

const (
	defaultLimit = 10
)

// ParsePage reads skip/limit query parameters. skip must be >= 0 and limit
// >= 1; there is no upper bound on limit.
func ParsePage(values url.Values) (Page, error) {
	page := Page{Skip: 0, Limit: defaultLimit}

	if raw := strings.TrimSpace(values.Get("skip")); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil {
			return page, FilterError{Field: "skip", Message: "must be an integer"}
		}
		if skip < 0 {
			return page, FilterError{Field: "skip", Message: "must be >= 0"}
		}
		page.Skip = skip
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return page, FilterError{Field: "limit", Message: "must be an integer"}
		}
		if limit < 1 {
			return page, FilterError{Field: "limit", Message: "must be >= 1"}
		}
		page.Limit = limit
	}

	return page, nil
}

// ParseID reads a book id path parameter.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, FilterError{Field: "id", Message: "must be a positive integer"}
	}
	return id, nil
}
