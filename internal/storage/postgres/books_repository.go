package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelfline/server/internal/domain/books"
)

var _ books.Repository = (*BookRepository)(nil)

type BookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) (*BookRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("book repository: pool is nil")
	}
	return &BookRepository{pool: pool}, nil
}

type bookRow struct {
	ID            int64
	Title         string
	Author        string
	PublishedDate *string
	Summary       *string
	Genre         *string
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

func (row bookRow) toBook() books.Book {
	book := books.Book{
		ID:            row.ID,
		Title:         row.Title,
		Author:        row.Author,
		PublishedDate: row.PublishedDate,
		Summary:       row.Summary,
		Genre:         row.Genre,
	}
	if row.CreatedAt.Valid {
		book.CreatedAt = row.CreatedAt.Time
	}
	if row.UpdatedAt.Valid {
		book.UpdatedAt = row.UpdatedAt.Time
	}
	return book
}

const bookColumns = "id, title, author, published_date, summary, genre, created_at, updated_at"

func scanBook(row pgx.Row) (books.Book, error) {
	var r bookRow
	err := row.Scan(
		&r.ID,
		&r.Title,
		&r.Author,
		&r.PublishedDate,
		&r.Summary,
		&r.Genre,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return books.Book{}, err
	}
	return r.toBook(), nil
}

func (r *BookRepository) Create(ctx context.Context, params books.CreateParams) (*books.Book, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO books (title, author, published_date, summary, genre)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+bookColumns,
		params.Title,
		params.Author,
		params.PublishedDate,
		params.Summary,
		params.Genre,
	)

	book, err := scanBook(row)
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return &book, nil
}

func (r *BookRepository) GetByID(ctx context.Context, id int64) (*books.Book, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)

	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, books.ErrNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

func (r *BookRepository) List(ctx context.Context, page books.Page) (books.ListResult, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM books`).Scan(&total); err != nil {
		return books.ListResult{}, fmt.Errorf("count books: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+bookColumns+`
  FROM books
 ORDER BY id ASC
 LIMIT $1 OFFSET $2`,
		page.Limit,
		page.Skip,
	)
	if err != nil {
		return books.ListResult{}, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	items := make([]books.Book, 0, page.Limit)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return books.ListResult{}, fmt.Errorf("scan book: %w", err)
		}
		items = append(items, book)
	}
	if err := rows.Err(); err != nil {
		return books.ListResult{}, fmt.Errorf("list books: %w", err)
	}

	return books.ListResult{Books: items, TotalCount: total}, nil
}

func (r *BookRepository) Update(ctx context.Context, id int64, params books.UpdateParams) (*books.Book, error) {
	if params.Empty() {
		// Nothing to change; an empty payload still counts as an update.
		return r.touch(ctx, id)
	}

	// Only supplied fields are written; absent fields keep their prior value.
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)

	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Title != nil {
		addSet("title", *params.Title)
	}
	if params.Author != nil {
		addSet("author", *params.Author)
	}
	if params.PublishedDate != nil {
		addSet("published_date", *params.PublishedDate)
	}
	if params.Summary != nil {
		addSet("summary", *params.Summary)
	}
	if params.Genre != nil {
		addSet("genre", *params.Genre)
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE books SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "),
		len(args),
		bookColumns,
	)

	book, err := scanBook(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, books.ErrNotFound
		}
		return nil, fmt.Errorf("update book: %w", err)
	}
	return &book, nil
}

func (r *BookRepository) touch(ctx context.Context, id int64) (*books.Book, error) {
	book, err := scanBook(r.pool.QueryRow(ctx, `
UPDATE books SET updated_at = now() WHERE id = $1 RETURNING `+bookColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, books.ErrNotFound
		}
		return nil, fmt.Errorf("update book: %w", err)
	}
	return &book, nil
}

func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return books.ErrNotFound
	}
	return nil
}
