package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/shelfline/server/internal/domain/books"
)

var (
	sharedOnce      sync.Once
	sharedInitErr   error
	sharedContainer *postgres.PostgresContainer
	sharedPool      *pgxpool.Pool
)

const sharedContainerName = "shelfline-storage-db"

func TestMain(m *testing.M) {
	code := m.Run()
	cleanupShared()
	os.Exit(code)
}

func setupRepository(t *testing.T) *BookRepository {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	initShared(t)

	_, err := sharedPool.Exec(context.Background(), `TRUNCATE books RESTART IDENTITY`)
	require.NoError(t, err)

	repo, err := NewBookRepository(sharedPool)
	require.NoError(t, err)
	return repo
}

func initShared(t *testing.T) {
	t.Helper()
	sharedOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		_ = os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

		container, err := postgres.Run(
			ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("shelfline"),
			postgres.WithUsername("shelfline"),
			postgres.WithPassword("shelfline_dev"),
			postgres.BasicWaitStrategies(),
			testcontainers.WithReuseByName(sharedContainerName),
		)
		if err != nil {
			sharedInitErr = err
			return
		}
		sharedContainer = container

		dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedInitErr = err
			return
		}

		if err := MigrateUp(dbURL, migrationsDir()); err != nil {
			sharedInitErr = err
			return
		}

		pool, err := Connect(ctx, dbURL)
		if err != nil {
			sharedInitErr = err
			return
		}
		sharedPool = pool
	})

	if sharedInitErr != nil {
		t.Skipf("postgres container unavailable: %v", sharedInitErr)
	}
}

func cleanupShared() {
	if sharedPool != nil {
		sharedPool.Close()
	}
	if sharedContainer != nil {
		_ = sharedContainer.Terminate(context.Background())
	}
}

func migrationsDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "migrations")
}

func strPtr(s string) *string { return &s }

func TestBookRepositoryCreateGetRoundTrip(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, books.CreateParams{
		Title:  "Dune",
		Author: "Herbert",
		Genre:  strPtr("sci-fi"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)
	require.Equal(t, "Dune", created.Title)
	require.Nil(t, created.PublishedDate)
	require.Nil(t, created.Summary)
	require.NotNil(t, created.Genre)
	require.Equal(t, "sci-fi", *created.Genre)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, created.Title, got.Title)
	require.Equal(t, created.Author, got.Author)
	require.Equal(t, created.Genre, got.Genre)
}

func TestBookRepositoryGetMissing(t *testing.T) {
	repo := setupRepository(t)

	_, err := repo.GetByID(context.Background(), 42)
	require.ErrorIs(t, err, books.ErrNotFound)
}

func TestBookRepositoryListPaging(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, books.CreateParams{Title: "Book", Author: "Author"})
		require.NoError(t, err)
	}

	result, err := repo.List(ctx, books.Page{Skip: 2, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, int64(5), result.TotalCount)
	require.Len(t, result.Books, 2)
	require.Equal(t, int64(3), result.Books[0].ID)
	require.Equal(t, int64(4), result.Books[1].ID)

	tail, err := repo.List(ctx, books.Page{Skip: 4, Limit: 10})
	require.NoError(t, err)
	require.Len(t, tail.Books, 1)
	require.Equal(t, int64(5), tail.Books[0].ID)
}

func TestBookRepositoryPartialUpdate(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, books.CreateParams{
		Title:   "Dune",
		Author:  "Herbert",
		Summary: strPtr("Desert planet"),
	})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, books.UpdateParams{Title: strPtr("Dune Messiah")})
	require.NoError(t, err)
	require.Equal(t, "Dune Messiah", updated.Title)
	require.Equal(t, "Herbert", updated.Author)
	require.NotNil(t, updated.Summary)
	require.Equal(t, "Desert planet", *updated.Summary)
}

func TestBookRepositoryUpdateMissing(t *testing.T) {
	repo := setupRepository(t)

	_, err := repo.Update(context.Background(), 42, books.UpdateParams{Title: strPtr("X")})
	require.ErrorIs(t, err, books.ErrNotFound)
}

func TestBookRepositoryDeleteThenGet(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, books.CreateParams{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err = repo.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, books.ErrNotFound)

	require.ErrorIs(t, repo.Delete(ctx, created.ID), books.ErrNotFound)
}
