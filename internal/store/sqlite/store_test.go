package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarks/internal/domain"
	"github.com/MrSnakeDoc/bookmarks/internal/logger"
)

// setupTestDB opens a store on a fresh database file under t.TempDir().
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "bookmarks.db"), logger.NewNop())
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func sample(title string, rating int) domain.Bookmark {
	return domain.Bookmark{Title: title, URL: "https://" + title + ".example", Description: title + " description", Rating: rating}
}

func TestStore_InsertAndSelect(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	first, err := store.Insert(ctx, sample("first", 1))
	require.NoError(t, err)
	second, err := store.Insert(ctx, sample("second", 5))
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, "first", first.Title)
	assert.Equal(t, "https://first.example", first.URL)
	assert.Equal(t, "first description", first.Description)
	assert.Equal(t, 1, first.Rating)

	got, err := store.SelectByID(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second, *got)

	all, err := store.SelectAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Bookmark{first, second}, all)
}

func TestStore_SelectAllEmpty(t *testing.T) {
	store := setupTestDB(t)

	all, err := store.SelectAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestStore_SelectByIDMissing(t *testing.T) {
	store := setupTestDB(t)

	got, err := store.SelectByID(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_DeleteByID(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	b, err := store.Insert(ctx, sample("gone", 3))
	require.NoError(t, err)

	n, err := store.DeleteByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.DeleteByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "deleting an absent row affects nothing")

	got, err := store.SelectByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_IDsNotReused(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	b, err := store.Insert(ctx, sample("a", 2))
	require.NoError(t, err)
	_, err = store.DeleteByID(ctx, b.ID)
	require.NoError(t, err)

	next, err := store.Insert(ctx, sample("b", 2))
	require.NoError(t, err)
	assert.Greater(t, next.ID, b.ID)
}

func TestStore_Update(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	b, err := store.Insert(ctx, sample("orig", 2))
	require.NoError(t, err)

	title := "changed"
	rating := 4
	n, err := store.Update(ctx, b.ID, domain.BookmarkPatch{Title: &title, Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := store.SelectByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "changed", got.Title)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, b.URL, got.URL)
	assert.Equal(t, b.Description, got.Description)

	n, err = store.Update(ctx, 999, domain.BookmarkPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = store.Update(ctx, b.ID, domain.BookmarkPatch{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestStore_RejectsOutOfRangeRating(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.Insert(context.Background(), sample("bad", 9))
	assert.Error(t, err)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.db")
	ctx := context.Background()

	store, err := Open(path, logger.NewNop())
	require.NoError(t, err)
	b, err := store.Insert(ctx, sample("persist", 3))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path, logger.NewNop())
	require.NoError(t, err)
	defer store.Close()

	got, err := store.SelectByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, b, *got)
	assert.NoError(t, store.Ping(ctx))
}

func TestStore_Count(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, title := range []string{"a", "b", "c"} {
		_, err := store.Insert(ctx, sample(title, 3))
		require.NoError(t, err)
	}

	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
