package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosnsr/bookshelf/internal/domain/entities"
)

func seedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadedRepo(t *testing.T, content string) (*BookRepositoryImpl, string) {
	t.Helper()
	path := seedFile(t, content)
	repo := NewBookRepository(path).(*BookRepositoryImpl)
	require.NoError(t, repo.Load(context.Background()))
	return repo, path
}

const threeBooks = `[
  {"id": 1, "author": "A1", "title": "T1"},
  {"id": 2, "author": "A2", "title": "T2"},
  {"id": 3, "author": "A3", "title": "T3"}
]`

func TestLoadEmptyFile(t *testing.T) {
	ctx := context.Background()
	repo, _ := loadedRepo(t, `[]`)

	books, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	created, err := repo.Add(ctx, entities.Book{Author: "A", Title: "T"})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "A", created.Author)
	assert.Equal(t, "T", created.Title)
}

func TestLoadSetsLastIDFromMaxNotCount(t *testing.T) {
	ctx := context.Background()
	repo, _ := loadedRepo(t, `[{"id": 41, "author": "A", "title": "T"}]`)

	created, err := repo.Add(ctx, entities.Book{Author: "B", Title: "U"})
	require.NoError(t, err)
	assert.Equal(t, 42, created.ID)
}

func TestLoadFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		repo := NewBookRepository(filepath.Join(t.TempDir(), "absent.json"))
		err := repo.Load(ctx)
		assert.ErrorIs(t, err, entities.ErrStoreUnavailable)
		assert.False(t, repo.Ready())
	})

	t.Run("malformed file", func(t *testing.T) {
		repo := NewBookRepository(seedFile(t, `{"not": "an array"`))
		err := repo.Load(ctx)
		assert.ErrorIs(t, err, entities.ErrStoreUnavailable)
		assert.False(t, repo.Ready())
	})
}

func TestUninitializedAccess(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository(filepath.Join(t.TempDir(), "books.json"))

	_, err := repo.All(ctx)
	assert.ErrorIs(t, err, entities.ErrStoreUnavailable)

	_, err = repo.Get(ctx, 1)
	assert.ErrorIs(t, err, entities.ErrStoreUnavailable)

	_, err = repo.Add(ctx, entities.Book{Author: "A", Title: "T"})
	assert.ErrorIs(t, err, entities.ErrStoreUnavailable)

	_, err = repo.Update(ctx, 1, entities.Book{Author: "A", Title: "T"})
	assert.ErrorIs(t, err, entities.ErrStoreUnavailable)

	_, err = repo.Delete(ctx, 1)
	assert.ErrorIs(t, err, entities.ErrStoreUnavailable)
}

func TestAddAssignsUniqueIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	repo, _ := loadedRepo(t, threeBooks)

	seen := map[int]bool{1: true, 2: true, 3: true}
	prev := 3
	for i := 0; i < 5; i++ {
		created, err := repo.Add(ctx, entities.Book{Author: "A", Title: fmt.Sprintf("T%d", i)})
		require.NoError(t, err)
		assert.Greater(t, created.ID, prev)
		assert.False(t, seen[created.ID])
		seen[created.ID] = true
		prev = created.ID
	}
}

func TestDeleteThenAddDoesNotReuseID(t *testing.T) {
	ctx := context.Background()
	repo, _ := loadedRepo(t, threeBooks)

	deleted, err := repo.Delete(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted.ID)

	created, err := repo.Add(ctx, entities.Book{Author: "A4", Title: "T4"})
	require.NoError(t, err)
	assert.Equal(t, 4, created.ID)
}

func TestAddIgnoresIncomingID(t *testing.T) {
	ctx := context.Background()
	repo, _ := loadedRepo(t, threeBooks)

	created, err := repo.Add(ctx, entities.Book{ID: 999, Author: "A", Title: "T"})
	require.NoError(t, err)
	assert.Equal(t, 4, created.ID)

	_, err = repo.Get(ctx, 999)
	assert.ErrorIs(t, err, entities.ErrBookNotFound)
}

func TestUpdateFullReplaceKeepsID(t *testing.T) {
	ctx := context.Background()
	repo, _ := loadedRepo(t, `[{"id": 1, "author": "A", "title": "T", "year": 1900}]`)

	// Replacement drops fields absent from the new record, and the id
	// in the record never wins over the addressed one.
	updated, err := repo.Update(ctx, 1, entities.Book{ID: 77, Author: "B", Title: "U"})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ID)
	assert.Equal(t, "B", updated.Author)
	assert.Equal(t, "U", updated.Title)
	assert.Nil(t, updated.Extra)

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestNotFoundLeavesStateAndFileUntouched(t *testing.T) {
	ctx := context.Background()
	repo, path := loadedRepo(t, threeBooks)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = repo.Get(ctx, 99)
	assert.ErrorIs(t, err, entities.ErrBookNotFound)

	_, err = repo.Update(ctx, 99, entities.Book{Author: "X", Title: "Y"})
	assert.ErrorIs(t, err, entities.ErrBookNotFound)

	_, err = repo.Delete(ctx, 99)
	assert.ErrorIs(t, err, entities.ErrBookNotFound)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	books, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 3)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, path := loadedRepo(t, `[]`)

	var first entities.Book
	require.NoError(t, json.Unmarshal([]byte(`{"author":"A","title":"T","year":1851,"tags":["sea"]}`), &first))

	_, err := repo.Add(ctx, first)
	require.NoError(t, err)
	_, err = repo.Add(ctx, entities.Book{Author: "B", Title: "U"})
	require.NoError(t, err)

	// A fresh store loading the same file must see an equivalent
	// collection, extra fields included.
	reloaded := NewBookRepository(path)
	require.NoError(t, reloaded.Load(ctx))

	orig, err := repo.All(ctx)
	require.NoError(t, err)
	got, err := reloaded.All(ctx)
	require.NoError(t, err)

	require.Len(t, got, len(orig))
	for i := range orig {
		assert.Equal(t, orig[i].ID, got[i].ID)
		assert.Equal(t, orig[i].Author, got[i].Author)
		assert.Equal(t, orig[i].Title, got[i].Title)
		require.Len(t, got[i].Extra, len(orig[i].Extra))
		for k, v := range orig[i].Extra {
			assert.JSONEq(t, string(v), string(got[i].Extra[k]))
		}
	}
}

func TestAllReturnsIDAscending(t *testing.T) {
	ctx := context.Background()
	repo, _ := loadedRepo(t, `[
	  {"id": 3, "author": "A3", "title": "T3"},
	  {"id": 1, "author": "A1", "title": "T1"},
	  {"id": 2, "author": "A2", "title": "T2"}
	]`)

	books, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, books, 3)
	for i, b := range books {
		assert.Equal(t, i+1, b.ID)
	}
}

func TestPersistenceFailureKeepsMemoryAheadOfDisk(t *testing.T) {
	ctx := context.Background()
	repo, _ := loadedRepo(t, `[]`)

	// Point the snapshot writer at a directory that no longer resolves.
	repo.path = filepath.Join(t.TempDir(), "gone", "books.json")

	created, err := repo.Add(ctx, entities.Book{Author: "A", Title: "T"})

	var persistErr *entities.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, repo.path, persistErr.Path)

	// No rollback: the book is live in memory despite the failed write.
	got, getErr := repo.Get(ctx, created.ID)
	require.NoError(t, getErr)
	assert.Equal(t, "T", got.Title)
}

func TestConcurrentAddsAssignDistinctIDs(t *testing.T) {
	ctx := context.Background()
	repo, _ := loadedRepo(t, threeBooks)

	const n = 20
	ids := make(chan int, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := repo.Add(ctx, entities.Book{Author: "A", Title: "T"})
			assert.NoError(t, err)
			ids <- created.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		assert.Greater(t, id, 3)
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestReturnedBooksAreDetachedFromStore(t *testing.T) {
	ctx := context.Background()
	repo, _ := loadedRepo(t, `[{"id": 1, "author": "A", "title": "T", "year": 1900}]`)

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	got.Extra["year"] = json.RawMessage(`2000`)

	again, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.JSONEq(t, `1900`, string(again.Extra["year"]))
}
