package ports

import (
	"context"

	"github.com/carlosnsr/bookshelf/internal/domain/entities"
)

// BookRepository defines the interface for book data operations. The
// implementation owns the only access path to persisted state: every
// accessor fails with entities.ErrStoreUnavailable until Load has
// completed successfully.
type BookRepository interface {
	// Load reads the backing file and populates the in-memory state.
	// Must complete before any other operation is invoked; the caller
	// sequences this ahead of accepting requests.
	Load(ctx context.Context) error

	// All returns every book, ordered by ascending id.
	All(ctx context.Context) ([]entities.Book, error)

	// Get returns the book with the given id, or entities.ErrBookNotFound.
	Get(ctx context.Context, id int) (entities.Book, error)

	// Add ignores any id on the given book, assigns the next id, and
	// persists. Returns the stored book including its assigned id.
	Add(ctx context.Context, book entities.Book) (entities.Book, error)

	// Update replaces all fields except id with those of the given book
	// and persists. Returns entities.ErrBookNotFound without mutating
	// anything if the id is absent.
	Update(ctx context.Context, id int, book entities.Book) (entities.Book, error)

	// Delete removes the book with the given id and persists. Returns
	// the removed book, or entities.ErrBookNotFound.
	Delete(ctx context.Context, id int) (entities.Book, error)

	// Ready reports whether Load has completed successfully.
	Ready() bool
}
