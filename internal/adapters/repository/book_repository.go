package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/carlosnsr/bookshelf/internal/domain/entities"
	"github.com/carlosnsr/bookshelf/internal/ports"
)

// BookRepositoryImpl implements the BookRepository interface on top of a
// JSON backing file. The in-memory map is canonical; every mutation
// rewrites the whole file as a snapshot. Two states only: uninitialized
// until Load succeeds, ready afterwards, never back.
type BookRepositoryImpl struct {
	path string

	mu     sync.RWMutex
	ready  bool
	books  map[int]entities.Book
	lastID int
}

// NewBookRepository creates a new book repository backed by the file at
// path. The repository is uninitialized until Load is called.
func NewBookRepository(path string) ports.BookRepository {
	return &BookRepositoryImpl{path: path}
}

func (r *BookRepositoryImpl) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("%w: read backing file: %v", entities.ErrStoreUnavailable, err)
	}

	var books []entities.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return fmt.Errorf("%w: parse backing file %s: %v", entities.ErrStoreUnavailable, r.path, err)
	}

	m := make(map[int]entities.Book, len(books))
	lastID := 0
	for _, b := range books {
		m[b.ID] = b
		if b.ID > lastID {
			lastID = b.ID
		}
	}

	r.books = m
	r.lastID = lastID
	r.ready = true

	return nil
}

// guard is the single readiness check every accessor funnels through.
// Callers must hold mu.
func (r *BookRepositoryImpl) guard() (map[int]entities.Book, error) {
	if !r.ready {
		return nil, entities.ErrStoreUnavailable
	}
	return r.books, nil
}

func (r *BookRepositoryImpl) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

func (r *BookRepositoryImpl) All(ctx context.Context) ([]entities.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	books, err := r.guard()
	if err != nil {
		return nil, err
	}

	out := make([]entities.Book, 0, len(books))
	for _, b := range books {
		out = append(out, b.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *BookRepositoryImpl) Get(ctx context.Context, id int) (entities.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	books, err := r.guard()
	if err != nil {
		return entities.Book{}, err
	}

	b, ok := books[id]
	if !ok {
		return entities.Book{}, entities.ErrBookNotFound
	}

	return b.Clone(), nil
}

func (r *BookRepositoryImpl) Add(ctx context.Context, book entities.Book) (entities.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	books, err := r.guard()
	if err != nil {
		return entities.Book{}, err
	}

	// Incoming ids are ignored; lastID is monotonic and never reused,
	// even after deletions.
	r.lastID++
	book.ID = r.lastID
	books[book.ID] = book.Clone()

	if err := r.persistLocked(); err != nil {
		// In-memory state is already mutated; memory stays ahead of
		// disk until the next successful write.
		return book, err
	}

	return book, nil
}

func (r *BookRepositoryImpl) Update(ctx context.Context, id int, book entities.Book) (entities.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	books, err := r.guard()
	if err != nil {
		return entities.Book{}, err
	}

	if _, ok := books[id]; !ok {
		return entities.Book{}, entities.ErrBookNotFound
	}

	// Full replace of every field except id.
	book.ID = id
	books[id] = book.Clone()

	if err := r.persistLocked(); err != nil {
		return book, err
	}

	return book, nil
}

func (r *BookRepositoryImpl) Delete(ctx context.Context, id int) (entities.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	books, err := r.guard()
	if err != nil {
		return entities.Book{}, err
	}

	b, ok := books[id]
	if !ok {
		return entities.Book{}, entities.ErrBookNotFound
	}
	delete(books, id)

	if err := r.persistLocked(); err != nil {
		return b, err
	}

	return b, nil
}

// persistLocked writes a full snapshot of the map to the backing file.
// Callers must hold mu for writing.
func (r *BookRepositoryImpl) persistLocked() error {
	out := make([]entities.Book, 0, len(r.books))
	for _, b := range r.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if err := WriteSnapshot(r.path, out); err != nil {
		return &entities.PersistenceError{Path: r.path, Err: err}
	}

	return nil
}

// WriteSnapshot serializes books as a JSON array and atomically replaces
// the file at path, writing a temp file first and renaming it over the
// original so a crash mid-write cannot corrupt the previous snapshot.
func WriteSnapshot(path string, books []entities.Book) error {
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(books); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
