package services

import (
	"context"

	"github.com/carlosnsr/bookshelf/internal/domain/entities"
	"github.com/carlosnsr/bookshelf/internal/infrastructure/logger"
	"github.com/carlosnsr/bookshelf/internal/ports"
)

var _ ports.BookService = (*BookService)(nil)

// BookService handles book-related operations
type BookService struct {
	bookRepo ports.BookRepository
	logger   *logger.Logger
}

// NewBookService creates a new book service
func NewBookService(bookRepo ports.BookRepository, logger *logger.Logger) *BookService {
	return &BookService{
		bookRepo: bookRepo,
		logger:   logger,
	}
}

// ListBooks returns every book in the store
func (s *BookService) ListBooks(ctx context.Context) ([]entities.Book, error) {
	books, err := s.bookRepo.All(ctx)
	if err != nil {
		return nil, err
	}
	return books, nil
}

// GetBook retrieves a book by ID
func (s *BookService) GetBook(ctx context.Context, id int) (entities.Book, error) {
	return s.bookRepo.Get(ctx, id)
}

// CreateBook stores a new book and returns it with its assigned id
func (s *BookService) CreateBook(ctx context.Context, book entities.Book) (entities.Book, error) {
	created, err := s.bookRepo.Add(ctx, book)
	if err != nil {
		return created, err
	}

	s.logger.Infow("Book created", "book_id", created.ID, "title", created.Title)

	return created, nil
}

// UpdateBook replaces all non-id fields of an existing book
func (s *BookService) UpdateBook(ctx context.Context, id int, book entities.Book) (entities.Book, error) {
	updated, err := s.bookRepo.Update(ctx, id, book)
	if err != nil {
		return updated, err
	}

	s.logger.Infow("Book updated", "book_id", updated.ID)

	return updated, nil
}

// DeleteBook removes a book and returns the removed record
func (s *BookService) DeleteBook(ctx context.Context, id int) (entities.Book, error) {
	deleted, err := s.bookRepo.Delete(ctx, id)
	if err != nil {
		return deleted, err
	}

	s.logger.Infow("Book deleted", "book_id", id)

	return deleted, nil
}

// Ready reports whether the underlying store has loaded
func (s *BookService) Ready() bool {
	return s.bookRepo.Ready()
}
