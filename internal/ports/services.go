package ports

import (
	"context"

	"github.com/carlosnsr/bookshelf/internal/domain/entities"
)

// BookService defines the application-level interface the HTTP layer
// depends on. It mirrors the repository surface; the implementation adds
// logging and leaves status-code selection to the transport.
type BookService interface {
	ListBooks(ctx context.Context) ([]entities.Book, error)
	GetBook(ctx context.Context, id int) (entities.Book, error)
	CreateBook(ctx context.Context, book entities.Book) (entities.Book, error)
	UpdateBook(ctx context.Context, id int, book entities.Book) (entities.Book, error)
	DeleteBook(ctx context.Context, id int) (entities.Book, error)
	Ready() bool
}

// BookPayload carries the validated fixed fields of a create/update
// request body. Extra fields ride along on the bound entities.Book and
// are not validated beyond being well-formed JSON.
type BookPayload struct {
	Author string `json:"author" validate:"required"`
	Title  string `json:"title" validate:"required"`
}
