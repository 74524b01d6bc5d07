package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/carlosnsr/bookshelf/internal/domain/entities"
	"github.com/carlosnsr/bookshelf/internal/infrastructure/logger"
	"github.com/carlosnsr/bookshelf/internal/ports"
)

// BookHandler handles book-related requests
type BookHandler struct {
	bookService ports.BookService
	logger      *logger.Logger
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService ports.BookService, logger *logger.Logger) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		logger:      logger,
	}
}

// ListBooks handles listing all books
func (h *BookHandler) ListBooks(c echo.Context) error {
	books, err := h.bookService.ListBooks(c.Request().Context())
	if err != nil {
		return h.mapStoreError(c, err)
	}

	return c.JSON(http.StatusOK, books)
}

// GetBook handles getting a book by ID
func (h *BookHandler) GetBook(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	book, err := h.bookService.GetBook(c.Request().Context(), id)
	if err != nil {
		return h.mapStoreError(c, err)
	}

	return c.JSON(http.StatusOK, book)
}

// CreateBook handles book creation
func (h *BookHandler) CreateBook(c echo.Context) error {
	book, err := bindBook(c)
	if err != nil {
		return err
	}

	created, err := h.bookService.CreateBook(c.Request().Context(), book)
	if err != nil {
		return h.mapStoreError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

// UpdateBook handles replacing an existing book
func (h *BookHandler) UpdateBook(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	book, err := bindBook(c)
	if err != nil {
		return err
	}

	updated, err := h.bookService.UpdateBook(c.Request().Context(), id, book)
	if err != nil {
		return h.mapStoreError(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteBook handles deleting a book
func (h *BookHandler) DeleteBook(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	deleted, err := h.bookService.DeleteBook(c.Request().Context(), id)
	if err != nil {
		return h.mapStoreError(c, err)
	}

	return c.JSON(http.StatusOK, deleted)
}

// mapStoreError translates the store error taxonomy to status codes. An
// unloaded store and a missing id both answer 404; only a failed
// snapshot write is a server fault.
func (h *BookHandler) mapStoreError(c echo.Context, err error) error {
	var persistErr *entities.PersistenceError
	switch {
	case errors.Is(err, entities.ErrBookNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Book not found")
	case errors.Is(err, entities.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusNotFound, "Store unavailable")
	case errors.As(err, &persistErr):
		h.logger.Errorw("Snapshot write failed", "error", err, "path", persistErr.Path)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Failed to persist books")
	default:
		h.logger.Errorw("Store operation failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

func parseID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid book ID")
	}
	return id, nil
}

// bindBook decodes a request body into a Book, keeping unknown fields,
// and validates the fixed ones. Any id in the body is ignored downstream.
func bindBook(c echo.Context) (entities.Book, error) {
	var book entities.Book
	if err := c.Bind(&book); err != nil {
		return book, echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	payload := ports.BookPayload{Author: book.Author, Title: book.Title}
	if err := c.Validate(&payload); err != nil {
		return book, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return book, nil
}
