package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"booklend/internal/platform/db"
	"booklend/internal/platform/ids"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// ===== Service =====

type Service struct {
	store *Store
	now   func() time.Time
}

func NewService(conn *sqlx.DB) *Service {
	return &Service{
		store: NewStore(conn),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Store exposes the repository for collaborators that look books up by title.
func (s *Service) Store() *Store { return s.store }

// POST /books (admin)
func (s *Service) AddBook(ctx context.Context, in CreateBookRequest) (BookResponse, error) {
	title := NormalizeTitle(in.Title)
	category := NormalizeCategory(in.Category)
	if title == "" || category == "" {
		return BookResponse{}, ErrInvalid("title and category are required")
	}
	if in.Copies < 0 {
		return BookResponse{}, ErrInvalid("copies must be >= 0")
	}

	now := s.now()
	b := &Book{
		ID:          ids.NewULID(now),
		Title:       title,
		Category:    category,
		Genres:      normalizeList(in.Genres),
		Authors:     normalizeList(in.Authors),
		Description: strings.TrimSpace(in.Description),
		Copies:      in.Copies,
		Available:   in.Copies,
		CreatedAt:   now,
	}
	if err := s.store.Insert(ctx, b); err != nil {
		if db.IsDuplicateKey(err) {
			return BookResponse{}, ErrConflict("a book with this title already exists")
		}
		return BookResponse{}, err
	}
	log.Printf("[INFO] book added: %q copies=%d", b.Title, b.Copies)
	return b.toDTO(), nil
}

// POST /books/:title/copies (admin)
func (s *Service) AddCopies(ctx context.Context, title string, n int) (BookResponse, error) {
	if n <= 0 {
		return BookResponse{}, ErrInvalid("copies must be > 0")
	}
	b, err := s.store.GetByTitle(ctx, NormalizeTitle(title))
	if err != nil {
		return BookResponse{}, err
	}
	if err := s.store.AddCopies(ctx, b.ID, n); err != nil {
		return BookResponse{}, err
	}
	updated, err := s.store.GetByTitle(ctx, b.Title)
	if err != nil {
		return BookResponse{}, err
	}
	return updated.toDTO(), nil
}

// GET /books/:title
func (s *Service) GetBook(ctx context.Context, title string) (BookResponse, error) {
	b, err := s.store.GetByTitle(ctx, NormalizeTitle(title))
	if err != nil {
		return BookResponse{}, err
	}
	return b.toDTO(), nil
}

// GET /books?category=
func (s *Service) ListBooks(ctx context.Context, category string) (ListBooksResponse, error) {
	selected := CategoryAll
	filter := ""
	if c := strings.TrimSpace(category); c != "" && !strings.EqualFold(c, CategoryAll) {
		filter = NormalizeCategory(c)
		selected = filter
	}

	books, err := s.store.List(ctx, filter)
	if err != nil {
		return ListBooksResponse{}, err
	}
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return ListBooksResponse{}, err
	}

	items := make([]BookResponse, 0, len(books))
	for _, b := range books {
		items = append(items, b.toDTO())
	}
	return ListBooksResponse{Items: items, SelectedCategory: selected, Categories: categories}, nil
}

// GET /categories
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.store.Categories(ctx)
}
