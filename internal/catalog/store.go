package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"booklend/internal/platform/db"
)

type Store struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
}

func NewStore(conn *sqlx.DB) *Store {
	return &Store{db: conn, dialect: db.Dialect(conn.DriverName())}
}

func (s *Store) Insert(ctx context.Context, b *Book) error {
	genres, err := json.MarshalToString(nonNil(b.Genres))
	if err != nil {
		return err
	}
	authors, err := json.MarshalToString(nonNil(b.Authors))
	if err != nil {
		return err
	}

	const q = `
	INSERT INTO books
	(book_id, title, category, genres, authors, description, copies, available, created_at)
	VALUES
	(?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, s.db.Rebind(q),
		b.ID, b.Title, b.Category, genres, authors, b.Description, b.Copies, b.Available, b.CreatedAt)
	return err
}

// GetByTitle: 存在しなければ NOT_FOUND
func (s *Store) GetByTitle(ctx context.Context, title string) (*Book, error) {
	q, args, err := s.dialect.From("books").
		Select(bookColumns...).
		Where(goqu.C("title").Eq(title)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var r bookRow
	if err := s.db.GetContext(ctx, &r, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound("book not found")
		}
		return nil, err
	}
	b, err := r.toModel()
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List: category が空なら全件。タイトル昇順
func (s *Store) List(ctx context.Context, category string) ([]Book, error) {
	ds := s.dialect.From("books").Select(bookColumns...)
	if category != "" {
		ds = ds.Where(goqu.C("category").Eq(category))
	}
	q, args, err := ds.Order(goqu.C("title").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	var rows []bookRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]Book, 0, len(rows))
	for _, r := range rows {
		b, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	q, args, err := s.dialect.From("books").
		SelectDistinct("category").
		Order(goqu.C("category").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}
	out := []string{}
	if err := s.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// AddCopies は copies と available を同じ文で増やすので available <= copies は崩れない
func (s *Store) AddCopies(ctx context.Context, bookID string, n int) error {
	const q = `UPDATE books SET copies = copies + ?, available = available + ? WHERE book_id = ?`
	res, err := s.db.ExecContext(ctx, s.db.Rebind(q), n, n, bookID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff != 1 {
		return ErrNotFound("book not found")
	}
	return nil
}
