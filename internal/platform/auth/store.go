package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type Member struct {
	ID           string    `db:"member_id"`
	Email        string    `db:"email"`
	DisplayName  string    `db:"display_name"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
}

func (m *Member) Role() string {
	if m.IsAdmin {
		return RoleAdmin
	}
	return RoleMember
}

// MemberStore returns (nil, nil) from the getters when no row matches.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
	Create(ctx context.Context, m *Member) error
}

type Store struct{ db *sqlx.DB }

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const selectMember = `
SELECT member_id, email, display_name, password_hash, is_admin, created_at
FROM members
`

func (s *Store) GetByID(ctx context.Context, id string) (*Member, error) {
	return s.getOne(ctx, selectMember+`WHERE member_id = ?`, id)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*Member, error) {
	return s.getOne(ctx, selectMember+`WHERE email = ?`, email)
}

func (s *Store) getOne(ctx context.Context, q string, arg any) (*Member, error) {
	var m Member
	err := s.db.GetContext(ctx, &m, s.db.Rebind(q), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}

func (s *Store) Create(ctx context.Context, m *Member) error {
	const q = `
INSERT INTO members (member_id, email, display_name, password_hash, is_admin, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`
	_, err := s.db.ExecContext(ctx, s.db.Rebind(q),
		m.ID, m.Email, m.DisplayName, m.PasswordHash, m.IsAdmin, m.CreatedAt)
	return err
}
