package seed_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklend/internal/catalog"
	"booklend/internal/loans"
	"booklend/internal/platform/auth"
	"booklend/internal/platform/db"
	"booklend/internal/platform/db/dbtest"
	"booklend/internal/seed"
)

const books = `[
  {"title": "Dune", "category": "Science Fiction", "authors": ["Frank Herbert"], "copies": 2},
  {"title": "Emma", "category": "Classics", "authors": ["Jane Austen"], "copies": 1},
  {"title": "Hyperion", "category": "Science Fiction", "authors": ["Dan Simmons"], "copies": 1},
  {"title": "Kindred", "category": "Classics", "authors": ["Octavia E. Butler"], "copies": 0}
]`

func Test_ImportCatalog_SkipsExisting(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	s := seed.New(conn, loans.DefaultPolicy(), 1, time.Now())

	n, err := s.ImportCatalog(ctx, strings.NewReader(books))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = s.ImportCatalog(ctx, strings.NewReader(books))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = s.ImportCatalog(ctx, strings.NewReader(`{"title":`))
	assert.Error(t, err)
}

func Test_DemoLoans_Backdated(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := seed.New(conn, loans.DefaultPolicy(), 42, now)

	_, err := s.ImportCatalog(ctx, strings.NewReader(books))
	require.NoError(t, err)

	member, err := auth.NewService(conn, db.AuthConfig{JWTSecret: "x"}).
		Register(ctx, auth.NewMember{Email: "demo@example.com", DisplayName: "Demo", Password: "password123"})
	require.NoError(t, err)

	// Kindred has no copies, so at most three books can be lent
	out, err := s.DemoLoans(ctx, member.ID, 10)
	require.NoError(t, err)
	assert.Len(t, out, 3)

	for _, l := range out {
		assert.False(t, l.BorrowedAt.After(now))
		assert.False(t, l.BorrowedAt.Before(now.Add(-seed.MaxBackdateDays*24*time.Hour)))
		assert.True(t, l.DueAt.Equal(l.BorrowedAt.Add(loans.DefaultLoanPeriod)))
		assert.NotEqual(t, "Kindred", l.BookTitle)
	}

	cat := catalog.NewService(conn)
	list, err := cat.ListBooks(ctx, catalog.CategoryAll)
	require.NoError(t, err)
	lent := 0
	for _, b := range list.Items {
		assert.GreaterOrEqual(t, b.Available, 0)
		lent += b.Copies - b.Available
	}
	assert.Equal(t, len(out), lent)
}
