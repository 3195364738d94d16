// Package seed fills a database with catalog data and demo loans for local
// development. Randomized backdating of loans lives here and nowhere else:
// the request path always borrows at the real current time.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/jmoiron/sqlx"

	"booklend/internal/catalog"
	"booklend/internal/loans"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MaxBackdateDays bounds how far in the past a demo loan may start.
const MaxBackdateDays = 30

type Seeder struct {
	conn    *sqlx.DB
	catalog *catalog.Service
	policy  loans.Policy
	rnd     *rand.Rand
	now     time.Time
}

// New returns a Seeder whose random choices are reproducible for a given seed value.
func New(conn *sqlx.DB, policy loans.Policy, seed uint64, now time.Time) *Seeder {
	return &Seeder{
		conn:    conn,
		catalog: catalog.NewService(conn),
		policy:  policy,
		rnd:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now:     now.UTC(),
	}
}

// ImportCatalog reads a JSON array of books and adds the ones not yet present.
func (s *Seeder) ImportCatalog(ctx context.Context, r io.Reader) (int, error) {
	var books []catalog.CreateBookRequest
	if err := json.NewDecoder(r).Decode(&books); err != nil {
		return 0, fmt.Errorf("decode catalog: %w", err)
	}

	added := 0
	for _, b := range books {
		_, err := s.catalog.AddBook(ctx, b)
		var api *catalog.APIError
		if errors.As(err, &api) && api.Code == catalog.CodeConflict {
			continue
		}
		if err != nil {
			return added, fmt.Errorf("add %q: %w", b.Title, err)
		}
		added++
	}
	return added, nil
}

// DemoLoans borrows up to n random books for memberID, each starting a random
// number of days before now, so listings show a mix of active and overdue loans.
func (s *Seeder) DemoLoans(ctx context.Context, memberID string, n int) ([]loans.Loan, error) {
	list, err := s.catalog.ListBooks(ctx, catalog.CategoryAll)
	if err != nil {
		return nil, err
	}
	s.rnd.Shuffle(len(list.Items), func(i, j int) { list.Items[i], list.Items[j] = list.Items[j], list.Items[i] })

	out := make([]loans.Loan, 0, n)
	for _, b := range list.Items {
		if len(out) == n {
			break
		}
		if b.Available == 0 {
			continue
		}
		borrowedAt := s.now.Add(-time.Duration(s.rnd.IntN(MaxBackdateDays*24)) * time.Hour)
		svc := loans.NewService(s.conn, loans.WithPolicy(s.policy), loans.WithClock(fixedClock(borrowedAt)))
		l, err := svc.CreateLoan(ctx, memberID, b.Title)
		if err != nil {
			if loans.KindOf(err) == loans.KindNoCopies {
				continue
			}
			return out, err
		}
		out = append(out, *l)
	}
	log.Printf("[INFO] seeded %d demo loans for member %s", len(out), memberID)
	return out, nil
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }
