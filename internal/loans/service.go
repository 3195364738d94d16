package loans

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"booklend/internal/catalog"
	"booklend/internal/platform/auth"
	"booklend/internal/platform/ids"
)

const (
	DefaultLoanPeriod  = 14 * 24 * time.Hour
	DefaultMaxRenewals = 3
)

var tracer = otel.Tracer("booklend/internal/loans")

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface {
	New(t time.Time) string
}

type ulidGen struct{}

func (ulidGen) New(t time.Time) string { return ids.NewULID(t) }

type MemberFinder interface {
	GetByID(ctx context.Context, id string) (*auth.Member, error)
}

type BookFinder interface {
	GetByTitle(ctx context.Context, title string) (*catalog.Book, error)
}

type Repository interface {
	FindByIDAndOwner(ctx context.Context, loanID, memberID string) (*Loan, error)
	ListByOwner(ctx context.Context, memberID string) ([]Loan, error)
	Create(ctx context.Context, l *Loan) error
	Renew(ctx context.Context, loanID string, seenRenewals int, newDue time.Time) error
	Return(ctx context.Context, l *Loan, at time.Time) error
	Delete(ctx context.Context, loanID, memberID string) error
}

// Policy holds the library's lending rules.
type Policy struct {
	Period      time.Duration
	MaxRenewals int
}

func DefaultPolicy() Policy {
	return Policy{Period: DefaultLoanPeriod, MaxRenewals: DefaultMaxRenewals}
}

// ===== Service本体 =====

type Service struct {
	loans   Repository
	members MemberFinder
	books   BookFinder
	policy  Policy
	clock   Clock
	id      IDGen
}

type Option func(*Service)

func WithClock(c Clock) Option { return func(s *Service) { s.clock = c } }

func WithPolicy(p Policy) Option { return func(s *Service) { s.policy = p } }

func WithIDGen(g IDGen) Option { return func(s *Service) { s.id = g } }

func NewService(conn *sqlx.DB, opts ...Option) *Service {
	return NewServiceWith(NewStore(conn), auth.NewStore(conn), catalog.NewStore(conn), opts...)
}

func NewServiceWith(loans Repository, members MemberFinder, books BookFinder, opts ...Option) *Service {
	s := &Service{
		loans:   loans,
		members: members,
		books:   books,
		policy:  DefaultPolicy(),
		clock:   realClock{},
		id:      ulidGen{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.policy.Period <= 0 {
		s.policy.Period = DefaultLoanPeriod
	}
	if s.policy.MaxRenewals < 0 {
		s.policy.MaxRenewals = 0
	}
	return s
}

// Now is the service clock; handlers use it so status is computed against the same time source.
func (s *Service) Now() time.Time { return s.clock.Now() }

// 貸出登録
func (s *Service) CreateLoan(ctx context.Context, memberID, bookTitle string) (_ *Loan, err error) {
	ctx, span := tracer.Start(ctx, "loans.CreateLoan", trace.WithAttributes(
		attribute.String("member.id", memberID),
		attribute.String("book.title", bookTitle),
	))
	defer func() { endSpan(span, err) }()

	title := catalog.NormalizeTitle(bookTitle)
	if title == "" {
		return nil, NewInvalidArgumentError("book_title is required")
	}

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, NewNotFoundError("member not found")
	}
	if member.IsAdmin {
		return nil, ErrAdminForbidden
	}

	book, err := s.books.GetByTitle(ctx, title)
	if err != nil {
		var ce *catalog.APIError
		if errors.As(err, &ce) && ce.Code == catalog.CodeNotFound {
			return nil, NewNotFoundError("book not found")
		}
		return nil, err
	}
	// 在庫は Store 側の条件付き UPDATE で最終判定する。ここは早期リターンのみ
	if book.Available <= 0 {
		return nil, ErrNoCopies
	}

	now := s.clock.Now()
	l := &Loan{
		ID:           s.id.New(now),
		MemberID:     member.ID,
		BookID:       book.ID,
		BookTitle:    book.Title,
		BorrowedAt:   now,
		DueAt:        now.Add(s.policy.Period),
		RenewalCount: 0,
	}
	if err := s.loans.Create(ctx, l); err != nil {
		return nil, err
	}

	log.Printf("[INFO] loan created: loan=%s member=%s book=%q due=%s", l.ID, l.MemberID, l.BookTitle, l.DueAt.Format(time.RFC3339))
	return l, nil
}

// 貸出延長
func (s *Service) RenewLoan(ctx context.Context, memberID, loanID string) (_ *Loan, err error) {
	ctx, span := tracer.Start(ctx, "loans.RenewLoan", trace.WithAttributes(
		attribute.String("member.id", memberID),
		attribute.String("loan.id", loanID),
	))
	defer func() { endSpan(span, err) }()

	l, err := s.load(ctx, memberID, loanID)
	if err != nil {
		return nil, err
	}
	if l.Returned() {
		return nil, ErrAlreadyReturned
	}
	if Overdue(l.DueAt, l.ReturnedAt, s.clock.Now()) {
		return nil, ErrOverdue
	}
	if l.RenewalCount >= s.policy.MaxRenewals {
		return nil, ErrRenewalLimit
	}

	newDue := l.DueAt.Add(s.policy.Period)
	if err := s.loans.Renew(ctx, l.ID, l.RenewalCount, newDue); err != nil {
		return nil, err
	}
	l.DueAt = newDue
	l.RenewalCount++

	log.Printf("[INFO] loan renewed: loan=%s renewals=%d due=%s", l.ID, l.RenewalCount, l.DueAt.Format(time.RFC3339))
	return l, nil
}

// 返却
func (s *Service) ReturnLoan(ctx context.Context, memberID, loanID string) (_ *Loan, err error) {
	ctx, span := tracer.Start(ctx, "loans.ReturnLoan", trace.WithAttributes(
		attribute.String("member.id", memberID),
		attribute.String("loan.id", loanID),
	))
	defer func() { endSpan(span, err) }()

	l, err := s.load(ctx, memberID, loanID)
	if err != nil {
		return nil, err
	}
	if l.Returned() {
		return nil, ErrAlreadyReturned
	}

	now := s.clock.Now()
	if err := s.loans.Return(ctx, l, now); err != nil {
		return nil, err
	}
	l.ReturnedAt = &now

	log.Printf("[INFO] loan returned: loan=%s book=%q", l.ID, l.BookTitle)
	return l, nil
}

// 削除（返却済みのみ）
func (s *Service) DeleteLoan(ctx context.Context, memberID, loanID string) (err error) {
	ctx, span := tracer.Start(ctx, "loans.DeleteLoan", trace.WithAttributes(
		attribute.String("member.id", memberID),
		attribute.String("loan.id", loanID),
	))
	defer func() { endSpan(span, err) }()

	l, err := s.load(ctx, memberID, loanID)
	if err != nil {
		return err
	}
	if !l.Returned() {
		return ErrNotReturned
	}
	if err := s.loans.Delete(ctx, l.ID, memberID); err != nil {
		return err
	}

	log.Printf("[INFO] loan deleted: loan=%s", l.ID)
	return nil
}

func (s *Service) GetLoan(ctx context.Context, memberID, loanID string) (*Loan, error) {
	return s.load(ctx, memberID, loanID)
}

// 会員ごとの貸出履歴
func (s *Service) ListLoans(ctx context.Context, memberID string) (_ []Loan, err error) {
	ctx, span := tracer.Start(ctx, "loans.ListLoans", trace.WithAttributes(
		attribute.String("member.id", memberID),
	))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(memberID) == "" {
		return nil, NewInvalidArgumentError("member id is required")
	}
	return s.loans.ListByOwner(ctx, memberID)
}

func (s *Service) load(ctx context.Context, memberID, loanID string) (*Loan, error) {
	if !ids.Valid(loanID) {
		return nil, NewNotFoundError("loan not found")
	}
	return s.loans.FindByIDAndOwner(ctx, loanID, memberID)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		if k := KindOf(err); k != "" {
			span.SetAttributes(attribute.String("loan.refusal", string(k)))
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}
