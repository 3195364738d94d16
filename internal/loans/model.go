package loans

import "time"

// Status is derived at read time; only Returned is stored (as returned_at).
type Status string

const (
	StatusActive   Status = "active"
	StatusOverdue  Status = "overdue"
	StatusReturned Status = "returned"
)

// Loan は loans テーブルの1行を表す
type Loan struct {
	ID           string
	MemberID     string
	BookID       string
	BookTitle    string
	BorrowedAt   time.Time
	DueAt        time.Time
	ReturnedAt   *time.Time
	RenewalCount int
}

func (l *Loan) Returned() bool { return l.ReturnedAt != nil }

// Overdue reports whether a loan due at due is late at now. Returned loans are never overdue.
func Overdue(due time.Time, returned *time.Time, now time.Time) bool {
	return returned == nil && now.After(due)
}

func (l *Loan) StatusAt(now time.Time) Status {
	switch {
	case l.Returned():
		return StatusReturned
	case Overdue(l.DueAt, l.ReturnedAt, now):
		return StatusOverdue
	default:
		return StatusActive
	}
}

// DB行に対応（スキャン用）
type loanRow struct {
	ID           string     `db:"loan_id"`
	MemberID     string     `db:"member_id"`
	BookID       string     `db:"book_id"`
	BookTitle    string     `db:"title"`
	BorrowedAt   time.Time  `db:"borrowed_at"`
	DueAt        time.Time  `db:"due_at"`
	ReturnedAt   *time.Time `db:"returned_at"`
	RenewalCount int        `db:"renewal_count"`
}

func (r loanRow) toModel() Loan {
	l := Loan{
		ID:           r.ID,
		MemberID:     r.MemberID,
		BookID:       r.BookID,
		BookTitle:    r.BookTitle,
		BorrowedAt:   r.BorrowedAt.UTC(),
		DueAt:        r.DueAt.UTC(),
		RenewalCount: r.RenewalCount,
	}
	if r.ReturnedAt != nil {
		t := r.ReturnedAt.UTC()
		l.ReturnedAt = &t
	}
	return l
}

func (l Loan) toDTO(now time.Time) LoanResponse {
	return LoanResponse{
		LoanID:       l.ID,
		MemberID:     l.MemberID,
		BookID:       l.BookID,
		BookTitle:    l.BookTitle,
		BorrowedAt:   l.BorrowedAt,
		DueAt:        l.DueAt,
		ReturnedAt:   l.ReturnedAt,
		RenewalCount: l.RenewalCount,
		Status:       l.StatusAt(now),
		Overdue:      Overdue(l.DueAt, l.ReturnedAt, now),
	}
}
