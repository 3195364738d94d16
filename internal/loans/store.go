package loans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"booklend/internal/platform/db"
)

type Store struct {
	db *sqlx.DB
}

func NewStore(conn *sqlx.DB) *Store { return &Store{db: conn} }

const selectLoan = `
	SELECT
	l.loan_id, l.member_id, l.book_id, b.title, l.borrowed_at, l.due_at, l.returned_at, l.renewal_count
	FROM loans l
	JOIN books b ON b.book_id = l.book_id
`

// FindByIDAndOwner: 他人の貸出は存在しないものとして扱う
func (s *Store) FindByIDAndOwner(ctx context.Context, loanID, memberID string) (*Loan, error) {
	var r loanRow
	err := s.db.GetContext(ctx, &r, s.db.Rebind(selectLoan+` WHERE l.loan_id = ? AND l.member_id = ?`), loanID, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewNotFoundError("loan not found")
		}
		return nil, err
	}
	l := r.toModel()
	return &l, nil
}

// ListByOwner: 貸出日の新しい順。件数制限なし
func (s *Store) ListByOwner(ctx context.Context, memberID string) ([]Loan, error) {
	var rows []loanRow
	q := selectLoan + ` WHERE l.member_id = ? ORDER BY l.borrowed_at DESC, l.loan_id DESC`
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), memberID); err != nil {
		return nil, err
	}
	out := make([]Loan, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// Create は在庫の減算と貸出の INSERT を同一トランザクションで行う。
// 減算は available > 0 を条件にした UPDATE なので、同時に借りられても負にならない。
func (s *Store) Create(ctx context.Context, l *Loan) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		const dec = `UPDATE books SET available = available - 1 WHERE book_id = ? AND available > 0`
		res, err := tx.ExecContext(ctx, tx.Rebind(dec), l.BookID)
		if err != nil {
			return err
		}
		aff, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if aff == 0 {
			return ErrNoCopies
		}

		const ins = `
		INSERT INTO loans
		(loan_id, member_id, book_id, borrowed_at, due_at, returned_at, renewal_count)
		VALUES
		(?, ?, ?, ?, ?, NULL, 0)`
		_, err = tx.ExecContext(ctx, tx.Rebind(ins), l.ID, l.MemberID, l.BookID, l.BorrowedAt, l.DueAt)
		return err
	})
}

// Renew は見た時点の renewal_count を条件に更新する（楽観ロック）
func (s *Store) Renew(ctx context.Context, loanID string, seenRenewals int, newDue time.Time) error {
	const q = `
	UPDATE loans
	SET due_at = ?, renewal_count = renewal_count + 1
	WHERE loan_id = ? AND returned_at IS NULL AND renewal_count = ?`
	res, err := s.db.ExecContext(ctx, s.db.Rebind(q), newDue, loanID, seenRenewals)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return ErrConcurrent
	}
	return nil
}

// Return は返却日時の記録と在庫の加算を同一トランザクションで行う
func (s *Store) Return(ctx context.Context, l *Loan, at time.Time) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		const upd = `UPDATE loans SET returned_at = ? WHERE loan_id = ? AND returned_at IS NULL`
		res, err := tx.ExecContext(ctx, tx.Rebind(upd), at, l.ID)
		if err != nil {
			return err
		}
		aff, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if aff == 0 {
			return ErrAlreadyReturned
		}

		const inc = `UPDATE books SET available = available + 1 WHERE book_id = ? AND available < copies`
		res, err = tx.ExecContext(ctx, tx.Rebind(inc), l.BookID)
		if err != nil {
			return err
		}
		aff, err = res.RowsAffected()
		if err != nil {
			return err
		}
		if aff != 1 {
			return fmt.Errorf("return loan %s: book %s already has every copy available", l.ID, l.BookID)
		}
		return nil
	})
}

// Delete: 返却済みのみ削除できる
func (s *Store) Delete(ctx context.Context, loanID, memberID string) error {
	const q = `DELETE FROM loans WHERE loan_id = ? AND member_id = ? AND returned_at IS NOT NULL`
	res, err := s.db.ExecContext(ctx, s.db.Rebind(q), loanID, memberID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return NewNotFoundError("loan not found")
	}
	return nil
}
