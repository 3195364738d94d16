package loans

import "time"

// 貸出登録リクエスト
type CreateLoanRequest struct {
	BookTitle string `json:"book_title" binding:"required"`
}

type LoanResponse struct {
	LoanID       string     `json:"loan_id"`
	MemberID     string     `json:"member_id"`
	BookID       string     `json:"book_id"`
	BookTitle    string     `json:"book_title"`
	BorrowedAt   time.Time  `json:"borrowed_at"`
	DueAt        time.Time  `json:"due_at"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
	RenewalCount int        `json:"renewal_count"`
	Status       Status     `json:"status"`
	Overdue      bool       `json:"overdue"`
}

type ListLoansResponse struct {
	Items []LoanResponse `json:"items"`
	Total int            `json:"total"`
}
