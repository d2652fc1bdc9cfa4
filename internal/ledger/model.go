package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Student is a user with the student role. Level is a free-text academic
// level label such as "ICT 300".
type Student struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Level     string    `json:"level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Due is a fee definition charged to every student at Level.
type Due struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Amount       decimal.Decimal `json:"amount"`
	Level        string          `json:"level"`
	AcademicYear string          `json:"academic_year"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// StudentDue is the assignment of one due to one student, carrying the
// student's running balance against it.
type StudentDue struct {
	ID         int64           `json:"id"`
	StudentID  int64           `json:"student_id"`
	DueID      int64           `json:"due_id"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Balance    decimal.Decimal `json:"balance"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	// Joined from dues on reads
	DueTitle     string          `json:"due_title,omitempty"`
	DueAmount    decimal.Decimal `json:"due_amount"`
	AcademicYear string          `json:"academic_year,omitempty"`
}

// Payment is an immutable record of one captured payment.
type Payment struct {
	ID        int64           `json:"id"`
	StudentID int64           `json:"student_id"`
	DueID     int64           `json:"due_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"payment_reference"`
	Method    string          `json:"payment_method"`
	PaidAt    time.Time       `json:"paid_at"`

	// Joined from dues on reads; empty once the due has been deleted
	DueTitle string `json:"due_title,omitempty"`
}

// Receipt is the outcome of recording a payment.
type Receipt struct {
	Payment    *Payment    `json:"payment"`
	StudentDue *StudentDue `json:"student_due"`
}

// StudentSummary aggregates one student's dues and payments.
type StudentSummary struct {
	Student        *Student        `json:"student"`
	TotalDues      decimal.Decimal `json:"total_dues"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalBalance   decimal.Decimal `json:"total_balance"`
	PaidCount      int             `json:"paid_count"`
	PartialCount   int             `json:"partial_count"`
	UnpaidCount    int             `json:"unpaid_count"`
	Dues           []*StudentDue   `json:"dues"`
	RecentPayments []*Payment      `json:"recent_payments"`
}

// Drift describes a StudentDue whose stored figures disagree with what the
// payment ledger and due amount imply.
type Drift struct {
	StudentDueID     int64           `json:"student_due_id"`
	StudentID        int64           `json:"student_id"`
	DueID            int64           `json:"due_id"`
	StoredAmountPaid decimal.Decimal `json:"stored_amount_paid"`
	LedgerAmountPaid decimal.Decimal `json:"ledger_amount_paid"`
	StoredBalance    decimal.Decimal `json:"stored_balance"`
	ExpectedBalance  decimal.Decimal `json:"expected_balance"`
	StoredStatus     Status          `json:"stored_status"`
	ExpectedStatus   Status          `json:"expected_status"`
}

// DueFilter narrows ListDues. Empty fields match everything.
type DueFilter struct {
	Level        string
	AcademicYear string
}

// PairKey identifies a (student, due) pair.
type PairKey struct {
	StudentID int64
	DueID     int64
}
