package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

const timeFormat = time.RFC3339

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// StudentResponse represents the response for a single student
type StudentResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Level     string `json:"level"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ToResponse converts a Student to a StudentResponse DTO
func (s *Student) ToResponse() *StudentResponse {
	return &StudentResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Level:     s.Level,
		CreatedAt: s.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt: s.UpdatedAt.UTC().Format(timeFormat),
	}
}

// DueResponse represents the response for a single due
type DueResponse struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Amount       string `json:"amount" example:"500.00"`
	Level        string `json:"level" example:"ICT 300"`
	AcademicYear string `json:"academic_year" example:"2024/2025"`
	Description  string `json:"description,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// ToResponse converts a Due to a DueResponse DTO
func (d *Due) ToResponse() *DueResponse {
	return &DueResponse{
		ID:           d.ID,
		Title:        d.Title,
		Amount:       money(d.Amount),
		Level:        d.Level,
		AcademicYear: d.AcademicYear,
		Description:  d.Description,
		CreatedAt:    d.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:    d.UpdatedAt.UTC().Format(timeFormat),
	}
}

// StudentDueResponse represents one student's standing on one due
type StudentDueResponse struct {
	ID           int64  `json:"id"`
	StudentID    int64  `json:"student_id"`
	DueID        int64  `json:"due_id"`
	DueTitle     string `json:"due_title"`
	AcademicYear string `json:"academic_year"`
	DueAmount    string `json:"due_amount"`
	AmountPaid   string `json:"amount_paid"`
	Balance      string `json:"balance"`
	Status       Status `json:"status" example:"Partial"`
	UpdatedAt    string `json:"updated_at"`
}

// ToResponse converts a StudentDue to a StudentDueResponse DTO
func (sd *StudentDue) ToResponse() *StudentDueResponse {
	return &StudentDueResponse{
		ID:           sd.ID,
		StudentID:    sd.StudentID,
		DueID:        sd.DueID,
		DueTitle:     sd.DueTitle,
		AcademicYear: sd.AcademicYear,
		DueAmount:    money(sd.DueAmount),
		AmountPaid:   money(sd.AmountPaid),
		Balance:      money(sd.Balance),
		Status:       sd.Status,
		UpdatedAt:    sd.UpdatedAt.UTC().Format(timeFormat),
	}
}

// PaymentResponse represents a recorded payment
type PaymentResponse struct {
	ID        int64  `json:"id"`
	StudentID int64  `json:"student_id"`
	DueID     int64  `json:"due_id"`
	DueTitle  string `json:"due_title"`
	Amount    string `json:"amount"`
	Reference string `json:"payment_reference"`
	Method    string `json:"payment_method"`
	PaidAt    string `json:"paid_at"`
}

// ToResponse converts a Payment to a PaymentResponse DTO
func (p *Payment) ToResponse() *PaymentResponse {
	return &PaymentResponse{
		ID:        p.ID,
		StudentID: p.StudentID,
		DueID:     p.DueID,
		DueTitle:  p.DueTitle,
		Amount:    money(p.Amount),
		Reference: p.Reference,
		Method:    p.Method,
		PaidAt:    p.PaidAt.UTC().Format(timeFormat),
	}
}

// ReceiptResponse is returned after a payment is recorded
type ReceiptResponse struct {
	Payment    *PaymentResponse    `json:"payment"`
	StudentDue *StudentDueResponse `json:"student_due"`
}

// ToResponse converts a Receipt to a ReceiptResponse DTO
func (r *Receipt) ToResponse() *ReceiptResponse {
	return &ReceiptResponse{
		Payment:    r.Payment.ToResponse(),
		StudentDue: r.StudentDue.ToResponse(),
	}
}

// SummaryResponse represents a student's payment summary
type SummaryResponse struct {
	Student        *StudentResponse      `json:"student"`
	TotalDues      string                `json:"total_dues"`
	TotalPaid      string                `json:"total_paid"`
	TotalBalance   string                `json:"total_balance"`
	PaidCount      int                   `json:"paid_count"`
	PartialCount   int                   `json:"partial_count"`
	UnpaidCount    int                   `json:"unpaid_count"`
	Dues           []*StudentDueResponse `json:"dues"`
	RecentPayments []*PaymentResponse    `json:"recent_payments"`
}

// ToResponse converts a StudentSummary to a SummaryResponse DTO
func (s *StudentSummary) ToResponse() *SummaryResponse {
	resp := &SummaryResponse{
		Student:        s.Student.ToResponse(),
		TotalDues:      money(s.TotalDues),
		TotalPaid:      money(s.TotalPaid),
		TotalBalance:   money(s.TotalBalance),
		PaidCount:      s.PaidCount,
		PartialCount:   s.PartialCount,
		UnpaidCount:    s.UnpaidCount,
		Dues:           make([]*StudentDueResponse, len(s.Dues)),
		RecentPayments: make([]*PaymentResponse, len(s.RecentPayments)),
	}
	for i, sd := range s.Dues {
		resp.Dues[i] = sd.ToResponse()
	}
	for i, p := range s.RecentPayments {
		resp.RecentPayments[i] = p.ToResponse()
	}
	return resp
}

// DriftResponse represents one assignment that disagrees with the payment ledger
type DriftResponse struct {
	StudentDueID     int64  `json:"student_due_id"`
	StudentID        int64  `json:"student_id"`
	DueID            int64  `json:"due_id"`
	StoredAmountPaid string `json:"stored_amount_paid"`
	LedgerAmountPaid string `json:"ledger_amount_paid"`
	StoredBalance    string `json:"stored_balance"`
	ExpectedBalance  string `json:"expected_balance"`
	StoredStatus     Status `json:"stored_status"`
	ExpectedStatus   Status `json:"expected_status"`
}

// ToResponse converts a Drift to a DriftResponse DTO
func (d Drift) ToResponse() *DriftResponse {
	return &DriftResponse{
		StudentDueID:     d.StudentDueID,
		StudentID:        d.StudentID,
		DueID:            d.DueID,
		StoredAmountPaid: money(d.StoredAmountPaid),
		LedgerAmountPaid: money(d.LedgerAmountPaid),
		StoredBalance:    money(d.StoredBalance),
		ExpectedBalance:  money(d.ExpectedBalance),
		StoredStatus:     d.StoredStatus,
		ExpectedStatus:   d.ExpectedStatus,
	}
}
