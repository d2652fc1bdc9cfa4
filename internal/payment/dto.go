package payment

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/duesledger/internal/ledger"
)

// RecordPaymentRequest is the captured-payment callback body
type RecordPaymentRequest struct {
	StudentID int64           `json:"student_id" example:"42"`
	DueID     int64           `json:"due_id" example:"7"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string" example:"150.00"`
	Reference string          `json:"payment_reference" example:"PAY-3f0c9f8e-6a1b-4f5e-9d59-0c1f4b6f2a10"`
	Method    string          `json:"payment_method,omitempty" example:"online"`
}

func (r *RecordPaymentRequest) toInput() ledger.PaymentInput {
	return ledger.PaymentInput{
		StudentID: r.StudentID,
		DueID:     r.DueID,
		Amount:    r.Amount,
		Reference: r.Reference,
		Method:    r.Method,
	}
}

// ReferenceResponse carries a freshly minted payment reference
type ReferenceResponse struct {
	Reference string `json:"payment_reference"`
}
