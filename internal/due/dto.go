package due

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/duesledger/internal/ledger"
)

// DueRequest represents the request body for creating or updating a due
type DueRequest struct {
	Title        string          `json:"title" example:"Semester Fees"`
	Amount       decimal.Decimal `json:"amount" swaggertype:"string" example:"500.00"`
	Level        string          `json:"level" example:"ICT 300"`
	AcademicYear string          `json:"academic_year" example:"2024/2025"`
	Description  string          `json:"description,omitempty"`
}

func (r *DueRequest) toInput() ledger.DueInput {
	return ledger.DueInput{
		Title:        r.Title,
		Amount:       r.Amount,
		Level:        r.Level,
		AcademicYear: r.AcademicYear,
		Description:  r.Description,
	}
}
