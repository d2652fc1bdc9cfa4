package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/duesledger/internal/level"
)

// DefaultPaymentMethod is used when a payment arrives without a method.
const DefaultPaymentMethod = "online"

// DueInput holds the editable fields of a due.
type DueInput struct {
	Title        string          `json:"title" validate:"notblank,max=200"`
	Amount       decimal.Decimal `json:"amount" validate:"gt=0,money"`
	Level        string          `json:"level" validate:"notblank,max=50"`
	AcademicYear string          `json:"academic_year" validate:"notblank,max=20"`
	Description  string          `json:"description" validate:"max=2000"`
}

func (in *DueInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Level = level.Normalize(in.Level)
	in.AcademicYear = strings.TrimSpace(in.AcademicYear)
	in.Description = strings.TrimSpace(in.Description)
}

// StudentInput holds the fields needed to enrol a student. Level may be
// empty; such a student is assigned nothing until a level is set.
type StudentInput struct {
	Name  string `json:"name" validate:"notblank,max=100"`
	Email string `json:"email" validate:"required,email,max=255"`
	Level string `json:"level" validate:"max=50"`
}

func (in *StudentInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Level = level.Normalize(in.Level)
}

// LevelInput carries a student's new level. Empty clears it.
type LevelInput struct {
	Level string `json:"level" validate:"max=50"`
}

func (in *LevelInput) normalize() {
	in.Level = level.Normalize(in.Level)
}

// PaymentInput is a captured payment to apply to one student's due.
type PaymentInput struct {
	StudentID int64           `json:"student_id" validate:"gt=0"`
	DueID     int64           `json:"due_id" validate:"gt=0"`
	Amount    decimal.Decimal `json:"amount" validate:"gt=0,money"`
	Reference string          `json:"payment_reference" validate:"notblank,max=100"`
	Method    string          `json:"payment_method" validate:"max=30"`
}

func (in *PaymentInput) normalize() {
	in.Reference = strings.TrimSpace(in.Reference)
	in.Method = strings.TrimSpace(in.Method)
	if in.Method == "" {
		in.Method = DefaultPaymentMethod
	}
}
