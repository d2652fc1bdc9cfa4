package ledger

import "github.com/shopspring/decimal"

// Status is the payment state of a StudentDue.
type Status string

const (
	StatusNotPaid Status = "Not Paid"
	StatusPartial Status = "Partial"
	StatusPaid    Status = "Paid"
)

// IsValid checks if the status is one of the known values
func (s Status) IsValid() bool {
	switch s {
	case StatusNotPaid, StatusPartial, StatusPaid:
		return true
	}
	return false
}

// StatusFor derives the status from a balance and the amount paid so far.
func StatusFor(balance, amountPaid decimal.Decimal) Status {
	switch {
	case !balance.IsPositive():
		return StatusPaid
	case amountPaid.IsPositive():
		return StatusPartial
	default:
		return StatusNotPaid
	}
}

// Reconcile recomputes Balance and Status from dueAmount and AmountPaid.
// Balance is not clamped: an overpaid due carries a negative balance.
func (sd *StudentDue) Reconcile(dueAmount decimal.Decimal) {
	sd.DueAmount = dueAmount
	sd.Balance = dueAmount.Sub(sd.AmountPaid)
	sd.Status = StatusFor(sd.Balance, sd.AmountPaid)
}

// ApplyPayment adds amount to AmountPaid, takes it off Balance and
// recomputes Status.
func (sd *StudentDue) ApplyPayment(amount decimal.Decimal) {
	sd.AmountPaid = sd.AmountPaid.Add(amount)
	sd.Balance = sd.Balance.Sub(amount)
	sd.Status = StatusFor(sd.Balance, sd.AmountPaid)
}

// ApplyDueAmountChange shifts Balance by newAmount-oldAmount and recomputes
// Status. AmountPaid is never touched.
func (sd *StudentDue) ApplyDueAmountChange(oldAmount, newAmount decimal.Decimal) {
	sd.DueAmount = newAmount
	sd.Balance = sd.Balance.Add(newAmount.Sub(oldAmount))
	sd.Status = StatusFor(sd.Balance, sd.AmountPaid)
}
