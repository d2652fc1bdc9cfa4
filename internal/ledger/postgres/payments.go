package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/duesledger/internal/database"
	"github.com/fkhayef/duesledger/internal/ledger"
)

// LEFT JOIN: a payment keeps its row after the due it paid is deleted.
const paymentSelect = `
	SELECT p.id, p.student_id, p.due_id, p.amount, p.payment_reference, p.payment_method,
	       p.paid_at, COALESCE(d.title, '')
	FROM payments p
	LEFT JOIN dues d ON d.id = p.due_id
`

func scanPayment(row interface{ Scan(...interface{}) error }) (*ledger.Payment, error) {
	p := &ledger.Payment{}
	err := row.Scan(
		&p.ID,
		&p.StudentID,
		&p.DueID,
		&p.Amount,
		&p.Reference,
		&p.Method,
		&p.PaidAt,
		&p.DueTitle,
	)
	return p, err
}

// CreatePayment appends a payment to the ledger
func (s *Store) CreatePayment(ctx context.Context, in *ledger.Payment) (*ledger.Payment, error) {
	query := `
		INSERT INTO payments (student_id, due_id, amount, payment_reference, payment_method)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, student_id, due_id, amount, payment_reference, payment_method, paid_at
	`

	p := &ledger.Payment{}
	err := s.q.QueryRowContext(ctx, query, in.StudentID, in.DueID, in.Amount, in.Reference, in.Method).Scan(
		&p.ID,
		&p.StudentID,
		&p.DueID,
		&p.Amount,
		&p.Reference,
		&p.Method,
		&p.PaidAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err, referenceConstraint) {
			return nil, ledger.ErrDuplicateReference
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return p, nil
}

// GetPaymentByReference retrieves a payment by its reference
func (s *Store) GetPaymentByReference(ctx context.Context, reference string) (*ledger.Payment, error) {
	p, err := scanPayment(s.q.QueryRowContext(ctx, paymentSelect+` WHERE p.payment_reference = $1`, reference))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return p, nil
}

// ListPaymentsByStudent retrieves a student's payments, newest first
func (s *Store) ListPaymentsByStudent(ctx context.Context, studentID int64, limit int) ([]*ledger.Payment, error) {
	query := paymentSelect + ` WHERE p.student_id = $1 ORDER BY p.paid_at DESC, p.id DESC`
	args := []interface{}{studentID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []*ledger.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}

// SumPayments totals what a student has paid against one due
func (s *Store) SumPayments(ctx context.Context, studentID, dueID int64) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE student_id = $1 AND due_id = $2`

	var total decimal.Decimal
	if err := s.q.QueryRowContext(ctx, query, studentID, dueID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}

	return total, nil
}

// SumPaymentsByPair totals payments per (student, due)
func (s *Store) SumPaymentsByPair(ctx context.Context) (map[ledger.PairKey]decimal.Decimal, error) {
	query := `SELECT student_id, due_id, SUM(amount) FROM payments GROUP BY student_id, due_id`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}
	defer rows.Close()

	sums := make(map[ledger.PairKey]decimal.Decimal)
	for rows.Next() {
		var (
			key   ledger.PairKey
			total decimal.Decimal
		)
		if err := rows.Scan(&key.StudentID, &key.DueID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan payment sum: %w", err)
		}
		sums[key] = total
	}

	return sums, rows.Err()
}
