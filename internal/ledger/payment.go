package ledger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fkhayef/duesledger/pkg/validate"
)

// RecordPayment appends a payment to the ledger and applies it to the
// student's due in the same transaction. Payments larger than the balance
// are accepted and leave a negative balance.
func (s *Service) RecordPayment(ctx context.Context, in PaymentInput) (*Receipt, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	var receipt *Receipt
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Store) error {
		sd, err := tx.GetStudentDueForUpdate(ctx, in.StudentID, in.DueID)
		if err != nil {
			return err
		}
		if sd == nil {
			return ErrStudentDueNotFound
		}

		payment, err := tx.CreatePayment(ctx, &Payment{
			StudentID: in.StudentID,
			DueID:     in.DueID,
			Amount:    in.Amount,
			Reference: in.Reference,
			Method:    in.Method,
		})
		if err != nil {
			return err
		}
		payment.DueTitle = sd.DueTitle

		sd.ApplyPayment(in.Amount)
		if err := tx.UpdateStudentDueBalance(ctx, sd); err != nil {
			return err
		}

		receipt = &Receipt{Payment: payment, StudentDue: sd}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.Int64("student_id", in.StudentID),
		zap.Int64("due_id", in.DueID),
		zap.String("reference", in.Reference),
		zap.String("amount", in.Amount.StringFixed(2)),
		zap.String("balance", receipt.StudentDue.Balance.StringFixed(2)),
		zap.String("status", string(receipt.StudentDue.Status)),
	}
	if receipt.StudentDue.Balance.IsNegative() {
		s.log.Info("payment recorded with overpayment", fields...)
	} else {
		s.log.Info("payment recorded", fields...)
	}

	s.publish(ctx, &events{receipts: []*Receipt{receipt}})
	return receipt, nil
}

// NewPaymentReference mints a reference for a payment attempt. Every attempt,
// including a retry, needs a fresh one.
func (s *Service) NewPaymentReference() string {
	return "PAY-" + uuid.NewString()
}

// GetPaymentByReference retrieves a payment by its reference
func (s *Service) GetPaymentByReference(ctx context.Context, reference string) (*Payment, error) {
	payment, err := s.store.GetPaymentByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// ListPayments returns every payment a student made, newest first
func (s *Service) ListPayments(ctx context.Context, studentID int64) ([]*Payment, error) {
	if _, err := s.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return s.store.ListPaymentsByStudent(ctx, studentID, 0)
}
