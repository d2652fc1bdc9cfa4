// Package ledger assigns dues to students by academic level, records payments
// against those dues and keeps every student's balance reconciled with the
// payment ledger.
package ledger

import (
	"context"

	"go.uber.org/zap"
)

// DefaultRecentPayments is how many payments a student summary lists.
const DefaultRecentPayments = 10

// Service is the single writer of dues, assignments and payments.
type Service struct {
	store          Store
	notifier       Notifier
	log            *zap.Logger
	recentPayments int
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the receiver of post-commit ledger events.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithRecentPayments sets how many payments StudentSummary returns.
func WithRecentPayments(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentPayments = n
		}
	}
}

// NewService creates a new ledger service
func NewService(store Store, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		store:          store,
		log:            log.Named("ledger"),
		recentPayments: DefaultRecentPayments,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type dueAssignment struct {
	studentID int64
	due       *Due
}

// events collects what happened inside a transaction so it can be announced
// once the transaction has committed.
type events struct {
	assigned []dueAssignment
	receipts []*Receipt
}

// dueAssigned records a new assignment. An assignment rebuilt on top of
// earlier payments (a level change and back) is not news to the student.
func (e *events) dueAssigned(sd *StudentDue, due *Due) {
	if !sd.AmountPaid.IsZero() {
		return
	}
	e.assigned = append(e.assigned, dueAssignment{studentID: sd.StudentID, due: due})
}

// publish hands committed events to the notifier. Failures are logged only;
// the ledger change is already durable.
func (s *Service) publish(ctx context.Context, ev *events) {
	if s.notifier == nil || ev == nil {
		return
	}
	for _, a := range ev.assigned {
		if err := s.notifier.DueAssigned(ctx, a.studentID, a.due); err != nil {
			s.log.Warn("due assignment notification failed",
				zap.Int64("student_id", a.studentID),
				zap.Int64("due_id", a.due.ID),
				zap.Error(err),
			)
		}
	}
	for _, r := range ev.receipts {
		if err := s.notifier.PaymentRecorded(ctx, r); err != nil {
			s.log.Warn("payment notification failed",
				zap.String("reference", r.Payment.Reference),
				zap.Error(err),
			)
		}
	}
}
