package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/fkhayef/duesledger/internal/ledger"
)

// ErrNotificationNotFound is returned for ids the caller has no notification under
var ErrNotificationNotFound = errors.New("notification not found")

type store interface {
	Create(ctx context.Context, in *Notification) (*Notification, error)
	List(ctx context.Context, recipientID int64, f Filter, limit, offset int) ([]*Notification, int, error)
	MarkRead(ctx context.Context, recipientID, id int64) (bool, error)
	MarkAllRead(ctx context.Context, recipientID int64, entityType EntityType) (int64, error)
	UnreadCounts(ctx context.Context, recipientID int64) (map[EntityType]int, error)
}

// Service keeps students' inboxes. It is the ledger's Notifier: students
// hear about dues assigned to them and payments recorded against them.
type Service struct {
	repo store
}

var _ ledger.Notifier = (*Service)(nil)

// NewService creates a new notification service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// List returns a page of the user's inbox
func (s *Service) List(ctx context.Context, userID int64, f Filter, page, perPage int) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.repo.List(ctx, userID, f, perPage, (page-1)*perPage)
}

// MarkAsRead marks one notification read. Other users' notifications are
// reported as not found.
func (s *Service) MarkAsRead(ctx context.Context, userID, id int64) error {
	ok, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead clears the user's unread notifications, optionally of one type
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64, entityType EntityType) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, entityType)
}

// UnreadCounts returns the user's unread totals
func (s *Service) UnreadCounts(ctx context.Context, userID int64) (*UnreadCounts, error) {
	byType, err := s.repo.UnreadCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts := &UnreadCounts{ByType: map[EntityType]int{EntityDue: 0, EntityPayment: 0}}
	for t, n := range byType {
		counts.ByType[t] = n
		counts.Total += n
	}
	return counts, nil
}

// DueAssigned tells a student a due now applies to them
func (s *Service) DueAssigned(ctx context.Context, studentID int64, due *ledger.Due) error {
	_, err := s.repo.Create(ctx, &Notification{
		RecipientID: studentID,
		EntityType:  EntityDue,
		EntityID:    due.ID,
		Message:     fmt.Sprintf("New due: %s (%s) of %s", due.Title, due.AcademicYear, due.Amount.StringFixed(2)),
	})
	return err
}

// PaymentRecorded sends the student a receipt for a payment
func (s *Service) PaymentRecorded(ctx context.Context, receipt *ledger.Receipt) error {
	p, sd := receipt.Payment, receipt.StudentDue

	_, err := s.repo.Create(ctx, &Notification{
		RecipientID: p.StudentID,
		EntityType:  EntityPayment,
		EntityID:    p.ID,
		Message: fmt.Sprintf("Payment of %s received for %s (ref %s). Balance: %s, status: %s",
			p.Amount.StringFixed(2), sd.DueTitle, p.Reference, sd.Balance.StringFixed(2), sd.Status),
	})
	return err
}
