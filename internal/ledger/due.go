package ledger

import (
	"context"

	"go.uber.org/zap"

	"github.com/fkhayef/duesledger/pkg/validate"
)

// CreateDue stores a new due and assigns it to every student at its level.
func (s *Service) CreateDue(ctx context.Context, in DueInput) (*Due, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	ev := &events{}
	var due *Due
	var assigned int
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Store) error {
		var err error
		due, err = tx.CreateDue(ctx, &Due{
			Title:        in.Title,
			Amount:       in.Amount,
			Level:        in.Level,
			AcademicYear: in.AcademicYear,
			Description:  in.Description,
		})
		if err != nil {
			return err
		}

		assigned, err = s.assignDueToMatchingStudents(ctx, tx, due, ev)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("due created",
		zap.Int64("due_id", due.ID),
		zap.String("level", due.Level),
		zap.String("amount", due.Amount.StringFixed(2)),
		zap.Int("students_assigned", assigned),
	)
	s.publish(ctx, ev)
	return due, nil
}

// UpdateDue edits a due. A change of amount moves every assigned student's
// balance by the difference and recomputes their status; amounts already
// paid are untouched. Students newly matching the due's level are assigned.
func (s *Service) UpdateDue(ctx context.Context, id int64, in DueInput) (*Due, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	ev := &events{}
	var due *Due
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Store) error {
		existing, err := tx.GetDueForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrDueNotFound
		}
		oldAmount := existing.Amount

		existing.Title = in.Title
		existing.Amount = in.Amount
		existing.Level = in.Level
		existing.AcademicYear = in.AcademicYear
		existing.Description = in.Description

		due, err = tx.UpdateDue(ctx, existing)
		if err != nil {
			return err
		}
		if due == nil {
			return ErrDueNotFound
		}

		if !oldAmount.Equal(due.Amount) {
			assignments, err := tx.ListStudentDuesByDue(ctx, id, true)
			if err != nil {
				return err
			}
			for _, sd := range assignments {
				sd.ApplyDueAmountChange(oldAmount, due.Amount)
				if err := tx.UpdateStudentDueBalance(ctx, sd); err != nil {
					return err
				}
			}
			s.log.Info("due amount changed",
				zap.Int64("due_id", id),
				zap.String("from", oldAmount.StringFixed(2)),
				zap.String("to", due.Amount.StringFixed(2)),
				zap.Int("assignments_updated", len(assignments)),
			)
		}

		_, err = s.assignDueToMatchingStudents(ctx, tx, due, ev)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, ev)
	return due, nil
}

// DeleteDue removes a due and its assignments. Payments made against it stay
// in the ledger and keep pointing at the removed due's ID.
func (s *Service) DeleteDue(ctx context.Context, id int64) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, tx Store) error {
		existing, err := tx.GetDueForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrDueNotFound
		}

		removed, err := tx.DeleteStudentDuesByDue(ctx, id)
		if err != nil {
			return err
		}
		deleted, err := tx.DeleteDue(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrDueNotFound
		}

		s.log.Info("due deleted", zap.Int64("due_id", id), zap.Int64("assignments_removed", removed))
		return nil
	})
}

// GetDue retrieves a due by ID
func (s *Service) GetDue(ctx context.Context, id int64) (*Due, error) {
	due, err := s.store.GetDue(ctx, id)
	if err != nil {
		return nil, err
	}
	if due == nil {
		return nil, ErrDueNotFound
	}
	return due, nil
}

// ListDues returns dues matching filter
func (s *Service) ListDues(ctx context.Context, filter DueFilter) ([]*Due, error) {
	return s.store.ListDues(ctx, filter)
}

// ListDueAssignments returns every StudentDue of a due
func (s *Service) ListDueAssignments(ctx context.Context, dueID int64) ([]*StudentDue, error) {
	if _, err := s.GetDue(ctx, dueID); err != nil {
		return nil, err
	}
	return s.store.ListStudentDuesByDue(ctx, dueID, false)
}
