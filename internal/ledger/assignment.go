package ledger

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fkhayef/duesledger/internal/level"
)

// AssignDuesToStudent creates a StudentDue for every due whose level matches
// studentLevel and that the student does not already owe. It returns how many
// assignments were created. An empty level assigns nothing.
func (s *Service) AssignDuesToStudent(ctx context.Context, studentID int64, studentLevel string) (int, error) {
	ev := &events{}
	var created int
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Store) error {
		student, err := tx.GetStudent(ctx, studentID)
		if err != nil {
			return err
		}
		if student == nil {
			return ErrStudentNotFound
		}

		created, err = s.assignDuesToStudent(ctx, tx, studentID, studentLevel, ev)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.publish(ctx, ev)
	return created, nil
}

// AssignDueToMatchingStudents creates a StudentDue for every student whose
// level matches the due's level and who does not already owe it.
func (s *Service) AssignDueToMatchingStudents(ctx context.Context, dueID int64) (int, error) {
	ev := &events{}
	var created int
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Store) error {
		due, err := tx.GetDue(ctx, dueID)
		if err != nil {
			return err
		}
		if due == nil {
			return ErrDueNotFound
		}

		created, err = s.assignDueToMatchingStudents(ctx, tx, due, ev)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.publish(ctx, ev)
	return created, nil
}

func (s *Service) assignDuesToStudent(ctx context.Context, tx Store, studentID int64, studentLevel string, ev *events) (int, error) {
	if level.Normalize(studentLevel) == "" {
		return 0, nil
	}

	dues, err := tx.ListDues(ctx, DueFilter{})
	if err != nil {
		return 0, err
	}

	created := 0
	for _, due := range dues {
		if !level.Matches(studentLevel, due.Level) {
			continue
		}
		sd, err := s.assign(ctx, tx, studentID, due)
		if err != nil {
			return created, err
		}
		if sd != nil {
			created++
			ev.dueAssigned(sd, due)
		}
	}

	s.log.Debug("dues assigned to student",
		zap.Int64("student_id", studentID),
		zap.String("level", studentLevel),
		zap.Int("created", created),
	)
	return created, nil
}

func (s *Service) assignDueToMatchingStudents(ctx context.Context, tx Store, due *Due, ev *events) (int, error) {
	students, err := tx.ListStudents(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, student := range students {
		if !level.Matches(student.Level, due.Level) {
			continue
		}
		sd, err := s.assign(ctx, tx, student.ID, due)
		if err != nil {
			return created, err
		}
		if sd != nil {
			created++
			ev.dueAssigned(sd, due)
		}
	}

	s.log.Debug("due assigned to matching students",
		zap.Int64("due_id", due.ID),
		zap.String("level", due.Level),
		zap.Int("created", created),
	)
	return created, nil
}

// assign creates the StudentDue for one pair unless it already exists. The
// existence check avoids the common case; a concurrent insert that wins the
// race surfaces as ErrAlreadyAssigned and is treated the same way.
func (s *Service) assign(ctx context.Context, tx Store, studentID int64, due *Due) (*StudentDue, error) {
	exists, err := tx.StudentDueExists(ctx, studentID, due.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	// Payments outlive assignments (level changes, re-enrolment), so a new
	// assignment starts from whatever the ledger already holds for the pair.
	paid, err := tx.SumPayments(ctx, studentID, due.ID)
	if err != nil {
		return nil, err
	}

	sd := &StudentDue{
		StudentID:  studentID,
		DueID:      due.ID,
		AmountPaid: paid,
	}
	sd.Reconcile(due.Amount)

	created, err := tx.CreateStudentDue(ctx, sd)
	if err != nil {
		if errors.Is(err, ErrAlreadyAssigned) {
			s.log.Debug("assignment already present",
				zap.Int64("student_id", studentID),
				zap.Int64("due_id", due.ID),
			)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to assign due %d to student %d: %w", due.ID, studentID, err)
	}
	return created, nil
}
