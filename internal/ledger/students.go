package ledger

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fkhayef/duesledger/internal/level"
	"github.com/fkhayef/duesledger/pkg/validate"
)

// CreateStudent enrols a student and assigns every due matching their level.
func (s *Service) CreateStudent(ctx context.Context, in StudentInput) (*Student, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	ev := &events{}
	var student *Student
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Store) error {
		var err error
		student, err = tx.CreateStudent(ctx, &Student{
			Name:  in.Name,
			Email: in.Email,
			Level: in.Level,
		})
		if err != nil {
			return err
		}

		_, err = s.assignDuesToStudent(ctx, tx, student.ID, student.Level, ev)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("student created", zap.Int64("student_id", student.ID), zap.String("level", student.Level))
	s.publish(ctx, ev)
	return student, nil
}

// GetStudent retrieves a student by ID
func (s *Service) GetStudent(ctx context.Context, id int64) (*Student, error) {
	student, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

// ListStudents returns every student
func (s *Service) ListStudents(ctx context.Context) ([]*Student, error) {
	return s.store.ListStudents(ctx)
}

// UpdateStudentLevel changes a student's level. When the level really
// changes, the student's assignments are dropped and rebuilt for the new
// level. Payments are kept; a rebuilt assignment for a due the student had
// already paid towards starts from those payments.
func (s *Service) UpdateStudentLevel(ctx context.Context, id int64, newLevel string) (*Student, error) {
	in := LevelInput{Level: newLevel}
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	newLevel = in.Level

	ev := &events{}
	var student *Student
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Store) error {
		existing, err := tx.GetStudent(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrStudentNotFound
		}

		student, err = tx.UpdateStudentLevel(ctx, id, newLevel)
		if err != nil {
			return err
		}
		if student == nil {
			return ErrStudentNotFound
		}

		if sameLevel(existing.Level, newLevel) {
			return nil
		}

		removed, err := tx.DeleteStudentDuesByStudent(ctx, id)
		if err != nil {
			return err
		}
		created, err := s.assignDuesToStudent(ctx, tx, id, newLevel, ev)
		if err != nil {
			return err
		}

		s.log.Info("student level changed",
			zap.Int64("student_id", id),
			zap.String("from", existing.Level),
			zap.String("to", newLevel),
			zap.Int64("assignments_removed", removed),
			zap.Int("assignments_created", created),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, ev)
	return student, nil
}

// DeleteStudent removes a student together with their assignments and payments.
func (s *Service) DeleteStudent(ctx context.Context, id int64) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, tx Store) error {
		deleted, err := tx.DeleteStudent(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrStudentNotFound
		}
		s.log.Info("student deleted", zap.Int64("student_id", id))
		return nil
	})
}

func sameLevel(a, b string) bool {
	return strings.EqualFold(level.Normalize(a), level.Normalize(b))
}
