package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fkhayef/duesledger/internal/database"
	"github.com/fkhayef/duesledger/internal/ledger"
)

const studentDueSelect = `
	SELECT sd.id, sd.student_id, sd.due_id, sd.amount_paid, sd.balance, sd.status,
	       sd.created_at, sd.updated_at, d.title, d.amount, d.academic_year
	FROM student_dues sd
	JOIN dues d ON d.id = sd.due_id
`

func scanStudentDue(row interface{ Scan(...interface{}) error }) (*ledger.StudentDue, error) {
	sd := &ledger.StudentDue{}
	err := row.Scan(
		&sd.ID,
		&sd.StudentID,
		&sd.DueID,
		&sd.AmountPaid,
		&sd.Balance,
		&sd.Status,
		&sd.CreatedAt,
		&sd.UpdatedAt,
		&sd.DueTitle,
		&sd.DueAmount,
		&sd.AcademicYear,
	)
	return sd, err
}

// CreateStudentDue inserts an assignment. The unique (student_id, due_id)
// index decides races: a conflicting insert does nothing and reports
// ledger.ErrAlreadyAssigned without aborting the transaction.
func (s *Store) CreateStudentDue(ctx context.Context, in *ledger.StudentDue) (*ledger.StudentDue, error) {
	query := `
		INSERT INTO student_dues (student_id, due_id, amount_paid, balance, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, due_id) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	sd := *in
	err := s.q.QueryRowContext(ctx, query, in.StudentID, in.DueID, in.AmountPaid, in.Balance, in.Status).Scan(
		&sd.ID,
		&sd.CreatedAt,
		&sd.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows || database.IsUniqueViolation(err, assignmentConstraint) {
			return nil, ledger.ErrAlreadyAssigned
		}
		return nil, fmt.Errorf("failed to create student due: %w", err)
	}

	return &sd, nil
}

// StudentDueExists checks whether a pair already has an assignment
func (s *Store) StudentDueExists(ctx context.Context, studentID, dueID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM student_dues WHERE student_id = $1 AND due_id = $2)`

	var exists bool
	if err := s.q.QueryRowContext(ctx, query, studentID, dueID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check student due: %w", err)
	}

	return exists, nil
}

// GetStudentDueForUpdate retrieves one assignment and locks its row
func (s *Store) GetStudentDueForUpdate(ctx context.Context, studentID, dueID int64) (*ledger.StudentDue, error) {
	query := studentDueSelect + `
		WHERE sd.student_id = $1 AND sd.due_id = $2
		FOR UPDATE OF sd
	`

	sd, err := scanStudentDue(s.q.QueryRowContext(ctx, query, studentID, dueID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get student due: %w", err)
	}

	return sd, nil
}

// ListStudentDuesByStudent retrieves a student's assignments
func (s *Store) ListStudentDuesByStudent(ctx context.Context, studentID int64) ([]*ledger.StudentDue, error) {
	return s.listStudentDues(ctx, studentDueSelect+` WHERE sd.student_id = $1 ORDER BY sd.id`, studentID)
}

// ListStudentDuesByDue retrieves a due's assignments, optionally locking them
func (s *Store) ListStudentDuesByDue(ctx context.Context, dueID int64, forUpdate bool) ([]*ledger.StudentDue, error) {
	query := studentDueSelect + ` WHERE sd.due_id = $1 ORDER BY sd.id`
	if forUpdate {
		query += ` FOR UPDATE OF sd`
	}
	return s.listStudentDues(ctx, query, dueID)
}

// ListAllStudentDues retrieves every assignment
func (s *Store) ListAllStudentDues(ctx context.Context) ([]*ledger.StudentDue, error) {
	return s.listStudentDues(ctx, studentDueSelect+` ORDER BY sd.id`)
}

func (s *Store) listStudentDues(ctx context.Context, query string, args ...interface{}) ([]*ledger.StudentDue, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list student dues: %w", err)
	}
	defer rows.Close()

	dues := []*ledger.StudentDue{}
	for rows.Next() {
		sd, err := scanStudentDue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student due: %w", err)
		}
		dues = append(dues, sd)
	}

	return dues, rows.Err()
}

// UpdateStudentDueBalance writes amount_paid, balance and status
func (s *Store) UpdateStudentDueBalance(ctx context.Context, sd *ledger.StudentDue) error {
	query := `
		UPDATE student_dues
		SET amount_paid = $2, balance = $3, status = $4, updated_at = NOW()
		WHERE id = $1
	`

	result, err := s.q.ExecContext(ctx, query, sd.ID, sd.AmountPaid, sd.Balance, sd.Status)
	if err != nil {
		return fmt.Errorf("failed to update student due: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ledger.ErrStudentDueNotFound
	}

	return nil
}

// DeleteStudentDuesByStudent removes every assignment of a student
func (s *Store) DeleteStudentDuesByStudent(ctx context.Context, studentID int64) (int64, error) {
	return s.deleteStudentDues(ctx, `DELETE FROM student_dues WHERE student_id = $1`, studentID)
}

// DeleteStudentDuesByDue removes every assignment of a due
func (s *Store) DeleteStudentDuesByDue(ctx context.Context, dueID int64) (int64, error) {
	return s.deleteStudentDues(ctx, `DELETE FROM student_dues WHERE due_id = $1`, dueID)
}

func (s *Store) deleteStudentDues(ctx context.Context, query string, id int64) (int64, error) {
	result, err := s.q.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete student dues: %w", err)
	}
	return result.RowsAffected()
}
