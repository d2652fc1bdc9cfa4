package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fkhayef/duesledger/internal/database"
	"github.com/fkhayef/duesledger/internal/ledger"
)

const studentColumns = `id, name, email, level, created_at, updated_at`

func scanStudent(row interface{ Scan(...interface{}) error }) (*ledger.Student, error) {
	student := &ledger.Student{}
	err := row.Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Level,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	return student, err
}

// CreateStudent inserts a user with the student role
func (s *Store) CreateStudent(ctx context.Context, in *ledger.Student) (*ledger.Student, error) {
	query := `
		INSERT INTO users (name, email, role, level)
		VALUES ($1, $2, 'student', $3)
		RETURNING ` + studentColumns

	student, err := scanStudent(s.q.QueryRowContext(ctx, query, in.Name, in.Email, in.Level))
	if err != nil {
		if database.IsUniqueViolation(err, emailConstraint) {
			return nil, ledger.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	return student, nil
}

// GetStudent retrieves a student by their ID
func (s *Store) GetStudent(ctx context.Context, id int64) (*ledger.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM users WHERE id = $1 AND role = 'student'`

	student, err := scanStudent(s.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return student, nil
}

// ListStudents retrieves every student
func (s *Store) ListStudents(ctx context.Context) ([]*ledger.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM users WHERE role = 'student' ORDER BY id`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	students := []*ledger.Student{}
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, student)
	}

	return students, rows.Err()
}

// UpdateStudentLevel sets a student's level label
func (s *Store) UpdateStudentLevel(ctx context.Context, id int64, level string) (*ledger.Student, error) {
	query := `
		UPDATE users
		SET level = $2, updated_at = NOW()
		WHERE id = $1 AND role = 'student'
		RETURNING ` + studentColumns

	student, err := scanStudent(s.q.QueryRowContext(ctx, query, id, level))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update student level: %w", err)
	}

	return student, nil
}

// DeleteStudent removes a student; assignments and payments go with it
func (s *Store) DeleteStudent(ctx context.Context, id int64) (bool, error) {
	query := `DELETE FROM users WHERE id = $1 AND role = 'student'`

	result, err := s.q.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete student: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
