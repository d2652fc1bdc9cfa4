package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fkhayef/duesledger/internal/ledger"
)

const dueColumns = `id, title, amount, level, academic_year, description, created_at, updated_at`

func scanDue(row interface{ Scan(...interface{}) error }) (*ledger.Due, error) {
	due := &ledger.Due{}
	err := row.Scan(
		&due.ID,
		&due.Title,
		&due.Amount,
		&due.Level,
		&due.AcademicYear,
		&due.Description,
		&due.CreatedAt,
		&due.UpdatedAt,
	)
	return due, err
}

// CreateDue inserts a new due
func (s *Store) CreateDue(ctx context.Context, in *ledger.Due) (*ledger.Due, error) {
	query := `
		INSERT INTO dues (title, amount, level, academic_year, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + dueColumns

	due, err := scanDue(s.q.QueryRowContext(ctx, query, in.Title, in.Amount, in.Level, in.AcademicYear, in.Description))
	if err != nil {
		return nil, fmt.Errorf("failed to create due: %w", err)
	}

	return due, nil
}

// GetDue retrieves a due by its ID
func (s *Store) GetDue(ctx context.Context, id int64) (*ledger.Due, error) {
	return s.getDue(ctx, id, false)
}

// GetDueForUpdate retrieves a due and locks its row
func (s *Store) GetDueForUpdate(ctx context.Context, id int64) (*ledger.Due, error) {
	return s.getDue(ctx, id, true)
}

func (s *Store) getDue(ctx context.Context, id int64, forUpdate bool) (*ledger.Due, error) {
	query := `SELECT ` + dueColumns + ` FROM dues WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	due, err := scanDue(s.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get due: %w", err)
	}

	return due, nil
}

// ListDues retrieves dues, newest first
func (s *Store) ListDues(ctx context.Context, filter ledger.DueFilter) ([]*ledger.Due, error) {
	var (
		where []string
		args  []interface{}
	)
	if lvl := strings.TrimSpace(filter.Level); lvl != "" {
		args = append(args, lvl)
		where = append(where, fmt.Sprintf("LOWER(level) = LOWER($%d)", len(args)))
	}
	if year := strings.TrimSpace(filter.AcademicYear); year != "" {
		args = append(args, year)
		where = append(where, fmt.Sprintf("academic_year = $%d", len(args)))
	}

	query := `SELECT ` + dueColumns + ` FROM dues`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dues: %w", err)
	}
	defer rows.Close()

	dues := []*ledger.Due{}
	for rows.Next() {
		due, err := scanDue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due: %w", err)
		}
		dues = append(dues, due)
	}

	return dues, rows.Err()
}

// UpdateDue writes every editable field of a due
func (s *Store) UpdateDue(ctx context.Context, in *ledger.Due) (*ledger.Due, error) {
	query := `
		UPDATE dues
		SET title = $2, amount = $3, level = $4, academic_year = $5, description = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + dueColumns

	due, err := scanDue(s.q.QueryRowContext(ctx, query, in.ID, in.Title, in.Amount, in.Level, in.AcademicYear, in.Description))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update due: %w", err)
	}

	return due, nil
}

// DeleteDue removes a due
func (s *Store) DeleteDue(ctx context.Context, id int64) (bool, error) {
	result, err := s.q.ExecContext(ctx, `DELETE FROM dues WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete due: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
