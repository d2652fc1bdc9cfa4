// Package postgres implements ledger.Store on top of database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"

	"github.com/fkhayef/duesledger/internal/database"
	"github.com/fkhayef/duesledger/internal/ledger"
)

const (
	emailConstraint      = "users_email_key"
	assignmentConstraint = "student_dues_student_due_key"
	referenceConstraint  = "payments_reference_key"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store handles ledger data persistence
type Store struct {
	db   *sql.DB
	q    querier
	inTx bool
}

var _ ledger.Store = (*Store)(nil)

// NewStore creates a new ledger store with database dependency injected
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// WithinTx implements ledger.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ledger.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	return database.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(ctx, &Store{db: s.db, q: tx, inTx: true})
	})
}
