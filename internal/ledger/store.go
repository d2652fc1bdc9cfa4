package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Lookups return (nil, nil) when the row does not exist.

// StudentStore persists users with the student role.
type StudentStore interface {
	CreateStudent(ctx context.Context, s *Student) (*Student, error)
	GetStudent(ctx context.Context, id int64) (*Student, error)
	ListStudents(ctx context.Context) ([]*Student, error)
	UpdateStudentLevel(ctx context.Context, id int64, level string) (*Student, error)
	DeleteStudent(ctx context.Context, id int64) (bool, error)
}

// DueStore persists due definitions.
type DueStore interface {
	CreateDue(ctx context.Context, d *Due) (*Due, error)
	GetDue(ctx context.Context, id int64) (*Due, error)
	// GetDueForUpdate reads the due and locks it until the transaction ends.
	GetDueForUpdate(ctx context.Context, id int64) (*Due, error)
	ListDues(ctx context.Context, filter DueFilter) ([]*Due, error)
	UpdateDue(ctx context.Context, d *Due) (*Due, error)
	DeleteDue(ctx context.Context, id int64) (bool, error)
}

// StudentDueStore persists assignments and their balances.
type StudentDueStore interface {
	// CreateStudentDue returns ErrAlreadyAssigned when the pair exists.
	CreateStudentDue(ctx context.Context, sd *StudentDue) (*StudentDue, error)
	StudentDueExists(ctx context.Context, studentID, dueID int64) (bool, error)
	GetStudentDueForUpdate(ctx context.Context, studentID, dueID int64) (*StudentDue, error)
	ListStudentDuesByStudent(ctx context.Context, studentID int64) ([]*StudentDue, error)
	ListStudentDuesByDue(ctx context.Context, dueID int64, forUpdate bool) ([]*StudentDue, error)
	ListAllStudentDues(ctx context.Context) ([]*StudentDue, error)
	UpdateStudentDueBalance(ctx context.Context, sd *StudentDue) error
	DeleteStudentDuesByStudent(ctx context.Context, studentID int64) (int64, error)
	DeleteStudentDuesByDue(ctx context.Context, dueID int64) (int64, error)
}

// PaymentStore persists the append-only payment ledger.
type PaymentStore interface {
	// CreatePayment returns ErrDuplicateReference when the reference is taken.
	CreatePayment(ctx context.Context, p *Payment) (*Payment, error)
	GetPaymentByReference(ctx context.Context, reference string) (*Payment, error)
	// ListPaymentsByStudent returns newest first. limit <= 0 means no limit.
	ListPaymentsByStudent(ctx context.Context, studentID int64, limit int) ([]*Payment, error)
	SumPayments(ctx context.Context, studentID, dueID int64) (decimal.Decimal, error)
	SumPaymentsByPair(ctx context.Context) (map[PairKey]decimal.Decimal, error)
}

// Store is everything the ledger service needs from persistence.
type Store interface {
	StudentStore
	DueStore
	StudentDueStore
	PaymentStore

	// WithinTx runs fn with a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Calling WithinTx on a transactional Store reuses the transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// Notifier is told about ledger events after their transaction commits.
type Notifier interface {
	DueAssigned(ctx context.Context, studentID int64, due *Due) error
	PaymentRecorded(ctx context.Context, receipt *Receipt) error
}
