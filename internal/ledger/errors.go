package ledger

import "errors"

// Common errors
var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrDueNotFound        = errors.New("due not found")
	ErrStudentDueNotFound = errors.New("due is not assigned to this student")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrDuplicateReference = errors.New("payment reference already used")
	ErrDuplicateEmail     = errors.New("email already in use")
	// ErrAlreadyAssigned is returned by a Store when a (student, due) pair
	// already has a StudentDue. The assignment engine treats it as a skip.
	ErrAlreadyAssigned = errors.New("due already assigned to student")
)
