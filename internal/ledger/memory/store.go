// Package memory is an in-process ledger.Store. Transactions are serialized
// and roll back by restoring a snapshot, so it honours the same atomicity and
// uniqueness rules as the postgres store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/duesledger/internal/ledger"
	"github.com/fkhayef/duesledger/internal/level"
)

type state struct {
	students    map[int64]ledger.Student
	dues        map[int64]ledger.Due
	studentDues map[int64]ledger.StudentDue
	payments    map[int64]ledger.Payment

	lastStudentID    int64
	lastDueID        int64
	lastStudentDueID int64
	lastPaymentID    int64
}

func newState() *state {
	return &state{
		students:    make(map[int64]ledger.Student),
		dues:        make(map[int64]ledger.Due),
		studentDues: make(map[int64]ledger.StudentDue),
		payments:    make(map[int64]ledger.Payment),
	}
}

func (s *state) clone() *state {
	c := *s
	c.students = make(map[int64]ledger.Student, len(s.students))
	for k, v := range s.students {
		c.students[k] = v
	}
	c.dues = make(map[int64]ledger.Due, len(s.dues))
	for k, v := range s.dues {
		c.dues[k] = v
	}
	c.studentDues = make(map[int64]ledger.StudentDue, len(s.studentDues))
	for k, v := range s.studentDues {
		c.studentDues[k] = v
	}
	c.payments = make(map[int64]ledger.Payment, len(s.payments))
	for k, v := range s.payments {
		c.payments[k] = v
	}
	return &c
}

// Store keeps the ledger in maps guarded by a single mutex.
type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
	now  func() time.Time
}

var _ ledger.Store = (*Store)(nil)

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		mu:  &sync.Mutex{},
		st:  newState(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTx implements ledger.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ledger.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	tx := &Store{mu: s.mu, st: s.st, inTx: true, now: s.now}
	if err := fn(ctx, tx); err != nil {
		*s.st = *snapshot
		return err
	}
	return nil
}

// Students

func (s *Store) CreateStudent(_ context.Context, in *ledger.Student) (*ledger.Student, error) {
	defer s.lock()()

	for _, existing := range s.st.students {
		if strings.EqualFold(existing.Email, in.Email) {
			return nil, ledger.ErrDuplicateEmail
		}
	}

	s.st.lastStudentID++
	student := *in
	student.ID = s.st.lastStudentID
	student.CreatedAt = s.now()
	student.UpdatedAt = student.CreatedAt
	s.st.students[student.ID] = student
	return &student, nil
}

func (s *Store) GetStudent(_ context.Context, id int64) (*ledger.Student, error) {
	defer s.lock()()

	student, ok := s.st.students[id]
	if !ok {
		return nil, nil
	}
	return &student, nil
}

func (s *Store) ListStudents(_ context.Context) ([]*ledger.Student, error) {
	defer s.lock()()

	students := make([]*ledger.Student, 0, len(s.st.students))
	for _, v := range s.st.students {
		student := v
		students = append(students, &student)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (s *Store) UpdateStudentLevel(_ context.Context, id int64, lvl string) (*ledger.Student, error) {
	defer s.lock()()

	student, ok := s.st.students[id]
	if !ok {
		return nil, nil
	}
	student.Level = lvl
	student.UpdatedAt = s.now()
	s.st.students[id] = student
	return &student, nil
}

// DeleteStudent cascades to the student's assignments and payments.
func (s *Store) DeleteStudent(_ context.Context, id int64) (bool, error) {
	defer s.lock()()

	if _, ok := s.st.students[id]; !ok {
		return false, nil
	}
	delete(s.st.students, id)
	for k, sd := range s.st.studentDues {
		if sd.StudentID == id {
			delete(s.st.studentDues, k)
		}
	}
	for k, p := range s.st.payments {
		if p.StudentID == id {
			delete(s.st.payments, k)
		}
	}
	return true, nil
}

// Dues

func (s *Store) CreateDue(_ context.Context, in *ledger.Due) (*ledger.Due, error) {
	defer s.lock()()

	s.st.lastDueID++
	due := *in
	due.ID = s.st.lastDueID
	due.CreatedAt = s.now()
	due.UpdatedAt = due.CreatedAt
	s.st.dues[due.ID] = due
	return &due, nil
}

func (s *Store) GetDue(_ context.Context, id int64) (*ledger.Due, error) {
	defer s.lock()()

	due, ok := s.st.dues[id]
	if !ok {
		return nil, nil
	}
	return &due, nil
}

// GetDueForUpdate is GetDue; transactions already run one at a time.
func (s *Store) GetDueForUpdate(ctx context.Context, id int64) (*ledger.Due, error) {
	return s.GetDue(ctx, id)
}

func (s *Store) ListDues(_ context.Context, filter ledger.DueFilter) ([]*ledger.Due, error) {
	defer s.lock()()

	dues := make([]*ledger.Due, 0, len(s.st.dues))
	for _, v := range s.st.dues {
		if filter.Level != "" && !level.Matches(v.Level, filter.Level) {
			continue
		}
		if filter.AcademicYear != "" && strings.TrimSpace(filter.AcademicYear) != v.AcademicYear {
			continue
		}
		due := v
		dues = append(dues, &due)
	}
	sort.Slice(dues, func(i, j int) bool { return dues[i].ID > dues[j].ID })
	return dues, nil
}

func (s *Store) UpdateDue(_ context.Context, in *ledger.Due) (*ledger.Due, error) {
	defer s.lock()()

	due, ok := s.st.dues[in.ID]
	if !ok {
		return nil, nil
	}
	due.Title = in.Title
	due.Amount = in.Amount
	due.Level = in.Level
	due.AcademicYear = in.AcademicYear
	due.Description = in.Description
	due.UpdatedAt = s.now()
	s.st.dues[due.ID] = due
	return &due, nil
}

// DeleteDue cascades to assignments but leaves payments alone.
func (s *Store) DeleteDue(_ context.Context, id int64) (bool, error) {
	defer s.lock()()

	if _, ok := s.st.dues[id]; !ok {
		return false, nil
	}
	delete(s.st.dues, id)
	for k, sd := range s.st.studentDues {
		if sd.DueID == id {
			delete(s.st.studentDues, k)
		}
	}
	return true, nil
}

// Student dues

func (s *Store) CreateStudentDue(_ context.Context, in *ledger.StudentDue) (*ledger.StudentDue, error) {
	defer s.lock()()

	if _, ok := s.st.students[in.StudentID]; !ok {
		return nil, ledger.ErrStudentNotFound
	}
	if _, ok := s.st.dues[in.DueID]; !ok {
		return nil, ledger.ErrDueNotFound
	}
	if _, ok := s.findPair(in.StudentID, in.DueID); ok {
		return nil, ledger.ErrAlreadyAssigned
	}

	s.st.lastStudentDueID++
	sd := *in
	sd.ID = s.st.lastStudentDueID
	sd.CreatedAt = s.now()
	sd.UpdatedAt = sd.CreatedAt
	s.st.studentDues[sd.ID] = sd
	return s.joined(sd), nil
}

func (s *Store) StudentDueExists(_ context.Context, studentID, dueID int64) (bool, error) {
	defer s.lock()()

	_, ok := s.findPair(studentID, dueID)
	return ok, nil
}

// GetStudentDueForUpdate reads one assignment; transactions already run one at a time.
func (s *Store) GetStudentDueForUpdate(_ context.Context, studentID, dueID int64) (*ledger.StudentDue, error) {
	defer s.lock()()

	sd, ok := s.findPair(studentID, dueID)
	if !ok {
		return nil, nil
	}
	return s.joined(sd), nil
}

func (s *Store) ListStudentDuesByStudent(_ context.Context, studentID int64) ([]*ledger.StudentDue, error) {
	defer s.lock()()

	return s.filterStudentDues(func(sd ledger.StudentDue) bool { return sd.StudentID == studentID }), nil
}

func (s *Store) ListStudentDuesByDue(_ context.Context, dueID int64, _ bool) ([]*ledger.StudentDue, error) {
	defer s.lock()()

	return s.filterStudentDues(func(sd ledger.StudentDue) bool { return sd.DueID == dueID }), nil
}

func (s *Store) ListAllStudentDues(_ context.Context) ([]*ledger.StudentDue, error) {
	defer s.lock()()

	return s.filterStudentDues(func(ledger.StudentDue) bool { return true }), nil
}

func (s *Store) UpdateStudentDueBalance(_ context.Context, in *ledger.StudentDue) error {
	defer s.lock()()

	sd, ok := s.st.studentDues[in.ID]
	if !ok {
		return ledger.ErrStudentDueNotFound
	}
	sd.AmountPaid = in.AmountPaid
	sd.Balance = in.Balance
	sd.Status = in.Status
	sd.UpdatedAt = s.now()
	s.st.studentDues[sd.ID] = sd
	return nil
}

func (s *Store) DeleteStudentDuesByStudent(_ context.Context, studentID int64) (int64, error) {
	defer s.lock()()

	var n int64
	for k, sd := range s.st.studentDues {
		if sd.StudentID == studentID {
			delete(s.st.studentDues, k)
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteStudentDuesByDue(_ context.Context, dueID int64) (int64, error) {
	defer s.lock()()

	var n int64
	for k, sd := range s.st.studentDues {
		if sd.DueID == dueID {
			delete(s.st.studentDues, k)
			n++
		}
	}
	return n, nil
}

// Payments

func (s *Store) CreatePayment(_ context.Context, in *ledger.Payment) (*ledger.Payment, error) {
	defer s.lock()()

	if _, ok := s.st.students[in.StudentID]; !ok {
		return nil, ledger.ErrStudentNotFound
	}
	for _, p := range s.st.payments {
		if p.Reference == in.Reference {
			return nil, ledger.ErrDuplicateReference
		}
	}

	s.st.lastPaymentID++
	payment := *in
	payment.ID = s.st.lastPaymentID
	payment.PaidAt = s.now()
	payment.DueTitle = ""
	s.st.payments[payment.ID] = payment
	return s.joinedPayment(payment), nil
}

func (s *Store) GetPaymentByReference(_ context.Context, reference string) (*ledger.Payment, error) {
	defer s.lock()()

	for _, p := range s.st.payments {
		if p.Reference == reference {
			return s.joinedPayment(p), nil
		}
	}
	return nil, nil
}

func (s *Store) ListPaymentsByStudent(_ context.Context, studentID int64, limit int) ([]*ledger.Payment, error) {
	defer s.lock()()

	payments := []*ledger.Payment{}
	for _, p := range s.st.payments {
		if p.StudentID == studentID {
			payments = append(payments, s.joinedPayment(p))
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		if !payments[i].PaidAt.Equal(payments[j].PaidAt) {
			return payments[i].PaidAt.After(payments[j].PaidAt)
		}
		return payments[i].ID > payments[j].ID
	})
	if limit > 0 && len(payments) > limit {
		payments = payments[:limit]
	}
	return payments, nil
}

func (s *Store) SumPayments(_ context.Context, studentID, dueID int64) (decimal.Decimal, error) {
	defer s.lock()()

	total := decimal.Zero
	for _, p := range s.st.payments {
		if p.StudentID == studentID && p.DueID == dueID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (s *Store) SumPaymentsByPair(_ context.Context) (map[ledger.PairKey]decimal.Decimal, error) {
	defer s.lock()()

	sums := make(map[ledger.PairKey]decimal.Decimal)
	for _, p := range s.st.payments {
		key := ledger.PairKey{StudentID: p.StudentID, DueID: p.DueID}
		sums[key] = sums[key].Add(p.Amount)
	}
	return sums, nil
}

// Corrupt overwrites an assignment's stored figures without touching the
// payment ledger. Test use only: it is how the ledger and summary tests
// produce drift for Audit to find. Nothing outside _test.go files calls it,
// and the postgres store has no counterpart.
func (s *Store) Corrupt(studentDueID int64, amountPaid, balance decimal.Decimal, status ledger.Status) {
	defer s.lock()()

	sd, ok := s.st.studentDues[studentDueID]
	if !ok {
		return
	}
	sd.AmountPaid = amountPaid
	sd.Balance = balance
	sd.Status = status
	s.st.studentDues[studentDueID] = sd
}

// helpers; callers hold the lock

func (s *Store) findPair(studentID, dueID int64) (ledger.StudentDue, bool) {
	for _, sd := range s.st.studentDues {
		if sd.StudentID == studentID && sd.DueID == dueID {
			return sd, true
		}
	}
	return ledger.StudentDue{}, false
}

func (s *Store) joined(sd ledger.StudentDue) *ledger.StudentDue {
	if due, ok := s.st.dues[sd.DueID]; ok {
		sd.DueTitle = due.Title
		sd.DueAmount = due.Amount
		sd.AcademicYear = due.AcademicYear
	}
	return &sd
}

func (s *Store) joinedPayment(p ledger.Payment) *ledger.Payment {
	if due, ok := s.st.dues[p.DueID]; ok {
		p.DueTitle = due.Title
	}
	return &p
}

func (s *Store) filterStudentDues(keep func(ledger.StudentDue) bool) []*ledger.StudentDue {
	out := []*ledger.StudentDue{}
	for _, sd := range s.st.studentDues {
		if keep(sd) {
			out = append(out, s.joined(sd))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
