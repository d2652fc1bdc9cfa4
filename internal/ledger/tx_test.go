package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fkhayef/duesledger/internal/ledger"
	"github.com/fkhayef/duesledger/internal/ledger/memory"
)

var errBoom = errors.New("boom")

// flakyStore fails the nth assignment insert and can pretend no assignment
// exists, to simulate a concurrent writer winning the race.
type flakyStore struct {
	ledger.Store
	failOnInsert int
	inserts      *int
	hideExisting bool
}

func (s *flakyStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ledger.Store) error) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, tx ledger.Store) error {
		return fn(ctx, &flakyStore{Store: tx, failOnInsert: s.failOnInsert, inserts: s.inserts, hideExisting: s.hideExisting})
	})
}

func (s *flakyStore) CreateStudentDue(ctx context.Context, sd *ledger.StudentDue) (*ledger.StudentDue, error) {
	*s.inserts++
	if s.failOnInsert > 0 && *s.inserts == s.failOnInsert {
		return nil, errBoom
	}
	return s.Store.CreateStudentDue(ctx, sd)
}

func (s *flakyStore) StudentDueExists(ctx context.Context, studentID, dueID int64) (bool, error) {
	if s.hideExisting {
		return false, nil
	}
	return s.Store.StudentDueExists(ctx, studentID, dueID)
}

func TestCreateDue_FanOutIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewStore()
	seed := ledger.NewService(mem, zap.NewNop())
	for _, name := range []string{"a", "b", "c"} {
		_, err := seed.CreateStudent(ctx, ledger.StudentInput{Name: name, Email: name + "@x.edu", Level: "ICT 100"})
		require.NoError(t, err)
	}

	inserts := 0
	svc := ledger.NewService(&flakyStore{Store: mem, failOnInsert: 2, inserts: &inserts}, zap.NewNop())

	_, err := svc.CreateDue(ctx, ledger.DueInput{Title: "Fees", Amount: dec("10"), Level: "ICT 100", AcademicYear: "2024/2025"})
	assert.ErrorIs(t, err, errBoom)

	dues, err := seed.ListDues(ctx, ledger.DueFilter{})
	require.NoError(t, err)
	assert.Empty(t, dues)

	all, err := mem.ListAllStudentDues(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAssign_ConcurrentInsertIsSwallowed(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewStore()
	seed := ledger.NewService(mem, zap.NewNop())

	due, err := seed.CreateDue(ctx, ledger.DueInput{Title: "Fees", Amount: dec("10"), Level: "ICT 100", AcademicYear: "2024/2025"})
	require.NoError(t, err)
	student, err := seed.CreateStudent(ctx, ledger.StudentInput{Name: "a", Email: "a@x.edu", Level: "ICT 100"})
	require.NoError(t, err)

	inserts := 0
	svc := ledger.NewService(&flakyStore{Store: mem, inserts: &inserts, hideExisting: true}, zap.NewNop())

	created, err := svc.AssignDuesToStudent(ctx, student.ID, student.Level)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, 1, inserts)

	created, err = svc.AssignDueToMatchingStudents(ctx, due.ID)
	require.NoError(t, err)
	assert.Zero(t, created)

	all, err := mem.ListAllStudentDues(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

type recordingNotifier struct {
	assigned []int64
	receipts []string
	err      error
}

func (n *recordingNotifier) DueAssigned(_ context.Context, studentID int64, _ *ledger.Due) error {
	n.assigned = append(n.assigned, studentID)
	return n.err
}

func (n *recordingNotifier) PaymentRecorded(_ context.Context, r *ledger.Receipt) error {
	n.receipts = append(n.receipts, r.Payment.Reference)
	return n.err
}

func TestNotifier_CalledAfterCommit(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := ledger.NewService(memory.NewStore(), zap.NewNop(), ledger.WithNotifier(notifier))

	student, err := svc.CreateStudent(ctx, ledger.StudentInput{Name: "a", Email: "a@x.edu", Level: "ICT 100"})
	require.NoError(t, err)
	assert.Empty(t, notifier.assigned)

	due, err := svc.CreateDue(ctx, ledger.DueInput{Title: "Fees", Amount: dec("10"), Level: "ICT 100", AcademicYear: "2024/2025"})
	require.NoError(t, err)
	assert.Equal(t, []int64{student.ID}, notifier.assigned)

	_, err = svc.RecordPayment(ctx, ledger.PaymentInput{StudentID: student.ID, DueID: due.ID, Amount: dec("4"), Reference: "R1"})
	require.NoError(t, err)

	// A failed payment announces nothing.
	_, err = svc.RecordPayment(ctx, ledger.PaymentInput{StudentID: student.ID, DueID: due.ID, Amount: dec("4"), Reference: "R1"})
	require.Error(t, err)

	assert.Equal(t, []string{"R1"}, notifier.receipts)
}

func TestNotifier_LevelRoundTripDoesNotReannouncePaidDue(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := ledger.NewService(memory.NewStore(), zap.NewNop(), ledger.WithNotifier(notifier))

	ict2, err := svc.CreateDue(ctx, ledger.DueInput{Title: "ICT 200 Fees", Amount: dec("500"), Level: "ICT 200", AcademicYear: "2024/2025"})
	require.NoError(t, err)
	_, err = svc.CreateDue(ctx, ledger.DueInput{Title: "ICT 300 Fees", Amount: dec("600"), Level: "ICT 300", AcademicYear: "2024/2025"})
	require.NoError(t, err)
	student, err := svc.CreateStudent(ctx, ledger.StudentInput{Name: "a", Email: "a@x.edu", Level: "ICT 200"})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, ledger.PaymentInput{StudentID: student.ID, DueID: ict2.ID, Amount: dec("200"), Reference: "R1"})
	require.NoError(t, err)

	_, err = svc.UpdateStudentLevel(ctx, student.ID, "ICT 300")
	require.NoError(t, err)
	_, err = svc.UpdateStudentLevel(ctx, student.ID, "ICT 200")
	require.NoError(t, err)

	// enrolment (ICT 200) and the move to ICT 300; the partly paid ICT 200 due is not announced again
	assert.Equal(t, []int64{student.ID, student.ID}, notifier.assigned)
}

func TestNotifier_FailureDoesNotFailLedger(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{err: errBoom}
	svc := ledger.NewService(memory.NewStore(), zap.NewNop(), ledger.WithNotifier(notifier))

	student, err := svc.CreateStudent(ctx, ledger.StudentInput{Name: "a", Email: "a@x.edu", Level: "ICT 100"})
	require.NoError(t, err)
	due, err := svc.CreateDue(ctx, ledger.DueInput{Title: "Fees", Amount: dec("10"), Level: "ICT 100", AcademicYear: "2024/2025"})
	require.NoError(t, err)

	receipt, err := svc.RecordPayment(ctx, ledger.PaymentInput{StudentID: student.ID, DueID: due.ID, Amount: dec("10"), Reference: "R1"})
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPaid, receipt.StudentDue.Status)
}
