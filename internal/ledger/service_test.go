package ledger_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fkhayef/duesledger/internal/ledger"
	"github.com/fkhayef/duesledger/internal/ledger/memory"
	"github.com/fkhayef/duesledger/pkg/validate"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

type fixture struct {
	ctx   context.Context
	store *memory.Store
	svc   *ledger.Service
}

func newFixture(t *testing.T, opts ...ledger.Option) *fixture {
	t.Helper()
	store := memory.NewStore()
	return &fixture{
		ctx:   context.Background(),
		store: store,
		svc:   ledger.NewService(store, zap.NewNop(), opts...),
	}
}

func (f *fixture) due(t *testing.T, title, amount, lvl string) *ledger.Due {
	t.Helper()
	due, err := f.svc.CreateDue(f.ctx, ledger.DueInput{
		Title:        title,
		Amount:       dec(amount),
		Level:        lvl,
		AcademicYear: "2024/2025",
	})
	require.NoError(t, err)
	return due
}

func (f *fixture) student(t *testing.T, name, lvl string) *ledger.Student {
	t.Helper()
	student, err := f.svc.CreateStudent(f.ctx, ledger.StudentInput{
		Name:  name,
		Email: name + "@dept.example.edu",
		Level: lvl,
	})
	require.NoError(t, err)
	return student
}

func (f *fixture) pay(t *testing.T, studentID, dueID int64, amount, ref string) *ledger.Receipt {
	t.Helper()
	receipt, err := f.svc.RecordPayment(f.ctx, ledger.PaymentInput{
		StudentID: studentID,
		DueID:     dueID,
		Amount:    dec(amount),
		Reference: ref,
	})
	require.NoError(t, err)
	return receipt
}

func (f *fixture) assignments(t *testing.T, studentID int64) []*ledger.StudentDue {
	t.Helper()
	summary, err := f.svc.StudentSummary(f.ctx, studentID)
	require.NoError(t, err)
	return summary.Dues
}

func (f *fixture) assertNoDrift(t *testing.T) {
	t.Helper()
	drifts, err := f.svc.Audit(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestEndToEnd_SemesterFees(t *testing.T) {
	f := newFixture(t)

	due := f.due(t, "Semester Fees", "500", "ICT 200")
	student := f.student(t, "ama", "ICT 200")

	dues := f.assignments(t, student.ID)
	require.Len(t, dues, 1)
	assert.Equal(t, due.ID, dues[0].DueID)
	assertDec(t, "500", dues[0].Balance)
	assertDec(t, "0", dues[0].AmountPaid)
	assert.Equal(t, ledger.StatusNotPaid, dues[0].Status)

	receipt := f.pay(t, student.ID, due.ID, "200", "REF-1")
	assertDec(t, "300", receipt.StudentDue.Balance)
	assert.Equal(t, ledger.StatusPartial, receipt.StudentDue.Status)
	assert.Equal(t, ledger.DefaultPaymentMethod, receipt.Payment.Method)
	assert.Equal(t, "Semester Fees", receipt.Payment.DueTitle)

	receipt = f.pay(t, student.ID, due.ID, "300", "REF-2")
	assertDec(t, "0", receipt.StudentDue.Balance)
	assertDec(t, "500", receipt.StudentDue.AmountPaid)
	assert.Equal(t, ledger.StatusPaid, receipt.StudentDue.Status)

	f.assertNoDrift(t)
}

func TestCreateDue_FansOutToMatchingStudentsOnly(t *testing.T) {
	f := newFixture(t)

	a := f.student(t, "a", "ICT 300")
	b := f.student(t, "b", "ict 300 ")
	c := f.student(t, "c", "ICT 200")
	d := f.student(t, "d", "B-Tech 300")
	e := f.student(t, "e", "")

	due := f.due(t, "Lab Fee", "120.50", "ICT 300")

	assignments, err := f.svc.ListDueAssignments(f.ctx, due.ID)
	require.NoError(t, err)

	var ids []int64
	for _, sd := range assignments {
		ids = append(ids, sd.StudentID)
		assertDec(t, "120.50", sd.Balance)
		assertDec(t, "0", sd.AmountPaid)
		assert.Equal(t, ledger.StatusNotPaid, sd.Status)
	}
	assert.ElementsMatch(t, []int64{a.ID, b.ID}, ids)

	for _, s := range []*ledger.Student{c, d, e} {
		assert.Empty(t, f.assignments(t, s.ID), "student %s", s.Name)
	}
}

func TestAssignment_IsIdempotent(t *testing.T) {
	f := newFixture(t)

	due := f.due(t, "Dues", "50", "Top Up 400")
	student := f.student(t, "kofi", "Top Up 400")
	require.Len(t, f.assignments(t, student.ID), 1)

	created, err := f.svc.AssignDuesToStudent(f.ctx, student.ID, student.Level)
	require.NoError(t, err)
	assert.Zero(t, created)

	created, err = f.svc.AssignDueToMatchingStudents(f.ctx, due.ID)
	require.NoError(t, err)
	assert.Zero(t, created)

	assert.Len(t, f.assignments(t, student.ID), 1)
}

func TestAssignDuesToStudent_EmptyLevelIsNoop(t *testing.T) {
	f := newFixture(t)
	f.due(t, "Dues", "50", "ICT 100")
	student := f.student(t, "levelless", "")

	created, err := f.svc.AssignDuesToStudent(f.ctx, student.ID, "  ")
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestAssignDuesToStudent_UnknownStudent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AssignDuesToStudent(f.ctx, 99, "ICT 100")
	assert.ErrorIs(t, err, ledger.ErrStudentNotFound)

	_, err = f.svc.AssignDueToMatchingStudents(f.ctx, 99)
	assert.ErrorIs(t, err, ledger.ErrDueNotFound)
}

func TestUpdateDue_AmountIncreaseReopensPaidDue(t *testing.T) {
	f := newFixture(t)

	due := f.due(t, "Semester Fees", "500", "ICT 200")
	student := f.student(t, "ama", "ICT 200")
	f.pay(t, student.ID, due.ID, "500", "REF-1")

	updated, err := f.svc.UpdateDue(f.ctx, due.ID, ledger.DueInput{
		Title:        due.Title,
		Amount:       dec("700"),
		Level:        due.Level,
		AcademicYear: due.AcademicYear,
	})
	require.NoError(t, err)
	assertDec(t, "700", updated.Amount)

	dues := f.assignments(t, student.ID)
	require.Len(t, dues, 1)
	assertDec(t, "200", dues[0].Balance)
	assertDec(t, "500", dues[0].AmountPaid)
	assert.Equal(t, ledger.StatusPartial, dues[0].Status)
	f.assertNoDrift(t)
}

func TestUpdateDue_AmountChanges(t *testing.T) {
	tests := []struct {
		name        string
		paid        string
		newAmount   string
		wantBalance string
		wantStatus  ledger.Status
	}{
		{"unpaid raised", "", "650", "650", ledger.StatusNotPaid},
		{"unpaid lowered", "", "100", "100", ledger.StatusNotPaid},
		{"partial lowered below paid", "200", "150", "-50", ledger.StatusPaid},
		{"partial lowered to paid", "200", "200", "0", ledger.StatusPaid},
		{"partial raised", "200", "600", "400", ledger.StatusPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			due := f.due(t, "Fees", "500", "ICT 100")
			student := f.student(t, "s", "ICT 100")
			if tt.paid != "" {
				f.pay(t, student.ID, due.ID, tt.paid, "REF")
			}

			_, err := f.svc.UpdateDue(f.ctx, due.ID, ledger.DueInput{
				Title:        "Fees",
				Amount:       dec(tt.newAmount),
				Level:        "ICT 100",
				AcademicYear: "2024/2025",
			})
			require.NoError(t, err)

			dues := f.assignments(t, student.ID)
			require.Len(t, dues, 1)
			assertDec(t, tt.wantBalance, dues[0].Balance)
			assert.Equal(t, tt.wantStatus, dues[0].Status)
			f.assertNoDrift(t)
		})
	}
}

func TestUpdateDue_LevelChangeAssignsNewlyMatchingStudents(t *testing.T) {
	f := newFixture(t)

	old := f.student(t, "old", "ICT 100")
	fresh := f.student(t, "fresh", "ICT 200")
	due := f.due(t, "Fees", "80", "ICT 100")

	_, err := f.svc.UpdateDue(f.ctx, due.ID, ledger.DueInput{
		Title:        "Fees",
		Amount:       dec("80"),
		Level:        "ICT 200",
		AcademicYear: "2024/2025",
	})
	require.NoError(t, err)

	// Existing assignments are not withdrawn when the due's level moves.
	assert.Len(t, f.assignments(t, old.ID), 1)
	assert.Len(t, f.assignments(t, fresh.ID), 1)
}

func TestUpdateDue_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateDue(f.ctx, 42, ledger.DueInput{
		Title:        "x",
		Amount:       dec("1"),
		Level:        "ICT 100",
		AcademicYear: "2024/2025",
	})
	assert.ErrorIs(t, err, ledger.ErrDueNotFound)
}

func TestCreateDue_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    ledger.DueInput
		field string
	}{
		{"blank title", ledger.DueInput{Title: "  ", Amount: dec("10"), Level: "ICT 100", AcademicYear: "2024/2025"}, "title"},
		{"zero amount", ledger.DueInput{Title: "Fees", Amount: dec("0"), Level: "ICT 100", AcademicYear: "2024/2025"}, "amount"},
		{"negative amount", ledger.DueInput{Title: "Fees", Amount: dec("-5"), Level: "ICT 100", AcademicYear: "2024/2025"}, "amount"},
		{"blank level", ledger.DueInput{Title: "Fees", Amount: dec("10"), Level: "", AcademicYear: "2024/2025"}, "level"},
		{"blank academic year", ledger.DueInput{Title: "Fees", Amount: dec("10"), Level: "ICT 100"}, "academic_year"},
		{"sub-cent amount", ledger.DueInput{Title: "Fees", Amount: dec("0.001"), Level: "ICT 100", AcademicYear: "2024/2025"}, "amount"},
		{"amount beyond column range", ledger.DueInput{Title: "Fees", Amount: dec("100000000000"), Level: "ICT 100", AcademicYear: "2024/2025"}, "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.CreateDue(f.ctx, tt.in)

			var vErr *validate.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			var fields []string
			for _, fe := range vErr.Fields {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)

			dues, err := f.svc.ListDues(f.ctx, ledger.DueFilter{})
			require.NoError(t, err)
			assert.Empty(t, dues)
		})
	}
}

func TestDeleteDue_KeepsPayments(t *testing.T) {
	f := newFixture(t)

	due := f.due(t, "Excursion", "300", "ICT 300")
	keep := f.due(t, "Dues", "50", "ICT 300")
	student := f.student(t, "yaw", "ICT 300")
	f.pay(t, student.ID, due.ID, "100", "REF-1")

	require.NoError(t, f.svc.DeleteDue(f.ctx, due.ID))

	dues := f.assignments(t, student.ID)
	require.Len(t, dues, 1)
	assert.Equal(t, keep.ID, dues[0].DueID)

	payments, err := f.svc.ListPayments(f.ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, due.ID, payments[0].DueID)
	assert.Empty(t, payments[0].DueTitle)

	_, err = f.svc.GetDue(f.ctx, due.ID)
	assert.ErrorIs(t, err, ledger.ErrDueNotFound)
	assert.ErrorIs(t, f.svc.DeleteDue(f.ctx, due.ID), ledger.ErrDueNotFound)
}

func TestRecordPayment_Overpayment(t *testing.T) {
	f := newFixture(t)

	due := f.due(t, "Fees", "100", "ICT 100")
	student := f.student(t, "s", "ICT 100")

	receipt := f.pay(t, student.ID, due.ID, "150", "REF-1")
	assertDec(t, "-50", receipt.StudentDue.Balance)
	assertDec(t, "150", receipt.StudentDue.AmountPaid)
	assert.Equal(t, ledger.StatusPaid, receipt.StudentDue.Status)
	f.assertNoDrift(t)
}

func TestRecordPayment_DuplicateReferenceLeavesBalanceUntouched(t *testing.T) {
	f := newFixture(t)

	due := f.due(t, "Fees", "500", "ICT 100")
	student := f.student(t, "s", "ICT 100")
	f.pay(t, student.ID, due.ID, "100", "REF-1")

	_, err := f.svc.RecordPayment(f.ctx, ledger.PaymentInput{
		StudentID: student.ID,
		DueID:     due.ID,
		Amount:    dec("200"),
		Reference: "REF-1",
	})
	assert.ErrorIs(t, err, ledger.ErrDuplicateReference)

	dues := f.assignments(t, student.ID)
	require.Len(t, dues, 1)
	assertDec(t, "100", dues[0].AmountPaid)
	assertDec(t, "400", dues[0].Balance)
	f.assertNoDrift(t)
}

func TestRecordPayment_Rejections(t *testing.T) {
	f := newFixture(t)

	due := f.due(t, "Fees", "500", "ICT 100")
	student := f.student(t, "s", "ICT 100")
	other := f.student(t, "o", "ICT 400")

	t.Run("not assigned", func(t *testing.T) {
		_, err := f.svc.RecordPayment(f.ctx, ledger.PaymentInput{
			StudentID: other.ID, DueID: due.ID, Amount: dec("10"), Reference: "R-a",
		})
		assert.ErrorIs(t, err, ledger.ErrStudentDueNotFound)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := f.svc.RecordPayment(f.ctx, ledger.PaymentInput{
			StudentID: student.ID, DueID: due.ID, Amount: dec("0"), Reference: "R-b",
		})
		var vErr *validate.ValidationError
		assert.True(t, errors.As(err, &vErr))
	})

	for _, amount := range []string{"0.004", "0.015", "10.005"} {
		t.Run("sub-cent amount "+amount, func(t *testing.T) {
			_, err := f.svc.RecordPayment(f.ctx, ledger.PaymentInput{
				StudentID: student.ID, DueID: due.ID, Amount: dec(amount), Reference: "R-" + amount,
			})
			var vErr *validate.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, "amount", vErr.Fields[0].Field)
		})
	}

	t.Run("blank reference", func(t *testing.T) {
		_, err := f.svc.RecordPayment(f.ctx, ledger.PaymentInput{
			StudentID: student.ID, DueID: due.ID, Amount: dec("10"), Reference: " ",
		})
		var vErr *validate.ValidationError
		assert.True(t, errors.As(err, &vErr))
	})

	payments, err := f.svc.ListPayments(f.ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestAmountPaidMatchesPaymentLedger(t *testing.T) {
	f := newFixture(t)

	d1 := f.due(t, "Fees", "500", "ICT 100")
	d2 := f.due(t, "Dues", "75.25", "ICT 100")
	student := f.student(t, "s", "ICT 100")

	f.pay(t, student.ID, d1.ID, "120.10", "R1")
	f.pay(t, student.ID, d2.ID, "75.25", "R2")
	f.pay(t, student.ID, d1.ID, "79.90", "R3")

	sums := map[int64]decimal.Decimal{}
	payments, err := f.svc.ListPayments(f.ctx, student.ID)
	require.NoError(t, err)
	for _, p := range payments {
		sums[p.DueID] = sums[p.DueID].Add(p.Amount)
	}

	for _, sd := range f.assignments(t, student.ID) {
		assert.True(t, sums[sd.DueID].Equal(sd.AmountPaid), "due %d", sd.DueID)
		assert.True(t, sd.DueAmount.Sub(sd.AmountPaid).Equal(sd.Balance), "due %d", sd.DueID)
	}
	f.assertNoDrift(t)
}

func TestUpdateStudentLevel_RebuildsAssignments(t *testing.T) {
	f := newFixture(t)

	ict2 := f.due(t, "ICT 200 Fees", "500", "ICT 200")
	ict3 := f.due(t, "ICT 300 Fees", "600", "ICT 300")
	student := f.student(t, "s", "ICT 200")
	f.pay(t, student.ID, ict2.ID, "200", "R1")

	updated, err := f.svc.UpdateStudentLevel(f.ctx, student.ID, "ICT 300")
	require.NoError(t, err)
	assert.Equal(t, "ICT 300", updated.Level)

	dues := f.assignments(t, student.ID)
	require.Len(t, dues, 1)
	assert.Equal(t, ict3.ID, dues[0].DueID)
	assert.Equal(t, ledger.StatusNotPaid, dues[0].Status)

	payments, err := f.svc.ListPayments(f.ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	// Moving back picks the earlier payment up again.
	_, err = f.svc.UpdateStudentLevel(f.ctx, student.ID, "ICT 200")
	require.NoError(t, err)

	dues = f.assignments(t, student.ID)
	require.Len(t, dues, 1)
	assert.Equal(t, ict2.ID, dues[0].DueID)
	assertDec(t, "200", dues[0].AmountPaid)
	assertDec(t, "300", dues[0].Balance)
	assert.Equal(t, ledger.StatusPartial, dues[0].Status)
	f.assertNoDrift(t)
}

func TestUpdateStudentLevel_LengthCountsCharacters(t *testing.T) {
	f := newFixture(t)

	accented := strings.Repeat("é", 30)
	student := f.student(t, "s", accented)
	assert.Equal(t, accented, student.Level)

	updated, err := f.svc.UpdateStudentLevel(f.ctx, student.ID, strings.Repeat("è", 50))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("è", 50), updated.Level)

	_, err = f.svc.UpdateStudentLevel(f.ctx, student.ID, strings.Repeat("è", 51))
	var vErr *validate.ValidationError
	require.True(t, errors.As(err, &vErr), "got %v", err)
	assert.Equal(t, "level", vErr.Fields[0].Field)
}

func TestUpdateStudentLevel_SameLevelKeepsAssignments(t *testing.T) {
	f := newFixture(t)

	due := f.due(t, "Fees", "500", "ICT 200")
	student := f.student(t, "s", "ICT 200")
	before := f.assignments(t, student.ID)
	require.Len(t, before, 1)

	updated, err := f.svc.UpdateStudentLevel(f.ctx, student.ID, " ict 200")
	require.NoError(t, err)
	assert.Equal(t, "ict 200", updated.Level)

	after := f.assignments(t, student.ID)
	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, due.ID, after[0].DueID)
}

func TestUpdateStudentLevel_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateStudentLevel(f.ctx, 7, "ICT 100")
	assert.ErrorIs(t, err, ledger.ErrStudentNotFound)
}

func TestCreateStudent_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.student(t, "s", "ICT 100")

	_, err := f.svc.CreateStudent(f.ctx, ledger.StudentInput{Name: "again", Email: "S@dept.example.edu"})
	assert.ErrorIs(t, err, ledger.ErrDuplicateEmail)
}

func TestDeleteStudent_Cascades(t *testing.T) {
	f := newFixture(t)

	due := f.due(t, "Fees", "500", "ICT 100")
	student := f.student(t, "s", "ICT 100")
	f.pay(t, student.ID, due.ID, "100", "R1")

	require.NoError(t, f.svc.DeleteStudent(f.ctx, student.ID))

	_, err := f.svc.StudentSummary(f.ctx, student.ID)
	assert.ErrorIs(t, err, ledger.ErrStudentNotFound)

	assignments, err := f.svc.ListDueAssignments(f.ctx, due.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)

	_, err = f.svc.GetPaymentByReference(f.ctx, "R1")
	assert.ErrorIs(t, err, ledger.ErrPaymentNotFound)

	assert.ErrorIs(t, f.svc.DeleteStudent(f.ctx, student.ID), ledger.ErrStudentNotFound)
}

func TestStudentSummary(t *testing.T) {
	f := newFixture(t, ledger.WithRecentPayments(2))

	fees := f.due(t, "Fees", "500", "ICT 100")
	dues := f.due(t, "Dues", "100", "ICT 100")
	f.due(t, "Trip", "250", "ICT 100")
	student := f.student(t, "s", "ICT 100")

	f.pay(t, student.ID, fees.ID, "200", "R1")
	f.pay(t, student.ID, dues.ID, "60", "R2")
	f.pay(t, student.ID, dues.ID, "40", "R3")

	summary, err := f.svc.StudentSummary(f.ctx, student.ID)
	require.NoError(t, err)

	assertDec(t, "850", summary.TotalDues)
	assertDec(t, "300", summary.TotalPaid)
	assertDec(t, "550", summary.TotalBalance)
	assert.Equal(t, 1, summary.PaidCount)
	assert.Equal(t, 1, summary.PartialCount)
	assert.Equal(t, 1, summary.UnpaidCount)
	assert.Len(t, summary.Dues, 3)

	require.Len(t, summary.RecentPayments, 2)
	assert.Equal(t, "R3", summary.RecentPayments[0].Reference)
	assert.Equal(t, "R2", summary.RecentPayments[1].Reference)
	assert.Equal(t, "Dues", summary.RecentPayments[0].DueTitle)
}

func TestStudentSummary_NoDues(t *testing.T) {
	f := newFixture(t)
	student := f.student(t, "s", "")

	summary, err := f.svc.StudentSummary(f.ctx, student.ID)
	require.NoError(t, err)
	assert.True(t, summary.TotalBalance.IsZero())
	assert.NotNil(t, summary.Dues)
	assert.NotNil(t, summary.RecentPayments)
}

func TestAllStudentSummaries_SortedByBalanceDescending(t *testing.T) {
	f := newFixture(t)

	d1 := f.due(t, "Fees", "500", "ICT 100")
	paidUp := f.student(t, "paid", "ICT 100")
	owing := f.student(t, "owing", "ICT 100")
	half := f.student(t, "half", "ICT 100")

	f.pay(t, paidUp.ID, d1.ID, "500", "R1")
	f.pay(t, half.ID, d1.ID, "250", "R2")

	summaries, err := f.svc.AllStudentSummaries(f.ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	var balances []string
	var ids []int64
	for _, s := range summaries {
		balances = append(balances, s.TotalBalance.String())
		ids = append(ids, s.Student.ID)
	}
	assert.Equal(t, []string{"500", "250", "0"}, balances)
	assert.Equal(t, []int64{owing.ID, half.ID, paidUp.ID}, ids)
}

func TestAudit_ReportsDrift(t *testing.T) {
	f := newFixture(t)

	due := f.due(t, "Fees", "500", "ICT 100")
	student := f.student(t, "s", "ICT 100")
	receipt := f.pay(t, student.ID, due.ID, "100", "R1")

	f.store.Corrupt(receipt.StudentDue.ID, dec("0"), dec("500"), ledger.StatusNotPaid)

	drifts, err := f.svc.Audit(f.ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	d := drifts[0]
	assert.Equal(t, receipt.StudentDue.ID, d.StudentDueID)
	assertDec(t, "100", d.LedgerAmountPaid)
	assertDec(t, "400", d.ExpectedBalance)
	assert.Equal(t, ledger.StatusPartial, d.ExpectedStatus)
}

func TestNewPaymentReference_IsUnique(t *testing.T) {
	f := newFixture(t)

	a := f.svc.NewPaymentReference()
	b := f.svc.NewPaymentReference()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^PAY-[0-9a-f-]{36}$`, a)
}
