package ledger

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// StudentSummary totals one student's dues, payments and balances.
func (s *Service) StudentSummary(ctx context.Context, studentID int64) (*StudentSummary, error) {
	student, err := s.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, student)
}

// AllStudentSummaries summarizes every student, largest balance first.
// Students with equal balances are ordered by ID.
func (s *Service) AllStudentSummaries(ctx context.Context) ([]*StudentSummary, error) {
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]*StudentSummary, 0, len(students))
	for _, student := range students {
		summary, err := s.summarize(ctx, student)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if c := a.TotalBalance.Cmp(b.TotalBalance); c != 0 {
			return c > 0
		}
		return a.Student.ID < b.Student.ID
	})
	return summaries, nil
}

func (s *Service) summarize(ctx context.Context, student *Student) (*StudentSummary, error) {
	dues, err := s.store.ListStudentDuesByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListPaymentsByStudent(ctx, student.ID, s.recentPayments)
	if err != nil {
		return nil, err
	}

	summary := &StudentSummary{
		Student:        student,
		TotalDues:      decimal.Zero,
		TotalPaid:      decimal.Zero,
		TotalBalance:   decimal.Zero,
		Dues:           dues,
		RecentPayments: payments,
	}
	if summary.Dues == nil {
		summary.Dues = []*StudentDue{}
	}
	if summary.RecentPayments == nil {
		summary.RecentPayments = []*Payment{}
	}

	for _, sd := range dues {
		summary.TotalDues = summary.TotalDues.Add(sd.DueAmount)
		summary.TotalPaid = summary.TotalPaid.Add(sd.AmountPaid)
		summary.TotalBalance = summary.TotalBalance.Add(sd.Balance)
		switch sd.Status {
		case StatusPaid:
			summary.PaidCount++
		case StatusPartial:
			summary.PartialCount++
		default:
			summary.UnpaidCount++
		}
	}
	return summary, nil
}
