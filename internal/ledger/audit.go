package ledger

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// Audit compares every StudentDue with the payment ledger and reports the
// rows whose amount paid, balance or status disagree with it. Nothing is
// written.
func (s *Service) Audit(ctx context.Context) ([]Drift, error) {
	sums, err := s.store.SumPaymentsByPair(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := s.store.ListAllStudentDues(ctx)
	if err != nil {
		return nil, err
	}

	drifts := []Drift{}
	for _, sd := range assignments {
		expected := StudentDue{AmountPaid: sums[PairKey{StudentID: sd.StudentID, DueID: sd.DueID}]}
		expected.Reconcile(sd.DueAmount)

		if sd.AmountPaid.Equal(expected.AmountPaid) &&
			sd.Balance.Equal(expected.Balance) &&
			sd.Status == expected.Status {
			continue
		}
		drifts = append(drifts, Drift{
			StudentDueID:     sd.ID,
			StudentID:        sd.StudentID,
			DueID:            sd.DueID,
			StoredAmountPaid: sd.AmountPaid,
			LedgerAmountPaid: expected.AmountPaid,
			StoredBalance:    sd.Balance,
			ExpectedBalance:  expected.Balance,
			StoredStatus:     sd.Status,
			ExpectedStatus:   expected.Status,
		})
	}

	sort.Slice(drifts, func(i, j int) bool { return drifts[i].StudentDueID < drifts[j].StudentDueID })

	if len(drifts) > 0 {
		s.log.Warn("ledger drift detected", zap.Int("rows", len(drifts)), zap.Int("checked", len(assignments)))
	}
	return drifts, nil
}
