package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fkhayef/duesledger/internal/ledger"
	"github.com/fkhayef/duesledger/internal/ledger/memory"
	"github.com/fkhayef/duesledger/pkg/middleware"
)

type fakeStore struct {
	items []*Notification
}

func (f *fakeStore) Create(_ context.Context, in *Notification) (*Notification, error) {
	n := *in
	n.ID = int64(len(f.items) + 1)
	n.CreatedAt = time.Now()
	f.items = append(f.items, &n)
	return &n, nil
}

func (f *fakeStore) matching(recipientID int64, filter Filter) []*Notification {
	matched := []*Notification{}
	for _, n := range f.items {
		if n.RecipientID != recipientID {
			continue
		}
		if filter.EntityType != "" && n.EntityType != filter.EntityType {
			continue
		}
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		matched = append(matched, n)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return matched
}

func (f *fakeStore) List(_ context.Context, recipientID int64, filter Filter, limit, offset int) ([]*Notification, int, error) {
	matched := f.matching(recipientID, filter)
	total := len(matched)
	if offset >= total {
		return []*Notification{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (f *fakeStore) MarkRead(_ context.Context, recipientID, id int64) (bool, error) {
	for _, n := range f.items {
		if n.ID == id && n.RecipientID == recipientID {
			n.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) MarkAllRead(_ context.Context, recipientID int64, entityType EntityType) (int64, error) {
	var marked int64
	for _, n := range f.matching(recipientID, Filter{EntityType: entityType, UnreadOnly: true}) {
		n.IsRead = true
		marked++
	}
	return marked, nil
}

func (f *fakeStore) UnreadCounts(_ context.Context, recipientID int64) (map[EntityType]int, error) {
	counts := map[EntityType]int{}
	for _, n := range f.matching(recipientID, Filter{UnreadOnly: true}) {
		counts[n.EntityType]++
	}
	return counts, nil
}

func TestParseEntityType(t *testing.T) {
	tests := []struct {
		in   string
		want EntityType
		ok   bool
	}{
		{"", "", true},
		{"due", EntityDue, true},
		{" Payment ", EntityPayment, true},
		{"expense", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseEntityType(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLedgerEventsReachInbox(t *testing.T) {
	ctx := context.Background()
	fs := &fakeStore{}
	notifier := &Service{repo: fs}
	svc := ledger.NewService(memory.NewStore(), zap.NewNop(), ledger.WithNotifier(notifier))

	student, err := svc.CreateStudent(ctx, ledger.StudentInput{Name: "Ama", Email: "ama@x.edu", Level: "ICT 300"})
	require.NoError(t, err)
	due, err := svc.CreateDue(ctx, ledger.DueInput{Title: "Semester Fees", Amount: decimal.NewFromInt(500), Level: "ICT 300", AcademicYear: "2024/2025"})
	require.NoError(t, err)
	receipt, err := svc.RecordPayment(ctx, ledger.PaymentInput{StudentID: student.ID, DueID: due.ID, Amount: decimal.NewFromInt(200), Reference: "PAY-1"})
	require.NoError(t, err)

	inbox, total, err := notifier.List(ctx, student.ID, Filter{}, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 2, total)

	// newest first
	assert.Equal(t, EntityPayment, inbox[0].EntityType)
	assert.Equal(t, receipt.Payment.ID, inbox[0].EntityID)
	assert.Equal(t, "Payment of 200.00 received for Semester Fees (ref PAY-1). Balance: 300.00, status: Partial", inbox[0].Message)

	assert.Equal(t, EntityDue, inbox[1].EntityType)
	assert.Equal(t, due.ID, inbox[1].EntityID)
	assert.Equal(t, "New due: Semester Fees (2024/2025) of 500.00", inbox[1].Message)

	dues, total, err := notifier.List(ctx, student.ID, Filter{EntityType: EntityDue}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, due.ID, dues[0].EntityID)
}

func TestUnreadCountsAndMarkRead(t *testing.T) {
	ctx := context.Background()
	fs := &fakeStore{}
	svc := &Service{repo: fs}
	for _, n := range []*Notification{
		{RecipientID: 7, EntityType: EntityDue, EntityID: 1},
		{RecipientID: 7, EntityType: EntityDue, EntityID: 2},
		{RecipientID: 7, EntityType: EntityPayment, EntityID: 9},
		{RecipientID: 8, EntityType: EntityDue, EntityID: 1},
	} {
		_, err := fs.Create(ctx, n)
		require.NoError(t, err)
	}

	counts, err := svc.UnreadCounts(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Total)
	assert.Equal(t, map[EntityType]int{EntityDue: 2, EntityPayment: 1}, counts.ByType)

	// someone else's notification looks missing
	assert.ErrorIs(t, svc.MarkAsRead(ctx, 7, 4), ErrNotificationNotFound)
	assert.ErrorIs(t, svc.MarkAsRead(ctx, 7, 99), ErrNotificationNotFound)
	require.NoError(t, svc.MarkAsRead(ctx, 7, 3))

	marked, err := svc.MarkAllAsRead(ctx, 7, EntityDue)
	require.NoError(t, err)
	assert.EqualValues(t, 2, marked)

	counts, err = svc.UnreadCounts(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, counts.Total)
	assert.Equal(t, map[EntityType]int{EntityDue: 0, EntityPayment: 0}, counts.ByType)

	counts, err = svc.UnreadCounts(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.ByType[EntityDue])
}

func TestHandler(t *testing.T) {
	ctx := context.Background()
	fs := &fakeStore{}
	for i := int64(1); i <= 3; i++ {
		_, err := fs.Create(ctx, &Notification{RecipientID: 7, EntityType: EntityDue, EntityID: i, Message: "msg"})
		require.NoError(t, err)
	}
	_, err := fs.Create(ctx, &Notification{RecipientID: 7, EntityType: EntityPayment, EntityID: 1, Message: "paid"})
	require.NoError(t, err)
	h := NewHandler(&Service{repo: fs}, zap.NewNop()).Routes()

	serve := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req = req.WithContext(middleware.WithIdentity(context.Background(), 7, middleware.RoleStudent))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := serve(http.MethodPost, "/1/read")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(http.MethodGet, "/unread-count")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data UnreadCounts `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Data.Total)
	assert.Equal(t, 2, body.Data.ByType[EntityDue])
	assert.Equal(t, 1, body.Data.ByType[EntityPayment])

	rec = serve(http.MethodGet, "/?type=due&unread_only=true&per_page=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_pages":2`)
	assert.Contains(t, rec.Body.String(), `"entity_type":"DUE"`)

	rec = serve(http.MethodGet, "/?type=expense")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(http.MethodPost, "/read-all?type=payment")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"marked":1`)

	rec = serve(http.MethodPost, "/99/read")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
