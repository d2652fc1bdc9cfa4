package notification

import (
	"strings"
	"time"
)

// EntityType names the ledger record a notification is about
type EntityType string

const (
	EntityDue     EntityType = "DUE"
	EntityPayment EntityType = "PAYMENT"
)

// ParseEntityType accepts "due" / "payment" in any case. An empty string
// parses to the empty type, which filters nothing.
func ParseEntityType(s string) (EntityType, bool) {
	t := EntityType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case "", EntityDue, EntityPayment:
		return t, true
	}
	return "", false
}

// Notification is one message in a user's inbox, pointing at the due or
// payment it announces
type Notification struct {
	ID          int64      `json:"id"`
	RecipientID int64      `json:"recipient_id"`
	EntityType  EntityType `json:"entity_type"`
	EntityID    int64      `json:"entity_id"`
	Message     string     `json:"message"`
	IsRead      bool       `json:"is_read"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Filter narrows an inbox listing. Zero values match everything.
type Filter struct {
	EntityType EntityType
	UnreadOnly bool
}

// UnreadCounts is the unread badge, broken down by entity type
type UnreadCounts struct {
	Total  int                `json:"unread_count"`
	ByType map[EntityType]int `json:"by_type"`
}
