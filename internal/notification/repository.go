package notification

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const notificationColumns = `id, recipient_id, entity_type, entity_id, message, is_read, created_at`

// Repository handles notification data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new notification repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanNotification(row interface{ Scan(...interface{}) error }, extra ...interface{}) (*Notification, error) {
	n := &Notification{}
	dest := append([]interface{}{
		&n.ID,
		&n.RecipientID,
		&n.EntityType,
		&n.EntityID,
		&n.Message,
		&n.IsRead,
		&n.CreatedAt,
	}, extra...)
	return n, row.Scan(dest...)
}

// Create stores a notification
func (r *Repository) Create(ctx context.Context, in *Notification) (*Notification, error) {
	query := `
		INSERT INTO notifications (recipient_id, entity_type, entity_id, message)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + notificationColumns

	n, err := scanNotification(r.db.QueryRowContext(ctx, query, in.RecipientID, in.EntityType, in.EntityID, in.Message))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s notification: %w", in.EntityType, err)
	}
	return n, nil
}

// where builds the recipient + filter predicate, numbering placeholders from $1
func where(recipientID int64, f Filter) (string, []interface{}) {
	conds := []string{"recipient_id = $1"}
	args := []interface{}{recipientID}
	if f.EntityType != "" {
		args = append(args, f.EntityType)
		conds = append(conds, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if f.UnreadOnly {
		conds = append(conds, "NOT is_read")
	}
	return strings.Join(conds, " AND "), args
}

// List returns a page of a recipient's inbox, newest first, with the number
// of notifications matching the filter
func (r *Repository) List(ctx context.Context, recipientID int64, f Filter, limit, offset int) ([]*Notification, int, error) {
	cond, args := where(recipientID, f)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER ()
		FROM notifications
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, notificationColumns, cond, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*Notification{}
	total := 0
	for rows.Next() {
		n, err := scanNotification(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// A page past the end has no rows to carry the window count.
	if len(notifications) == 0 && offset > 0 {
		countQuery := `SELECT COUNT(*) FROM notifications WHERE ` + cond
		if err := r.db.QueryRowContext(ctx, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
		}
	}

	return notifications, total, nil
}

// MarkRead marks one of the recipient's notifications read. It reports false
// when the recipient has no such notification.
func (r *Repository) MarkRead(ctx context.Context, recipientID, id int64) (bool, error) {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, recipientID)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkAllRead marks the recipient's unread notifications of one type (or all
// types) read and returns how many changed
func (r *Repository) MarkAllRead(ctx context.Context, recipientID int64, entityType EntityType) (int64, error) {
	cond, args := where(recipientID, Filter{EntityType: entityType, UnreadOnly: true})
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE `+cond, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return res.RowsAffected()
}

// UnreadCounts counts the recipient's unread notifications per entity type
func (r *Repository) UnreadCounts(ctx context.Context, recipientID int64) (map[EntityType]int, error) {
	query := `
		SELECT entity_type, COUNT(*)
		FROM notifications
		WHERE recipient_id = $1 AND NOT is_read
		GROUP BY entity_type
	`

	rows, err := r.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	defer rows.Close()

	counts := map[EntityType]int{}
	for rows.Next() {
		var t EntityType
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("failed to scan unread count: %w", err)
		}
		counts[t] = n
	}
	return counts, rows.Err()
}
