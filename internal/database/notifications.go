package database

import (
	"context"
	"fmt"
)

const defaultNotificationLimit = 20

func (db *PgRepository) CreateNotification(ctx context.Context, n Notification) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO notifications (id, user_id, title, message, type, related_id, related_type, is_read, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		n.Id,
		n.UserId,
		nullString(n.Title),
		n.Message,
		n.Type,
		nullString(n.RelatedId),
		nullString(n.RelatedType),
		n.IsRead,
		n.CreatedAt,
	)

	return classify(err)
}

// ListNotifications returns the newest notifications first. Unless All is
// set, the feed holds broadcasts plus the ones addressed to UserId.
func (db *PgRepository) ListNotifications(ctx context.Context, filter NotificationFilter) ([]Notification, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultNotificationLimit
	}

	query := "SELECT id, user_id, COALESCE(title, ''), message, type, COALESCE(related_id, ''), " +
		"COALESCE(related_type, ''), is_read, created_at FROM notifications"
	args := []any{}
	if !filter.All {
		args = append(args, filter.UserId)
		query += " WHERE user_id IS NULL OR user_id = $1"
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(
			&n.Id,
			&n.UserId,
			&n.Title,
			&n.Message,
			&n.Type,
			&n.RelatedId,
			&n.RelatedType,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func (db *PgRepository) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, "UPDATE notifications SET is_read = TRUE WHERE id = $1", id)
	if err != nil {
		return classify(err)
	}

	return expectAffected(res)
}
