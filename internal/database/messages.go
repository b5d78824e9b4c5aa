package database

import (
	"context"
	"fmt"
)

func (db *PgRepository) CreateMessage(ctx context.Context, msg Message) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO messages (id, user_id, sender, text, is_read, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6)",
		msg.Id,
		msg.UserId,
		msg.Sender,
		msg.Text,
		msg.IsRead,
		msg.CreatedAt,
	)

	return classify(err)
}

// ListMessages returns a user's support conversation, oldest first.
func (db *PgRepository) ListMessages(ctx context.Context, userId string) ([]Message, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, user_id, sender, text, is_read, created_at FROM messages "+
			"WHERE user_id = $1 ORDER BY created_at ASC, id ASC",
		userId,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.Id,
			&m.UserId,
			&m.Sender,
			&m.Text,
			&m.IsRead,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// MarkMessagesRead marks every reply sent to the user as read.
func (db *PgRepository) MarkMessagesRead(ctx context.Context, userId string) error {
	_, err := db.conn.ExecContext(ctx,
		"UPDATE messages SET is_read = TRUE WHERE user_id = $1 AND sender <> 'user' AND is_read = FALSE",
		userId,
	)

	return classify(err)
}
