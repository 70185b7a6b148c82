package db

import (
	"context"
	"fmt"

	"github.com/leemorgale/sms-chat/internal/models"
)

// MessageRepository stores the append-only group message log
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByGroup(ctx context.Context, groupID string, limit int) ([]*models.Message, error)
}

type messageRepository struct {
	db *Database
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *Database) MessageRepository {
	return &messageRepository{db: db}
}

// Create appends a message
func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if message == nil {
		return fmt.Errorf("message cannot be nil")
	}

	query := r.db.rebind(`
		INSERT INTO messages (id, content, user_id, group_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)

	_, err := r.db.db.ExecContext(ctx, query,
		message.ID,
		message.Content,
		message.UserID,
		message.GroupID,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// ListByGroup returns up to limit messages, newest first, with author names
func (r *messageRepository) ListByGroup(ctx context.Context, groupID string, limit int) ([]*models.Message, error) {
	if groupID == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}
	if limit <= 0 {
		limit = 50
	}

	query := r.db.rebind(`
		SELECT m.id, m.content, m.user_id, m.group_id, m.created_at, u.name
		FROM messages m
		LEFT JOIN users u ON u.id = m.user_id
		WHERE m.group_id = ?
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT ?
	`)

	rows, err := r.db.db.QueryContext(ctx, query, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		message := &models.Message{}
		err := rows.Scan(
			&message.ID,
			&message.Content,
			&message.UserID,
			&message.GroupID,
			&message.CreatedAt,
			&message.UserName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}
