package dao

import (
	"context"
	"fmt"

	"github.com/lendops/query-management-api/internal/database"
	"github.com/lendops/query-management-api/internal/models"
)

// ChatDAO handles database operations for chat messages
type ChatDAO struct {
	db *database.DB
}

// NewChatDAO creates a new ChatDAO instance
func NewChatDAO(db *database.DB) *ChatDAO {
	return &ChatDAO{db: db}
}

// Create inserts a new chat message
func (dao *ChatDAO) Create(ctx context.Context, msg *models.ChatMessage) error {
	query := `
		INSERT INTO CHAT_MESSAGE (
			MESSAGE_ID, QUERY_ID, MESSAGE, SENDER, SENDER_ROLE, TEAM, SENT_AT
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := dao.db.ExecContext(
		ctx,
		query,
		msg.MessageID,
		msg.QueryID,
		msg.Message,
		msg.Sender,
		msg.SenderRole,
		msg.Team,
		msg.SentAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}

	return nil
}

// ListByQueryID retrieves the full thread for a sub-query, oldest first
func (dao *ChatDAO) ListByQueryID(ctx context.Context, queryID string) ([]models.ChatMessage, error) {
	query := `
		SELECT MESSAGE_ID, QUERY_ID, MESSAGE, SENDER, SENDER_ROLE, TEAM, SENT_AT
		FROM CHAT_MESSAGE
		WHERE QUERY_ID = ?
		ORDER BY SENT_AT ASC, MESSAGE_ID ASC
	`

	messages := []models.ChatMessage{}
	err := dao.db.SelectContext(ctx, &messages, query, queryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}

	return messages, nil
}

// GetRecentDuplicate finds the newest message on the thread with the same
// sender and text at or after the cutoff. Returns nil when none exists.
func (dao *ChatDAO) GetRecentDuplicate(ctx context.Context, queryID, sender, message string, cutoff int64) (*models.ChatMessage, error) {
	query := `
		SELECT MESSAGE_ID, QUERY_ID, MESSAGE, SENDER, SENDER_ROLE, TEAM, SENT_AT
		FROM CHAT_MESSAGE
		WHERE QUERY_ID = ? AND SENDER = ? AND MESSAGE = ? AND SENT_AT >= ?
		ORDER BY SENT_AT DESC
		LIMIT 1
	`

	messages := []models.ChatMessage{}
	err := dao.db.SelectContext(ctx, &messages, query, queryID, sender, message, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate chat message: %w", err)
	}

	if len(messages) == 0 {
		return nil, nil
	}

	return &messages[0], nil
}
