package interfaces

import (
	"context"

	"handicapper/internal/models"
)

type ChatRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	// ListConversation returns messages oldest first, the most recent limit.
	ListConversation(ctx context.Context, conversationID string, limit int) ([]*models.ChatMessage, error)
	ListConversations(ctx context.Context, participantID string) ([]*models.ConversationSummary, error)
}
