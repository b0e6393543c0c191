package interfaces

import (
	"context"

	"handicapper/internal/models"
)

type NotificationTokenRepository interface {
	// Upsert keeps one token per (user, device).
	Upsert(ctx context.Context, token *models.NotificationToken) error
	ListByUser(ctx context.Context, userID string) ([]*models.NotificationToken, error)
	ListByUsers(ctx context.Context, userIDs []string) ([]*models.NotificationToken, error)
	DeleteByToken(ctx context.Context, token string) error
}
