package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"handicapper/internal/models"
)

// ReviewRepository lookups return an error wrapping apperrors.ErrNotFound
// when nothing matches, and any other error when the query itself failed.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	GetByUserAndHandicapper(ctx context.Context, userID, handicapperID string) (*models.Review, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, rating int, comment string) (*models.Review, error)

	// ListByHandicapper returns reviews newest first. limit <= 0 returns all.
	ListByHandicapper(ctx context.Context, handicapperID string, limit int) ([]*models.Review, error)
}
