package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"handicapper/internal/models"
)

type PickRepository interface {
	Create(ctx context.Context, pick *models.Pick) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Pick, error)

	// List returns picks matching filter, newest first.
	List(ctx context.Context, filter models.PickFilter) ([]*models.Pick, error)
	ListByHandicappers(ctx context.Context, handicapperIDs []string, limit int) ([]*models.Pick, error)

	// UpdateStatus overwrites status and result without checking the
	// current value.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.PickStatus, result models.PickResult) error
	SetCounter(ctx context.Context, id primitive.ObjectID, field string, value int64) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type PickInteractionRepository interface {
	Create(ctx context.Context, interaction *models.PickInteraction) error
	Count(ctx context.Context, pickID primitive.ObjectID, kind models.InteractionType) (int64, error)
	Exists(ctx context.Context, pickID primitive.ObjectID, userID string, kind models.InteractionType) (bool, error)
}
