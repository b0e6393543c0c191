package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"handicapper/internal/models"
	"handicapper/pkg/apperrors"
)

func TestPickInteractionRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate like", func(mt *mtest.T) {
		repo := NewPickInteractionRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		err := repo.Create(context.Background(), &models.PickInteraction{
			PickID: primitive.NewObjectID(),
			UserID: "u1",
			Type:   models.InteractionLike,
		})

		assert.ErrorIs(mt, err, apperrors.ErrAlreadyExists)
	})

	mt.Run("share", func(mt *mtest.T) {
		repo := NewPickInteractionRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		interaction := &models.PickInteraction{PickID: primitive.NewObjectID(), UserID: "u1", Type: models.InteractionShare}
		err := repo.Create(context.Background(), interaction)

		assert.NoError(mt, err)
		assert.False(mt, interaction.ID.IsZero())
	})
}
