package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"handicapper/pkg/apperrors"
)

func reviewDoc(id primitive.ObjectID, rating int, comment string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "user_id", Value: "u1"},
		{Key: "handicapper_id", Value: "h1"},
		{Key: "user_name", Value: "Pat"},
		{Key: "rating", Value: rating},
		{Key: "comment", Value: comment},
		{Key: "created_at", Value: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestReviewRepository_GetByUserAndHandicapper(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.reviews", mtest.FirstBatch,
			reviewDoc(id, 4, "Solid reads on totals")))

		review, err := repo.GetByUserAndHandicapper(context.Background(), "u1", "h1")

		require.NoError(mt, err)
		assert.Equal(mt, id, review.ID)
		assert.Equal(mt, 4, review.Rating)
		assert.Equal(mt, review.CreatedAt, review.UpdatedAt)
	})

	mt.Run("no match is not found", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.reviews", mtest.FirstBatch))

		review, err := repo.GetByUserAndHandicapper(context.Background(), "u1", "h1")

		assert.Nil(mt, review)
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})

	mt.Run("query failure is not a not found", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 91, Message: "shutdown in progress"}))

		_, err := repo.GetByUserAndHandicapper(context.Background(), "u1", "h1")

		require.Error(mt, err)
		assert.False(mt, apperrors.IsNotFound(err))
	})
}

func TestReviewRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns id and timestamps", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		review := reviewFixture()
		require.NoError(mt, repo.Create(context.Background(), review))

		assert.False(mt, review.ID.IsZero())
		assert.False(mt, review.CreatedAt.IsZero())
		assert.False(mt, review.UpdatedAt.IsZero())
	})

	mt.Run("write failure", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 121, Message: "validation failed"}))

		err := repo.Create(context.Background(), reviewFixture())

		assert.ErrorContains(mt, err, "failed to create review")
	})
}

func TestReviewRepository_UpdateContent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns updated document", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: reviewDoc(id, 5, "Actually great, updating my take")},
		})

		review, err := repo.UpdateContent(context.Background(), id, 5, "Actually great, updating my take")

		require.NoError(mt, err)
		assert.Equal(mt, id, review.ID)
		assert.Equal(mt, 5, review.Rating)
	})

	mt.Run("missing review", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		_, err := repo.UpdateContent(context.Background(), primitive.NewObjectID(), 5, "Actually great, updating my take")

		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})
}

func TestReviewRepository_ListByHandicapper(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes all", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.reviews", mtest.FirstBatch,
			reviewDoc(primitive.NewObjectID(), 5, "Great card this weekend"),
			reviewDoc(primitive.NewObjectID(), 3, "Decent picks, mixed results"),
		))

		reviews, err := repo.ListByHandicapper(context.Background(), "h1", 0)

		require.NoError(mt, err)
		require.Len(mt, reviews, 2)
		assert.Equal(mt, 5, reviews[0].Rating)
		assert.Equal(mt, 3, reviews[1].Rating)
	})

	mt.Run("empty", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.reviews", mtest.FirstBatch))

		reviews, err := repo.ListByHandicapper(context.Background(), "h1", 20)

		require.NoError(mt, err)
		assert.Empty(mt, reviews)
		assert.NotNil(mt, reviews)
	})
}
