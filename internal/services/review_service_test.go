package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"handicapper/internal/models"
	"handicapper/pkg/apperrors"
	"handicapper/pkg/logger"
)

type reviewFixture struct {
	reviews   *mockReviewRepo
	txs       *mockTransactionRepo
	users     *mockUserRepo
	analytics *fakeAnalytics
	service   ReviewService
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		reviews:   &mockReviewRepo{},
		txs:       &mockTransactionRepo{},
		users:     &mockUserRepo{},
		analytics: &fakeAnalytics{},
	}
	f.service = NewReviewService(f.reviews, f.txs, f.users, f.analytics, logger.NewNop())
	return f
}

func notFoundErr() error {
	return apperrors.NotFound("review", "x")
}

var errStore = errors.New("connection reset")

func TestReviewService_CanReview(t *testing.T) {
	ctx := context.Background()

	t.Run("completed purchase", func(t *testing.T) {
		f := newReviewFixture()
		f.txs.On("HasCompletedPurchase", ctx, "u1", "h1").Return(true, nil)
		assert.True(t, f.service.CanReview(ctx, "u1", "h1"))
	})

	t.Run("no purchase", func(t *testing.T) {
		f := newReviewFixture()
		f.txs.On("HasCompletedPurchase", ctx, "u1", "h1").Return(false, nil)
		assert.False(t, f.service.CanReview(ctx, "u1", "h1"))
	})

	t.Run("query failure fails closed", func(t *testing.T) {
		f := newReviewFixture()
		f.txs.On("HasCompletedPurchase", ctx, "u1", "h1").Return(false, errStore)
		assert.False(t, f.service.CanReview(ctx, "u1", "h1"))
	})
}

func TestReviewService_GetExistingReview(t *testing.T) {
	ctx := context.Background()
	existing := &models.Review{ID: primitive.NewObjectID(), UserID: "u1", HandicapperID: "h1", Rating: 4}

	t.Run("found", func(t *testing.T) {
		f := newReviewFixture()
		f.reviews.On("GetByUserAndHandicapper", ctx, "u1", "h1").Return(existing, nil)
		assert.Equal(t, existing, f.service.GetExistingReview(ctx, "u1", "h1"))
		assert.True(t, f.service.HasReviewed(ctx, "u1", "h1"))
	})

	t.Run("not found", func(t *testing.T) {
		f := newReviewFixture()
		f.reviews.On("GetByUserAndHandicapper", ctx, "u1", "h1").Return(nil, notFoundErr())
		assert.Nil(t, f.service.GetExistingReview(ctx, "u1", "h1"))
		assert.False(t, f.service.HasReviewed(ctx, "u1", "h1"))
	})

	t.Run("failure degrades to absent", func(t *testing.T) {
		f := newReviewFixture()
		f.reviews.On("GetByUserAndHandicapper", ctx, "u1", "h1").Return(nil, errStore)
		assert.Nil(t, f.service.GetExistingReview(ctx, "u1", "h1"))
		assert.False(t, f.service.HasReviewed(ctx, "u1", "h1"))
	})
}

func TestReviewService_SubmitReview_Validation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		rating  int
		comment string
	}{
		{"rating too low", 0, "Decent picks, mixed results"},
		{"rating too high", 6, "Decent picks, mixed results"},
		{"comment too short after trim", 3, "   short    "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newReviewFixture()
			_, err := f.service.SubmitReview(ctx, &SubmitReviewInput{
				UserID: "u1", HandicapperID: "h1", Rating: tc.rating, Comment: tc.comment,
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

			f.txs.AssertNotCalled(t, "HasCompletedPurchase", mock.Anything, mock.Anything, mock.Anything)
			f.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestReviewService_SubmitReview_NotEligible(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()
	f.txs.On("HasCompletedPurchase", ctx, "u1", "h1").Return(false, nil)

	_, err := f.service.SubmitReview(ctx, &SubmitReviewInput{
		UserID: "u1", HandicapperID: "h1", Rating: 4, Comment: "Great analysis every week",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotEligible)
	f.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.reviews.AssertNotCalled(t, "UpdateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.analytics.Events())
}

func TestReviewService_SubmitReview_CreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()

	f.txs.On("HasCompletedPurchase", ctx, "u1", "h1").Return(true, nil)
	f.users.On("GetByID", ctx, "u1").Return(&models.User{ID: "u1", DisplayName: "Sam"}, nil)

	// First submission: nothing on file yet.
	f.reviews.On("GetByUserAndHandicapper", ctx, "u1", "h1").Return(nil, notFoundErr()).Once()
	stored := &models.Review{}
	f.reviews.On("Create", ctx, mock.AnythingOfType("*models.Review")).
		Run(func(args mock.Arguments) {
			r := args.Get(1).(*models.Review)
			r.ID = primitive.NewObjectID()
			*stored = *r
		}).
		Return(nil).Once()
	f.reviews.On("ListByHandicapper", ctx, "h1", 0).Return([]*models.Review{stored}, nil).Once()
	f.users.On("UpdateReviewStats", ctx, "h1", models.ReviewStats{
		AverageRating:      3,
		TotalReviews:       1,
		RatingDistribution: models.RatingDistribution{Three: 1},
	}).Return(nil).Once()

	created, err := f.service.SubmitReview(ctx, &SubmitReviewInput{
		UserID: "u1", HandicapperID: "h1", Rating: 3, Comment: "  Decent picks, mixed results  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Decent picks, mixed results", created.Comment)
	assert.Equal(t, "Sam", created.UserName)
	assert.False(t, created.ID.IsZero())

	// Second submission: the same review is overwritten.
	f.reviews.On("GetByUserAndHandicapper", ctx, "u1", "h1").Return(stored, nil).Once()
	updated := *stored
	updated.Rating = 5
	updated.Comment = "Actually great, updating my take"
	f.reviews.On("UpdateContent", ctx, stored.ID, 5, "Actually great, updating my take").Return(&updated, nil).Once()
	f.reviews.On("ListByHandicapper", ctx, "h1", 0).Return([]*models.Review{&updated}, nil).Once()
	f.users.On("UpdateReviewStats", ctx, "h1", models.ReviewStats{
		AverageRating:      5,
		TotalReviews:       1,
		RatingDistribution: models.RatingDistribution{Five: 1},
	}).Return(nil).Once()

	second, err := f.service.SubmitReview(ctx, &SubmitReviewInput{
		UserID: "u1", HandicapperID: "h1", Rating: 5, Comment: "Actually great, updating my take",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, second.ID)
	assert.Equal(t, 5, second.Rating)

	f.reviews.AssertNumberOfCalls(t, "Create", 1)
	f.users.AssertExpectations(t)

	events := f.analytics.Events()
	require.Len(t, events, 2)
	assert.Equal(t, models.EventLeaveReview, events[1].Name)
	assert.Equal(t, "h1", events[1].Params["handicapper_id"])
	assert.Equal(t, 5, events[1].Params["rating"])
	assert.Equal(t, len("Actually great, updating my take"), events[1].Params["comment_length"])
}

func TestReviewService_SubmitReview_LookupFailureDoesNotCreate(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()
	f.txs.On("HasCompletedPurchase", ctx, "u1", "h1").Return(true, nil)
	f.reviews.On("GetByUserAndHandicapper", ctx, "u1", "h1").Return(nil, errStore)

	_, err := f.service.SubmitReview(ctx, &SubmitReviewInput{
		UserID: "u1", HandicapperID: "h1", Rating: 4, Comment: "Great analysis every week",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errStore)
	f.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_SubmitReview_StatsWriteFailure(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()
	f.txs.On("HasCompletedPurchase", ctx, "u1", "h1").Return(true, nil)
	f.reviews.On("GetByUserAndHandicapper", ctx, "u1", "h1").Return(nil, notFoundErr())
	f.reviews.On("Create", ctx, mock.Anything).Return(nil)
	f.reviews.On("ListByHandicapper", ctx, "h1", 0).Return([]*models.Review{{Rating: 4}}, nil)
	f.users.On("UpdateReviewStats", ctx, "h1", mock.Anything).Return(errStore)

	_, err := f.service.SubmitReview(ctx, &SubmitReviewInput{
		UserID: "u1", UserName: "Sam", HandicapperID: "h1", Rating: 4, Comment: "Great analysis every week",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errStore)
	f.reviews.AssertCalled(t, "Create", ctx, mock.Anything)
	assert.Empty(t, f.analytics.Events())
}

func TestReviewService_GetReviewStats(t *testing.T) {
	ctx := context.Background()

	t.Run("no reviews", func(t *testing.T) {
		f := newReviewFixture()
		f.reviews.On("ListByHandicapper", ctx, "h1", 0).Return([]*models.Review{}, nil)

		stats, err := f.service.GetReviewStats(ctx, "h1")
		require.NoError(t, err)
		assert.Equal(t, models.ReviewStats{}, *stats)
	})

	t.Run("mean and distribution", func(t *testing.T) {
		f := newReviewFixture()
		var reviews []*models.Review
		for _, r := range []int{5, 5, 4, 3, 5} {
			reviews = append(reviews, &models.Review{Rating: r})
		}
		f.reviews.On("ListByHandicapper", ctx, "h1", 0).Return(reviews, nil)

		stats, err := f.service.GetReviewStats(ctx, "h1")
		require.NoError(t, err)
		assert.InDelta(t, 4.4, stats.AverageRating, 1e-9)
		assert.Equal(t, 5, stats.TotalReviews)
		assert.Equal(t, models.RatingDistribution{Five: 3, Four: 1, Three: 1}, stats.RatingDistribution)
	})
}

func TestReviewService_GetHandicapperReviews_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()
	f.reviews.On("ListByHandicapper", ctx, "h1", 20).Return([]*models.Review{}, nil)

	_, err := f.service.GetHandicapperReviews(ctx, "h1", 0)
	require.NoError(t, err)
	f.reviews.AssertExpectations(t)
}
