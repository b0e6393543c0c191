package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"handicapper/internal/aggregation"
	"handicapper/internal/models"
	"handicapper/internal/repositories/interfaces"
	"handicapper/internal/utils"
	"handicapper/internal/validators"
	"handicapper/pkg/apperrors"
	"handicapper/pkg/logger"
	"handicapper/pkg/metrics"
)

type ReviewService interface {
	// Eligibility
	CanReview(ctx context.Context, userID, handicapperID string) bool
	HasReviewed(ctx context.Context, userID, handicapperID string) bool
	GetExistingReview(ctx context.Context, userID, handicapperID string) *models.Review

	// Submission
	SubmitReview(ctx context.Context, input *SubmitReviewInput) (*models.Review, error)
	CreateReview(ctx context.Context, input *SubmitReviewInput) (*models.Review, error)
	UpdateReview(ctx context.Context, existing *models.Review, rating int, comment string) (*models.Review, error)

	// Statistics
	GetHandicapperReviews(ctx context.Context, handicapperID string, limit int) ([]*models.Review, error)
	GetReviewStats(ctx context.Context, handicapperID string) (*models.ReviewStats, error)
	RecomputeHandicapperStats(ctx context.Context, handicapperID string) (*models.ReviewStats, error)
}

type SubmitReviewInput struct {
	UserID        string
	UserName      string
	UserAvatar    string
	HandicapperID string
	Rating        int
	Comment       string
	PurchaseID    string
}

type reviewService struct {
	reviewRepo       interfaces.ReviewRepository
	transactionRepo  interfaces.TransactionRepository
	userRepo         interfaces.UserRepository
	analyticsService AnalyticsService
	logger           *logger.Logger
	now              func() time.Time
}

func NewReviewService(
	reviewRepo interfaces.ReviewRepository,
	transactionRepo interfaces.TransactionRepository,
	userRepo interfaces.UserRepository,
	analyticsService AnalyticsService,
	log *logger.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:       reviewRepo,
		transactionRepo:  transactionRepo,
		userRepo:         userRepo,
		analyticsService: analyticsService,
		logger:           log,
		now:              time.Now,
	}
}

type lookupOutcome int

const (
	lookupFound lookupOutcome = iota
	lookupNotFound
	lookupFailed
)

// classify separates "the query ran and matched nothing" from "the query
// failed". Callers choose their own fallback for each.
func classify(err error) lookupOutcome {
	switch {
	case err == nil:
		return lookupFound
	case apperrors.IsNotFound(err):
		return lookupNotFound
	default:
		return lookupFailed
	}
}

func (s *reviewService) eligibility(ctx context.Context, userID, handicapperID string) (lookupOutcome, error) {
	ok, err := s.transactionRepo.HasCompletedPurchase(ctx, userID, handicapperID)
	if err != nil {
		return lookupFailed, err
	}
	if !ok {
		return lookupNotFound, nil
	}
	return lookupFound, nil
}

func (s *reviewService) existingReview(ctx context.Context, userID, handicapperID string) (*models.Review, lookupOutcome, error) {
	review, err := s.reviewRepo.GetByUserAndHandicapper(ctx, userID, handicapperID)
	outcome := classify(err)
	if outcome != lookupFound {
		return nil, outcome, err
	}
	return review, lookupFound, nil
}

// CanReview is true when the user has a completed purchase from the
// handicapper. A failed query reports false.
func (s *reviewService) CanReview(ctx context.Context, userID, handicapperID string) bool {
	outcome, err := s.eligibility(ctx, userID, handicapperID)
	if outcome == lookupFailed {
		s.logger.WithError(err).
			WithUserID(userID).
			WithHandicapperID(handicapperID).
			Warn("Review eligibility check failed, treating as not eligible")
	}
	return outcome == lookupFound
}

func (s *reviewService) HasReviewed(ctx context.Context, userID, handicapperID string) bool {
	return s.GetExistingReview(ctx, userID, handicapperID) != nil
}

// GetExistingReview returns nil when the user has not reviewed the
// handicapper or when the lookup fails.
func (s *reviewService) GetExistingReview(ctx context.Context, userID, handicapperID string) *models.Review {
	review, outcome, err := s.existingReview(ctx, userID, handicapperID)
	if outcome == lookupFailed {
		s.logger.WithError(err).
			WithUserID(userID).
			WithHandicapperID(handicapperID).
			Warn("Review lookup failed, treating as no review")
	}
	return review
}

// SubmitReview creates the user's review of a handicapper or updates the
// one already on file, then rewrites the handicapper's rating aggregate.
func (s *reviewService) SubmitReview(ctx context.Context, input *SubmitReviewInput) (*models.Review, error) {
	if err := validators.ValidateReviewSubmit(&validators.ReviewSubmitRequest{
		HandicapperID: input.HandicapperID,
		Rating:        input.Rating,
		Comment:       input.Comment,
		PurchaseID:    input.PurchaseID,
	}); err != nil {
		metrics.ReviewsSubmitted.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	if !s.CanReview(ctx, input.UserID, input.HandicapperID) {
		metrics.ReviewsSubmitted.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, apperrors.NotEligible("You can only review handicappers you have purchased from")
	}

	// A failed lookup must not fall through to the create path, or the
	// user could end up with two reviews of the same handicapper.
	existing, outcome, err := s.existingReview(ctx, input.UserID, input.HandicapperID)
	if outcome == lookupFailed {
		return nil, fmt.Errorf("failed to check for existing review: %w", err)
	}

	var review *models.Review
	if existing != nil {
		review, err = s.UpdateReview(ctx, existing, input.Rating, input.Comment)
	} else {
		review, err = s.CreateReview(ctx, input)
	}
	if err != nil {
		return nil, err
	}

	s.analyticsService.LogLeaveReview(ctx, input.UserID, input.HandicapperID, review.Rating, review.Comment)

	return review, nil
}

func (s *reviewService) CreateReview(ctx context.Context, input *SubmitReviewInput) (*models.Review, error) {
	now := s.now()
	review := &models.Review{
		UserID:        input.UserID,
		HandicapperID: input.HandicapperID,
		UserName:      input.UserName,
		UserAvatar:    input.UserAvatar,
		Rating:        input.Rating,
		Comment:       strings.TrimSpace(input.Comment),
		PurchaseID:    input.PurchaseID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.fillAuthor(ctx, review)
	review.Normalize()

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	metrics.ReviewsSubmitted.WithLabelValues(metrics.OutcomeCreated).Inc()

	s.logger.LogReviewEvent(review.HandicapperID, "created", map[string]interface{}{
		"review_id": review.ID.Hex(),
		"user_id":   review.UserID,
		"rating":    review.Rating,
	})

	if _, err := s.RecomputeHandicapperStats(ctx, review.HandicapperID); err != nil {
		return review, err
	}

	return review, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, existing *models.Review, rating int, comment string) (*models.Review, error) {
	review, err := s.reviewRepo.UpdateContent(ctx, existing.ID, rating, strings.TrimSpace(comment))
	if err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	metrics.ReviewsSubmitted.WithLabelValues(metrics.OutcomeUpdated).Inc()

	s.logger.LogReviewEvent(review.HandicapperID, "updated", map[string]interface{}{
		"review_id": review.ID.Hex(),
		"user_id":   review.UserID,
		"rating":    review.Rating,
	})

	if _, err := s.RecomputeHandicapperStats(ctx, review.HandicapperID); err != nil {
		return review, err
	}

	return review, nil
}

// fillAuthor copies the author's display name and avatar onto the review
// when the caller did not supply them.
func (s *reviewService) fillAuthor(ctx context.Context, review *models.Review) {
	if review.UserName != "" {
		return
	}
	user, err := s.userRepo.GetByID(ctx, review.UserID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WithError(err).WithUserID(review.UserID).Debug("Failed to load review author")
		}
		return
	}
	review.UserName = user.DisplayName
	if review.UserAvatar == "" {
		review.UserAvatar = user.AvatarURL
	}
}

func (s *reviewService) GetHandicapperReviews(ctx context.Context, handicapperID string, limit int) ([]*models.Review, error) {
	if limit <= 0 {
		limit = utils.DefaultPageSize
	}

	reviews, err := s.reviewRepo.ListByHandicapper(ctx, handicapperID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	return reviews, nil
}

func (s *reviewService) GetReviewStats(ctx context.Context, handicapperID string) (*models.ReviewStats, error) {
	reviews, err := s.reviewRepo.ListByHandicapper(ctx, handicapperID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get review statistics: %w", err)
	}

	stats := aggregation.ComputeReviewStats(reviews)
	return &stats, nil
}

// RecomputeHandicapperStats re-reads every review of the handicapper and
// overwrites the aggregate on the profile. Concurrent submissions for the
// same handicapper race here and the last write wins.
func (s *reviewService) RecomputeHandicapperStats(ctx context.Context, handicapperID string) (*models.ReviewStats, error) {
	stats, err := s.GetReviewStats(ctx, handicapperID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateReviewStats(ctx, handicapperID, *stats); err != nil {
		return nil, fmt.Errorf("failed to update handicapper rating: %w", err)
	}

	return stats, nil
}
