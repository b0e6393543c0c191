package handlers

import (
	"github.com/gin-gonic/gin"

	"handicapper/internal/services"
	"handicapper/internal/utils"
	"handicapper/internal/validators"
)

type ReviewHandler struct {
	reviewService services.ReviewService
	userService   services.UserService
}

func NewReviewHandler(reviewService services.ReviewService, userService services.UserService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		userService:   userService,
	}
}

// SubmitReview creates the caller's review of a handicapper, or updates it
// when one already exists.
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req validators.ReviewSubmitRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &services.SubmitReviewInput{
		UserID:        userID,
		HandicapperID: req.HandicapperID,
		Rating:        req.Rating,
		Comment:       req.Comment,
		PurchaseID:    req.PurchaseID,
	}
	// The reviewer's name and avatar are denormalized onto the review; a
	// missing profile leaves the model defaults in place.
	if profile, err := h.userService.GetProfile(c.Request.Context(), userID); err == nil {
		input.UserName = profile.DisplayName
		input.UserAvatar = profile.AvatarURL
	}

	review, err := h.reviewService.SubmitReview(c.Request.Context(), input)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Review submitted successfully", review)
}

// GetEligibility reports whether the caller may review a handicapper
func (h *ReviewHandler) GetEligibility(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	handicapperID := c.Param("handicapperId")

	utils.SuccessResponse(c, "Eligibility retrieved successfully", gin.H{
		"can_review":   h.reviewService.CanReview(c.Request.Context(), userID, handicapperID),
		"has_reviewed": h.reviewService.HasReviewed(c.Request.Context(), userID, handicapperID),
	})
}

// GetMyReview returns the caller's review of a handicapper, if any
func (h *ReviewHandler) GetMyReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	review := h.reviewService.GetExistingReview(c.Request.Context(), userID, c.Param("handicapperId"))
	utils.SuccessResponse(c, "Review retrieved successfully", gin.H{"review": review})
}

func (h *ReviewHandler) GetHandicapperReviews(c *gin.Context) {
	limit := utils.GetLimit(c, utils.DefaultPageSize)

	reviews, err := h.reviewService.GetHandicapperReviews(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Reviews retrieved successfully", reviews, &utils.Meta{Count: len(reviews), Limit: limit})
}

func (h *ReviewHandler) GetReviewStats(c *gin.Context) {
	stats, err := h.reviewService.GetReviewStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Review stats retrieved successfully", stats)
}
