package validators

import (
	"handicapper/internal/models"
)

type ReviewSubmitRequest struct {
	HandicapperID string `json:"handicapper_id" validate:"required,max=128"`
	Rating        int    `json:"rating" validate:"min=1,max=5"`
	Comment       string `json:"comment" validate:"trimmed_min=10,trimmed_max=500"`
	PurchaseID    string `json:"purchase_id" validate:"omitempty,object_id"`
}

// ValidateReviewSubmit checks a review before any store access.
func ValidateReviewSubmit(req *ReviewSubmitRequest) error {
	return ValidateStruct(req).Err()
}

// CanSubmitReview reports whether rating and comment would pass validation.
func CanSubmitReview(rating int, comment string) bool {
	if rating < models.MinRating || rating > models.MaxRating {
		return false
	}
	n := trimmedLen(comment)
	return n >= models.MinReviewCommentLen && n <= models.MaxReviewCommentLen
}
