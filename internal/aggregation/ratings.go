// Package aggregation derives display statistics from records that have
// already been fetched. Nothing here touches the store.
package aggregation

import (
	"handicapper/internal/models"
)

// ComputeReviewStats recomputes stats from the full review set of one
// handicapper. The average is not rounded.
func ComputeReviewStats(reviews []*models.Review) models.ReviewStats {
	var stats models.ReviewStats
	if len(reviews) == 0 {
		return stats
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
		stats.RatingDistribution.Add(r.Rating)
	}

	stats.TotalReviews = len(reviews)
	stats.AverageRating = float64(sum) / float64(len(reviews))
	return stats
}
