package routes

import (
	"github.com/gin-gonic/gin"

	"handicapper/internal/handlers"
	"handicapper/internal/middleware"
)

// SetupReviewRoutes sets up review submission and the handicapper profile
// routes that expose ratings, performance and earnings.
func SetupReviewRoutes(
	r *gin.RouterGroup,
	verifier middleware.TokenVerifier,
	reviewHandler *handlers.ReviewHandler,
	handicapperHandler *handlers.HandicapperHandler,
) {
	reviews := r.Group("/reviews")
	reviews.Use(middleware.AuthRequired(verifier))
	{
		reviews.POST("", reviewHandler.SubmitReview)
		reviews.GET("/eligibility/:handicapperId", reviewHandler.GetEligibility)
		reviews.GET("/mine/:handicapperId", reviewHandler.GetMyReview)
	}

	handicappers := r.Group("/handicappers")
	handicappers.Use(middleware.AuthRequired(verifier))
	{
		handicappers.GET("", handicapperHandler.ListHandicappers)
		handicappers.GET("/:id", handicapperHandler.GetHandicapper)
		handicappers.GET("/:id/reviews", reviewHandler.GetHandicapperReviews)
		handicappers.GET("/:id/review-stats", reviewHandler.GetReviewStats)
		handicappers.GET("/:id/performance", handicapperHandler.GetPerformance)
		handicappers.GET("/:id/followers", handicapperHandler.GetFollowers)
		handicappers.GET("/:id/follow-counts", handicapperHandler.GetFollowCounts)
		handicappers.GET("/:id/earnings", handicapperHandler.GetEarnings)
	}
}
