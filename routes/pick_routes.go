package routes

import (
	"github.com/gin-gonic/gin"

	"handicapper/internal/handlers"
	"handicapper/internal/middleware"
)

// SetupPickRoutes sets up the pick feed and pick management routes
func SetupPickRoutes(r *gin.RouterGroup, verifier middleware.TokenVerifier, pickHandler *handlers.PickHandler) {
	picks := r.Group("/picks")
	picks.Use(middleware.AuthRequired(verifier))
	{
		// Feeds
		picks.GET("", pickHandler.GetPicks)
		picks.GET("/following", pickHandler.GetFollowingPicks)
		picks.GET("/top", pickHandler.GetTopRatedPicks)
		picks.GET("/:id", pickHandler.GetPick)

		// Interactions
		picks.POST("/:id/like", pickHandler.LikePick)
		picks.POST("/:id/share", pickHandler.SharePick)
	}

	// Handicapper-only pick management
	manage := r.Group("/picks")
	manage.Use(middleware.AuthRequired(verifier), middleware.HandicapperRequired())
	{
		manage.POST("", pickHandler.CreatePick)
		manage.PATCH("/:id/status", pickHandler.UpdatePickStatus)
		manage.DELETE("/:id", pickHandler.DeletePick)
	}
}
