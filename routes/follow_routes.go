package routes

import (
	"github.com/gin-gonic/gin"

	"handicapper/internal/handlers"
	"handicapper/internal/middleware"
)

func SetupFollowRoutes(r *gin.RouterGroup, verifier middleware.TokenVerifier, followHandler *handlers.FollowHandler) {
	follows := r.Group("/follows")
	follows.Use(middleware.AuthRequired(verifier))
	{
		follows.GET("/following", followHandler.GetFollowing)
		follows.GET("/suggestions", followHandler.GetSuggestions)
		follows.GET("/:handicapperId/status", followHandler.GetFollowStatus)
		follows.POST("/:handicapperId", followHandler.Follow)
		follows.DELETE("/:handicapperId", followHandler.Unfollow)
	}
}
