package routes

import (
	"github.com/gin-gonic/gin"

	"handicapper/internal/handlers"
	"handicapper/internal/middleware"
)

// SetupUserRoutes sets up the caller's own profile and device token routes
func SetupUserRoutes(
	r *gin.RouterGroup,
	verifier middleware.TokenVerifier,
	userHandler *handlers.UserHandler,
	notificationHandler *handlers.NotificationHandler,
) {
	users := r.Group("/users")
	users.Use(middleware.AuthRequired(verifier))
	{
		users.GET("/me", userHandler.GetProfile)
		users.PATCH("/me", userHandler.UpdateProfile)
		users.POST("/me/avatar", userHandler.UploadAvatar)
	}

	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthRequired(verifier))
	{
		notifications.POST("/tokens", notificationHandler.RegisterToken)
		notifications.GET("/tokens", notificationHandler.GetTokens)
	}
}
