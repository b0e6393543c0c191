package routes

import (
	"github.com/gin-gonic/gin"

	"handicapper/internal/handlers"
)

// SetupAuthRoutes sets up the public sign-in routes
func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	auth := r.Group("/auth")
	{
		auth.POST("/google", authHandler.GoogleSignIn)
		auth.POST("/apple", authHandler.AppleSignIn)
		auth.POST("/firebase", authHandler.FirebaseSignIn)
		auth.POST("/refresh", authHandler.RefreshToken)
	}
}
