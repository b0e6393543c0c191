package routes

import (
	"github.com/gin-gonic/gin"

	"handicapper/internal/handlers"
	"handicapper/internal/middleware"
	"handicapper/pkg/websocket"
)

// SetupChatRoutes sets up chat history routes and the live websocket
// endpoint. The websocket accepts its token as a query parameter.
func SetupChatRoutes(
	r *gin.RouterGroup,
	verifier middleware.TokenVerifier,
	chatHandler *handlers.ChatHandler,
	wsHandler *websocket.Handler,
) {
	chats := r.Group("/chats")
	chats.Use(middleware.AuthRequired(verifier))
	{
		chats.GET("", chatHandler.ListConversations)
		chats.POST("/messages", chatHandler.SendMessage)
		chats.GET("/:handicapperId/messages", chatHandler.GetConversation)
	}

	r.GET("/ws", middleware.WebSocketAuthRequired(verifier), wsHandler.HandleWebSocket)
}
