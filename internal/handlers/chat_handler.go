package handlers

import (
	"github.com/gin-gonic/gin"

	"handicapper/internal/services"
	"handicapper/internal/utils"
	"handicapper/internal/validators"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req validators.ChatSendRequest
	if !bindJSON(c, &req) {
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), userID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Message sent successfully", message)
}

// GetConversation returns the history between a user and a handicapper.
// Members omit user_id; handicappers name the member they are talking to.
func (h *ChatHandler) GetConversation(c *gin.Context) {
	requesterID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID := c.Query("user_id")
	if userID == "" {
		userID = requesterID
	}
	limit := utils.GetLimit(c, utils.DefaultChatHistoryLimit)

	messages, err := h.chatService.GetConversation(c.Request.Context(), requesterID, userID, c.Param("handicapperId"), limit)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Messages retrieved successfully", messages, &utils.Meta{Count: len(messages), Limit: limit})
}

func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conversations, err := h.chatService.ListConversations(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Conversations retrieved successfully", conversations, &utils.Meta{Count: len(conversations)})
}
