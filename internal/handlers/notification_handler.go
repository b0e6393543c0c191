package handlers

import (
	"github.com/gin-gonic/gin"

	"handicapper/internal/models"
	"handicapper/internal/services"
	"handicapper/internal/utils"
	"handicapper/internal/validators"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// RegisterToken stores the caller's push token for a device
func (h *NotificationHandler) RegisterToken(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req validators.TokenRegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validators.ValidateTokenRegister(&req); err != nil {
		utils.HandleError(c, err)
		return
	}

	h.notificationService.SaveToken(c.Request.Context(), userID, req.Token, models.Platform(req.Platform), req.DeviceID)
	utils.SuccessResponse(c, "Token registered successfully", nil)
}

func (h *NotificationHandler) GetTokens(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tokens, err := h.notificationService.GetUserTokens(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Tokens retrieved successfully", tokens, &utils.Meta{Count: len(tokens)})
}
