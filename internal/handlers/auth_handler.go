package handlers

import (
	"github.com/gin-gonic/gin"

	"handicapper/internal/services"
	"handicapper/internal/utils"
	"handicapper/internal/validators"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// GoogleSignIn exchanges a Google authorization code for a session
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req validators.AuthCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validators.ValidateStruct(&req).Err(); err != nil {
		utils.HandleError(c, err)
		return
	}

	result, err := h.authService.SignInWithGoogle(c.Request.Context(), req.Code)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Signed in successfully", result)
}

// AppleSignIn exchanges a Sign in with Apple authorization code
func (h *AuthHandler) AppleSignIn(c *gin.Context) {
	var req validators.AuthCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validators.ValidateStruct(&req).Err(); err != nil {
		utils.HandleError(c, err)
		return
	}

	result, err := h.authService.SignInWithApple(c.Request.Context(), req.Code, req.Name)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Signed in successfully", result)
}

// FirebaseSignIn trades a Firebase ID token for a session
func (h *AuthHandler) FirebaseSignIn(c *gin.Context) {
	var req validators.IDTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validators.ValidateStruct(&req).Err(); err != nil {
		utils.HandleError(c, err)
		return
	}

	result, err := h.authService.SignInWithFirebase(c.Request.Context(), req.IDToken)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Signed in successfully", result)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req validators.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validators.ValidateStruct(&req).Err(); err != nil {
		utils.HandleError(c, err)
		return
	}

	tokens, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Token refreshed successfully", tokens)
}
