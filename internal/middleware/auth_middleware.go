package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"handicapper/internal/models"
	"handicapper/internal/services"
	"handicapper/internal/utils"
	"handicapper/pkg/logger"
)

// TokenVerifier resolves a bearer token to the calling user.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*services.Principal, error)
}

// AuthRequired middleware validates the bearer token and sets user context
func AuthRequired(verifier TokenVerifier) gin.HandlerFunc {
	return authenticate(verifier, false)
}

// WebSocketAuthRequired also accepts the token as a "token" query
// parameter, since browsers cannot set headers on a websocket handshake.
func WebSocketAuthRequired(verifier TokenVerifier) gin.HandlerFunc {
	return authenticate(verifier, true)
}

func authenticate(verifier TokenVerifier, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok && allowQuery {
			token = c.Query("token")
			ok = token != ""
		}
		if !ok {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		principal, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", utils.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set(utils.ContextUserID, principal.UserID)
		c.Set(utils.ContextUserType, principal.UserType)
		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), principal.UserID))

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", false
	}
	return token, true
}

// AdminRequired middleware ensures user is an admin
func AdminRequired() gin.HandlerFunc {
	return requireUserType(models.UserTypeAdmin, "Admin access required")
}

// HandicapperRequired lets handicappers and admins through.
func HandicapperRequired() gin.HandlerFunc {
	return requireUserType(models.UserTypeHandicapper, "Handicapper access required", models.UserTypeAdmin)
}

func requireUserType(want models.UserType, message string, also ...models.UserType) gin.HandlerFunc {
	allowed := map[string]bool{string(want): true}
	for _, t := range also {
		allowed[string(t)] = true
	}

	return func(c *gin.Context) {
		userType, exists := c.Get(utils.ContextUserType)
		if !exists {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		if s, ok := userType.(string); !ok || !allowed[s] {
			utils.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", message)
			c.Abort()
			return
		}

		c.Next()
	}
}
