package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/gin-gonic/gin"

	"handicapper/internal/models"
	"handicapper/internal/utils"
)

// currentUserID returns the authenticated caller. It writes a 401 and
// returns false when the auth middleware did not run.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(utils.ContextUserID)
	if userID == "" {
		utils.UnauthorizedResponse(c)
		return "", false
	}
	return userID, true
}

func isAdmin(c *gin.Context) bool {
	return c.GetString(utils.ContextUserType) == string(models.UserTypeAdmin)
}

// bindJSON decodes the body into req and writes a 400 on malformed input.
// A value of the wrong JSON type is reported against its field.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		utils.ValidationErrorResponse(c, map[string]string{
			typeErr.Field: fmt.Sprintf("%s must be %s, got %s", typeErr.Field, jsonKind(typeErr.Type), typeErr.Value),
		})
		return false
	}

	utils.BadRequestResponse(c, "Invalid request body")
	return false
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "a different type"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "a whole number"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "a list"
	case reflect.Map, reflect.Struct:
		return "an object"
	default:
		return "a different type"
	}
}
