package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetLimit reads the "limit" query parameter, falling back to def and
// clamping to [MinPageSize, MaxPageSize].
func GetLimit(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = def
	}

	if limit < MinPageSize {
		limit = MinPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return limit
}

// GetOptionalBool parses a tri-state boolean query parameter.
func GetOptionalBool(c *gin.Context, key string) *bool {
	raw, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
