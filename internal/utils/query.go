package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetFloatQuery parses a float query parameter, reporting whether it was
// present and well formed.
func GetFloatQuery(c *gin.Context, key string) (float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
