package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// ParseUintParam parses a positive path id such as a post id
func ParseUintParam(s string) (uint, bool) {
	val, err := strconv.ParseUint(s, 10, 0)
	if err != nil || val == 0 {
		return 0, false
	}
	return uint(val), true
}

// Pagination reads limit and offset from the query string.
// limit defaults to DefaultPageLimit and is capped at MaxPageLimit; negative offsets become 0.
func Pagination(c *gin.Context) (limit, offset int) {
	limit = ParseInt(c.Query("limit"), DefaultPageLimit)
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	offset = ParseInt(c.Query("offset"), 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
