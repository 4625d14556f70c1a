package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsCarryStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		code   ErrorCode
		status int
	}{
		{"not found", NotFound("post"), ErrNotFound, http.StatusNotFound},
		{"unauthorized", Unauthorized("missing token"), ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("invalid token"), ErrForbidden, http.StatusForbidden},
		{"conflict", Conflict("Email or username already exists"), ErrConflict, http.StatusConflict},
		{"validation", ValidationError("email", "bad"), ErrValidation, http.StatusUnprocessableEntity},
		{"bad request", BadRequest("nope"), ErrBadRequest, http.StatusBadRequest},
		{"internal", InternalError("boom"), ErrInternalError, http.StatusInternalServerError},
		{"rate limited", RateLimited(""), ErrRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
		})
	}
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: user not found", NotFound("user").Error())
	assert.Equal(t, "VALIDATION_ERROR: required (field: email)", ValidationError("email", "required").Error())
	assert.Equal(t, "rate limit exceeded", RateLimited("").Message)
}

func TestUnknownCodeMapsTo500(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, ErrorCode("WHATEVER").StatusCode())
}
