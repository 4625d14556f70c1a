package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
)

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%d] %s: %s (%s)", e.StatusCode, e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

// parseError builds an APIError from the server's error envelope,
// falling back to the raw body when it is not one
func parseError(resp *resty.Response) error {
	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Code != "" {
		return &APIError{
			StatusCode: resp.StatusCode(),
			Code:       body.Code,
			Message:    body.Message,
			Field:      body.Field,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode(),
		Code:       "unknown_error",
		Message:    string(resp.Body()),
	}
}

func statusIs(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// IsUnauthorized reports a missing token
func IsUnauthorized(err error) bool { return statusIs(err, http.StatusUnauthorized) }

// IsForbidden reports a rejected token or a request on someone else's resource
func IsForbidden(err error) bool { return statusIs(err, http.StatusForbidden) }

func IsNotFound(err error) bool { return statusIs(err, http.StatusNotFound) }

func IsConflict(err error) bool { return statusIs(err, http.StatusConflict) }

func IsRateLimited(err error) bool { return statusIs(err, http.StatusTooManyRequests) }
