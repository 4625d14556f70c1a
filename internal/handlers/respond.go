package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pomegranateis/webfinalserver/internal/auth"
	apierrors "github.com/pomegranateis/webfinalserver/internal/errors"
	"github.com/pomegranateis/webfinalserver/internal/repository"
	"github.com/pomegranateis/webfinalserver/internal/util"
)

const usernameRule = "must be 1 to 30 letters, digits, underscores or hyphens"

// respondError maps any handler error onto an API error response.
// resource names what a NotFound refers to.
func respondError(c *gin.Context, err error, resource string) {
	util.RespondWithAPIError(c, toAPIError(c, err, resource))
}

func toAPIError(c *gin.Context, err error, resource string) *apierrors.APIError {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, auth.ErrUserExists):
		return apierrors.Conflict("Email or username already exists")
	case errors.Is(err, auth.ErrUserNotFound):
		return apierrors.NotFound("user")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apierrors.Unauthorized("Invalid credentials")
	case errors.Is(err, auth.ErrInvalidUsername):
		return apierrors.ValidationError("username", usernameRule)
	case errors.Is(err, repository.ErrNotFound):
		return apierrors.NotFound(resource)
	case errors.Is(err, repository.ErrDuplicate):
		return apierrors.Conflict(resource + " already exists")
	case errors.Is(err, repository.ErrInvalidInput):
		return apierrors.BadRequest("invalid " + resource)
	}

	// Unexpected: keep the cause for the request log and the trace
	_ = c.Error(err)
	return apierrors.InternalError("internal server error").WithDetails(err.Error())
}

// bindJSON decodes the body into req and writes the error response on failure.
// Syntax errors are 400; failed binding rules are 422 naming the field.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		util.RespondValidationError(c, fe.Field(), validationMessage(fe))
		return false
	}

	util.RespondBadRequest(c, "invalid JSON body")
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "username":
		return usernameRule
	default:
		return "is invalid"
	}
}
