package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pomegranateis/webfinalserver/internal/auth"
	"github.com/pomegranateis/webfinalserver/internal/logger"
	"github.com/pomegranateis/webfinalserver/internal/util"
	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// RequireAuth rejects requests without a valid bearer token.
// A missing or non-Bearer header is 401; a token that fails verification is 403.
func RequireAuth(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			util.RespondUnauthorized(c, "missing bearer token")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if token == "" {
			util.RespondUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			logger.Log.Debug("token rejected",
				logger.WithRequestID(c.GetString("request_id")),
				zap.Error(err),
			)
			util.RespondForbidden(c, tokenErrorMessage(err))
			return
		}

		c.Set(util.ContextUserID, claims.UserID())
		c.Set(util.ContextUsername, claims.Username)
		c.Next()
	}
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "invalid token signature"
	default:
		return "invalid token"
	}
}
