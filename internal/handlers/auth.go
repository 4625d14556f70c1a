package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pomegranateis/webfinalserver/internal/auth"
	"github.com/pomegranateis/webfinalserver/internal/dto"
	"github.com/pomegranateis/webfinalserver/internal/logger"
)

// Signup creates an account
// POST /signup
func (h *Handlers) Signup(c *gin.Context) {
	var req auth.RegisterRequest
	if !bindJSON(c, &req) {
		h.metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		outcome := "error"
		if errors.Is(err, auth.ErrUserExists) {
			outcome = "conflict"
		}
		h.metrics.SignupsTotal.WithLabelValues(outcome).Inc()
		respondError(c, err, "user")
		return
	}

	h.metrics.SignupsTotal.WithLabelValues("success").Inc()
	logger.Log.Info("User signed up", logger.WithUserID(user.ID), logger.WithUsername(user.Username))

	c.JSON(http.StatusOK, gin.H{
		"message": "User created successfully",
		"user":    dto.ToUserDetailResponse(user),
	})
}

// Login exchanges email and password for an access token
// POST /auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if !bindJSON(c, &req) {
		h.metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.metrics.LoginsTotal.WithLabelValues(loginOutcome(err)).Inc()
		respondError(c, err, "user")
		return
	}

	h.metrics.LoginsTotal.WithLabelValues("success").Inc()

	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"token":      resp.Token,
		"username":   resp.User.Username,
		"expires_at": resp.ExpiresAt,
	})
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}
