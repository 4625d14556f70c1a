package auth

import (
	"context"

	"github.com/pomegranateis/webfinalserver/internal/models"
)

// AuthServiceInterface defines the contract for authentication operations.
// Handlers depend on it so tests can swap in a stub.
type AuthServiceInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
}

// TokenVerifier checks bearer tokens for the auth middleware
type TokenVerifier interface {
	Verify(tokenString string) (*Claims, error)
}

var (
	_ AuthServiceInterface = (*Service)(nil)
	_ TokenVerifier        = (*TokenIssuer)(nil)
)
