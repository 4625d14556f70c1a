package handlers

import (
	"github.com/pomegranateis/webfinalserver/internal/auth"
	"github.com/pomegranateis/webfinalserver/internal/metrics"
	"github.com/pomegranateis/webfinalserver/internal/repository"
	"gorm.io/gorm"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	db       *gorm.DB
	auth     auth.AuthServiceInterface
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	metrics  *metrics.Metrics
	service  string
}

// NewHandlers creates a new handlers instance backed by db
func NewHandlers(db *gorm.DB, authService auth.AuthServiceInterface) *Handlers {
	registerValidators()

	return &Handlers{
		db:       db,
		auth:     authService,
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		follows:  repository.NewFollowRepository(db),
		metrics:  metrics.Get(),
		service:  "webfinal-backend",
	}
}

// SetMetrics replaces the metrics the handlers record into
func (h *Handlers) SetMetrics(m *metrics.Metrics) {
	h.metrics = m
}

// SetServiceName sets the name reported by /health
func (h *Handlers) SetServiceName(name string) {
	if name != "" {
		h.service = name
	}
}
