package repository

import (
	"context"

	"github.com/pomegranateis/webfinalserver/internal/models"
	"gorm.io/gorm"
)

// CommentRepository handles all database operations for comments
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error)
	ListCommentsByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// CreateComment inserts a comment after checking its post exists
func (r *commentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment == nil || comment.PostID == 0 {
		return ErrInvalidInput
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).Where("id = ?", comment.PostID).Count(&count).Error; err != nil {
			return translate(err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return translate(tx.Create(comment).Error)
	})
}

func (r *commentRepository) ListCommentsByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	comments := []*models.Comment{}

	err := paginate(r.db.WithContext(ctx), limit, offset).
		Where("post_id = ?", postID).
		Order(feedOrder).
		Find(&comments).Error

	return comments, translate(err)
}

func (r *commentRepository) ListCommentsByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Comment, error) {
	comments := []*models.Comment{}

	err := paginate(r.db.WithContext(ctx), limit, offset).
		Where("user_id = ?", userID).
		Order(feedOrder).
		Find(&comments).Error

	return comments, translate(err)
}
