package repository

import (
	"context"

	"github.com/pomegranateis/webfinalserver/internal/models"
	"gorm.io/gorm"
)

// feedOrder sorts newest first; equal timestamps fall back to the later insert first
const feedOrder = "created_at DESC, id DESC"

// FeedQuery selects a page of the feed
type FeedQuery struct {
	Limit         int
	Offset        int
	IncludeAuthor bool
}

// PostRepository handles all database operations for posts
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, postID uint) (*models.Post, error)
	ListFeed(ctx context.Context, q FeedQuery) ([]*models.Post, error)
	ListPostsByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.Post, error)

	// IncrementLikes adds one like in a single UPDATE and returns the updated post
	IncrementLikes(ctx context.Context, postID uint) (*models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post == nil || post.AuthorID == "" {
		return ErrInvalidInput
	}
	return translate(r.db.WithContext(ctx).Create(post).Error)
}

func (r *postRepository) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *postRepository) ListFeed(ctx context.Context, q FeedQuery) ([]*models.Post, error) {
	posts := []*models.Post{}

	db := paginate(r.db.WithContext(ctx), q.Limit, q.Offset)
	if q.IncludeAuthor {
		db = db.Preload("Author")
	}

	err := db.Order(feedOrder).Find(&posts).Error
	return posts, translate(err)
}

func (r *postRepository) ListPostsByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}

	err := paginate(r.db.WithContext(ctx), limit, offset).
		Where("author_id = ?", authorID).
		Order(feedOrder).
		Find(&posts).Error

	return posts, translate(err)
}

func (r *postRepository) IncrementLikes(ctx context.Context, postID uint) (*models.Post, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", 1))
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.GetPost(ctx, postID)
}
