package repository

import (
	"context"

	"github.com/pomegranateis/webfinalserver/internal/models"
	"gorm.io/gorm"
)

// FollowRepository reads and writes follow edges
type FollowRepository interface {
	CreateFollow(ctx context.Context, followerID, followingID string) error
	DeleteFollow(ctx context.Context, followerID, followingID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)

	// GetFollowers returns users B with an edge B -> userID
	GetFollowers(ctx context.Context, userID string, limit, offset int) ([]*models.User, error)
	// GetFollowing returns users B with an edge userID -> B
	GetFollowing(ctx context.Context, userID string, limit, offset int) ([]*models.User, error)

	GetFollowerCount(ctx context.Context, userID string) (int64, error)
	GetFollowingCount(ctx context.Context, userID string) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) CreateFollow(ctx context.Context, followerID, followingID string) error {
	if followerID == "" || followingID == "" || followerID == followingID {
		return ErrInvalidInput
	}

	follow := models.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
	}
	return translate(r.db.WithContext(ctx).Create(&follow).Error)
}

func (r *followRepository) DeleteFollow(ctx context.Context, followerID, followingID string) error {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error

	return count > 0, translate(err)
}

func (r *followRepository) GetFollowers(ctx context.Context, userID string, limit, offset int) ([]*models.User, error) {
	users := []*models.User{}

	err := paginate(r.db.WithContext(ctx), limit, offset).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ?", userID).
		Order("follows.created_at DESC, users.username ASC").
		Find(&users).Error

	return users, translate(err)
}

func (r *followRepository) GetFollowing(ctx context.Context, userID string, limit, offset int) ([]*models.User, error) {
	users := []*models.User{}

	err := paginate(r.db.WithContext(ctx), limit, offset).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC, users.username ASC").
		Find(&users).Error

	return users, translate(err)
}

func (r *followRepository) GetFollowerCount(ctx context.Context, userID string) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Count(&count).Error

	return count, translate(err)
}

func (r *followRepository) GetFollowingCount(ctx context.Context, userID string) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error

	return count, translate(err)
}
