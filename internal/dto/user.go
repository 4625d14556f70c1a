package dto

import (
	"time"

	"github.com/pomegranateis/webfinalserver/internal/models"
)

// UserResponse is the public user representation (safe for API responses)
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
}

// UserDetailResponse includes the email, for the user viewing their own account
type UserDetailResponse struct {
	UserResponse
	Email string `json:"email"`
}

// ProfileResponse is the public profile page
type ProfileResponse struct {
	Username       string         `json:"username"`
	FullName       string         `json:"full_name"`
	Bio            string         `json:"bio"`
	Posts          []*models.Post `json:"posts"`
	FollowerCount  int64          `json:"follower_count"`
	FollowingCount int64          `json:"following_count"`
}

// EditableProfile lists the fields PATCH /profile/:username/editpf accepts
type EditableProfile struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Bio      string `json:"bio"`
	Email    string `json:"email"`
}

// UpdateProfileRequest is a partial update; nil fields are left unchanged
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" binding:"omitempty,username"`
	FullName *string `json:"full_name,omitempty" binding:"omitempty,max=100"`
	Bio      *string `json:"bio,omitempty" binding:"omitempty,max=500"`
}

// Fields returns the column updates for the non-nil fields
func (r UpdateProfileRequest) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if r.Username != nil {
		fields["username"] = *r.Username
	}
	if r.FullName != nil {
		fields["full_name"] = *r.FullName
	}
	if r.Bio != nil {
		fields["bio"] = *r.Bio
	}
	return fields
}

// UserActivityResponse is a user with posts, comments, following and followers
type UserActivityResponse struct {
	UserResponse
	Posts     []models.Post    `json:"posts"`
	Comments  []models.Comment `json:"comments"`
	Following []*UserResponse  `json:"following"`
	Followers []*UserResponse  `json:"followers"`
}

// ToUserResponse converts models.User to UserResponse (excludes sensitive fields)
func ToUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}

	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		Bio:       user.Bio,
		CreatedAt: user.CreatedAt,
	}
}

// ToUserDetailResponse converts models.User including the email
func ToUserDetailResponse(user *models.User) *UserDetailResponse {
	if user == nil {
		return nil
	}

	return &UserDetailResponse{
		UserResponse: *ToUserResponse(user),
		Email:        user.Email,
	}
}

// ToUserResponses converts a list of users
func ToUserResponses(users []*models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out
}

// ToEditableProfile returns the fields the owner may edit
func ToEditableProfile(user *models.User) *EditableProfile {
	return &EditableProfile{
		Username: user.Username,
		FullName: user.FullName,
		Bio:      user.Bio,
		Email:    user.Email,
	}
}
