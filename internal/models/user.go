package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. Email and username are unique.
// Email never serializes from the model; the owner sees it through the dto package.
type User struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"-"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"type:text;not null" json:"-"`
	FullName     string `json:"full_name"`
	Bio          string `gorm:"type:text" json:"bio"`

	Posts    []Post    `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
	Comments []Comment `gorm:"foreignKey:UserID" json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// Post is an entry in the chronological feed
type Post struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	AuthorID  string `gorm:"size:36;not null;index" json:"author_id"`
	Author    *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string `gorm:"type:text;not null" json:"content"`
	LikeCount int    `gorm:"not null;default:0" json:"like_count"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment belongs to a Post. UserID is empty for comments imported without an author.
type Comment struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	PostID  uint    `gorm:"not null;index" json:"post_id"`
	Post    *Post   `gorm:"foreignKey:PostID" json:"-"`
	UserID  *string `gorm:"size:36;index" json:"user_id,omitempty"`
	Content string  `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
}

// Follow is a directed edge: FollowerID follows FollowingID
type Follow struct {
	FollowerID  string    `gorm:"primaryKey;size:36" json:"follower_id"`
	FollowingID string    `gorm:"primaryKey;size:36;index" json:"following_id"`
	Follower    *User     `gorm:"foreignKey:FollowerID" json:"-"`
	Following   *User     `gorm:"foreignKey:FollowingID" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID when the caller did not
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Comment{},
		&Follow{},
	}
}
