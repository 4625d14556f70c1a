package client

import "time"

// User is the public representation of an account
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Bio       string    `json:"bio"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	ID        uint      `json:"id"`
	AuthorID  string    `json:"author_id"`
	Author    *User     `json:"author,omitempty"`
	Content   string    `json:"content"`
	LikeCount int       `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        uint      `json:"id"`
	PostID    uint      `json:"post_id"`
	UserID    *string   `json:"user_id,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Page selects a window of a list endpoint. Zero values use the server defaults.
type Page struct {
	Limit  int
	Offset int
}

type SignupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
}

type LoginResult struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Profile struct {
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	Bio            string `json:"bio"`
	Posts          []Post `json:"posts"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
}

// UserActivity is a user together with everything they posted and their follow graph
type UserActivity struct {
	User
	Posts     []Post    `json:"posts"`
	Comments  []Comment `json:"comments"`
	Following []User    `json:"following"`
	Followers []User    `json:"followers"`
}

type EditableProfile struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Bio      string `json:"bio"`
	Email    string `json:"email"`
}

// ProfileUpdate changes only the non-nil fields
type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}

type Health struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

type signupResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

type postList struct {
	Posts []Post `json:"posts"`
}

type commentList struct {
	Comments []Comment `json:"comments"`
}

type userList struct {
	Users     []User `json:"users"`
	Followers []User `json:"followers"`
	Following []User `json:"following"`
}

type contentBody struct {
	Content string `json:"content"`
}
