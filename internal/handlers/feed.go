package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pomegranateis/webfinalserver/internal/logger"
	"github.com/pomegranateis/webfinalserver/internal/models"
	"github.com/pomegranateis/webfinalserver/internal/repository"
	"github.com/pomegranateis/webfinalserver/internal/util"
)

// CreatePostRequest is the body of POST /NavBar/create.
// Any author id in the body is ignored; the author is the token subject.
type CreatePostRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

// GetFeed lists posts newest first
// GET /feeds?include=author&limit=20&offset=0
func (h *Handlers) GetFeed(c *gin.Context) {
	limit, offset := util.Pagination(c)

	start := time.Now()
	posts, err := h.posts.ListFeed(c.Request.Context(), repository.FeedQuery{
		Limit:         limit,
		Offset:        offset,
		IncludeAuthor: includes(c, "author"),
	})
	h.metrics.FeedQueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		respondError(c, err, "feed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":  posts,
		"limit":  limit,
		"offset": offset,
	})
}

// LikePost adds one like to a post. Every call counts.
// POST /feeds/post/:id/like
func (h *Handlers) LikePost(c *gin.Context) {
	postID, ok := util.ParseUintParam(c.Param("id"))
	if !ok {
		util.RespondBadRequest(c, "invalid post id")
		return
	}

	post, err := h.posts.IncrementLikes(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err, "post")
		return
	}

	h.metrics.LikesTotal.Inc()
	c.JSON(http.StatusOK, post)
}

// CreatePost publishes a post as the authenticated user
// POST /NavBar/create
func (h *Handlers) CreatePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		util.RespondValidationError(c, "content", "is required")
		return
	}

	post := &models.Post{
		AuthorID: userID,
		Content:  content,
	}
	if err := h.posts.CreatePost(c.Request.Context(), post); err != nil {
		respondError(c, err, "post")
		return
	}

	h.metrics.PostsCreatedTotal.Inc()
	logger.Log.Info("Post created", logger.WithUserID(userID), logger.WithPostID(post.ID))

	c.JSON(http.StatusCreated, post)
}

// includes reports whether the comma separated include parameter names relation
func includes(c *gin.Context, relation string) bool {
	for _, part := range strings.Split(c.Query("include"), ",") {
		if strings.EqualFold(strings.TrimSpace(part), relation) {
			return true
		}
	}
	return false
}
