package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pomegranateis/webfinalserver/internal/models"
	"github.com/pomegranateis/webfinalserver/internal/util"
)

// CreateCommentRequest is the body of POST /feeds/post/:id/comments
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// GetComments lists a post's comments newest first
// GET /feeds/post/:id/comments
func (h *Handlers) GetComments(c *gin.Context) {
	postID, ok := util.ParseUintParam(c.Param("id"))
	if !ok {
		util.RespondBadRequest(c, "invalid post id")
		return
	}

	limit, offset := util.Pagination(c)

	comments, err := h.comments.ListCommentsByPost(c.Request.Context(), postID, limit, offset)
	if err != nil {
		respondError(c, err, "comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"limit":    limit,
		"offset":   offset,
	})
}

// CreateComment adds a comment to an existing post
// POST /feeds/post/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID, ok := util.ParseUintParam(c.Param("id"))
	if !ok {
		util.RespondBadRequest(c, "invalid post id")
		return
	}

	var req CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		util.RespondValidationError(c, "content", "is required")
		return
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  &userID,
		Content: content,
	}
	if err := h.comments.CreateComment(c.Request.Context(), comment); err != nil {
		respondError(c, err, "post")
		return
	}

	h.metrics.CommentsTotal.Inc()
	c.JSON(http.StatusCreated, comment)
}
