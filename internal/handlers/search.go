package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pomegranateis/webfinalserver/internal/dto"
	"github.com/pomegranateis/webfinalserver/internal/util"
)

// relationLimit bounds the followers and following embedded in a search result
const relationLimit = 100

// SearchUserByUsername returns a user with posts, comments, following and followers
// GET /NavBar/search/:username
func (h *Handlers) SearchUserByUsername(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := h.users.GetUserWithActivity(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err, "user")
		return
	}

	following, err := h.follows.GetFollowing(ctx, user.ID, relationLimit, 0)
	if err != nil {
		respondError(c, err, "following")
		return
	}
	followers, err := h.follows.GetFollowers(ctx, user.ID, relationLimit, 0)
	if err != nil {
		respondError(c, err, "followers")
		return
	}

	c.JSON(http.StatusOK, dto.UserActivityResponse{
		UserResponse: *dto.ToUserResponse(user),
		Posts:        user.Posts,
		Comments:     user.Comments,
		Following:    dto.ToUserResponses(following),
		Followers:    dto.ToUserResponses(followers),
	})
}

// SearchUsers finds users whose username contains q
// GET /NavBar/search?q=ali
func (h *Handlers) SearchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		util.RespondBadRequest(c, "query parameter q is required")
		return
	}

	limit, offset := util.Pagination(c)

	users, err := h.users.SearchUsers(c.Request.Context(), query, limit, offset)
	if err != nil {
		respondError(c, err, "users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":  dto.ToUserResponses(users),
		"query":  query,
		"limit":  limit,
		"offset": offset,
	})
}
