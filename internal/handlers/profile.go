package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pomegranateis/webfinalserver/internal/dto"
	apierrors "github.com/pomegranateis/webfinalserver/internal/errors"
	"github.com/pomegranateis/webfinalserver/internal/logger"
	"github.com/pomegranateis/webfinalserver/internal/models"
	"github.com/pomegranateis/webfinalserver/internal/repository"
	"github.com/pomegranateis/webfinalserver/internal/util"
	"go.uber.org/zap"
)

// profilePostLimit bounds the posts embedded in a profile page
const profilePostLimit = 50

// GetProfile returns a user's public profile with recent posts and follow counts
// GET /profile/:username
func (h *Handlers) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := h.users.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err, "user")
		return
	}

	posts, err := h.posts.ListPostsByAuthor(ctx, user.ID, profilePostLimit, 0)
	if err != nil {
		respondError(c, err, "posts")
		return
	}

	followers, err := h.follows.GetFollowerCount(ctx, user.ID)
	if err != nil {
		respondError(c, err, "followers")
		return
	}
	following, err := h.follows.GetFollowingCount(ctx, user.ID)
	if err != nil {
		respondError(c, err, "following")
		return
	}

	c.JSON(http.StatusOK, dto.ProfileResponse{
		Username:       user.Username,
		FullName:       user.FullName,
		Bio:            user.Bio,
		Posts:          posts,
		FollowerCount:  followers,
		FollowingCount: following,
	})
}

// GetFollowers lists users who follow :username
// GET /profile/:username/followers
func (h *Handlers) GetFollowers(c *gin.Context) {
	h.listFollowEdges(c, "followers", h.follows.GetFollowers)
}

// GetFollowing lists users :username follows
// GET /profile/:username/following
func (h *Handlers) GetFollowing(c *gin.Context) {
	h.listFollowEdges(c, "following", h.follows.GetFollowing)
}

type followLister func(ctx context.Context, userID string, limit, offset int) ([]*models.User, error)

func (h *Handlers) listFollowEdges(c *gin.Context, key string, list followLister) {
	user, err := h.users.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, "user")
		return
	}

	limit, offset := util.Pagination(c)

	users, err := list(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		respondError(c, err, key)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		key:      dto.ToUserResponses(users),
		"limit":  limit,
		"offset": offset,
	})
}

// FollowUser makes the authenticated user follow :username
// POST /profile/:username/follow
func (h *Handlers) FollowUser(c *gin.Context) {
	followerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	target, err := h.users.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, "user")
		return
	}
	if target.ID == followerID {
		util.RespondValidationError(c, "username", "cannot follow yourself")
		return
	}

	if err := h.follows.CreateFollow(c.Request.Context(), followerID, target.ID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			util.RespondWithAPIError(c, apierrors.Conflict("already following "+target.Username))
			return
		}
		respondError(c, err, "follow")
		return
	}

	h.metrics.FollowsTotal.WithLabelValues("follow").Inc()
	logger.Log.Info("User followed",
		logger.WithUserID(followerID),
		zap.String("following_id", target.ID),
	)

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Followed " + target.Username,
		"following": target.Username,
	})
}

// UnfollowUser removes the authenticated user's follow of :username
// DELETE /profile/:username/follow
func (h *Handlers) UnfollowUser(c *gin.Context) {
	followerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	target, err := h.users.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, "user")
		return
	}

	if err := h.follows.DeleteFollow(c.Request.Context(), followerID, target.ID); err != nil {
		respondError(c, err, "follow")
		return
	}

	h.metrics.FollowsTotal.WithLabelValues("unfollow").Inc()

	c.JSON(http.StatusOK, gin.H{
		"message":   "Unfollowed " + target.Username,
		"following": target.Username,
	})
}

// GetEditableProfile returns the owner's editable fields
// GET /profile/:username/editpf
func (h *Handlers) GetEditableProfile(c *gin.Context) {
	user, ok := h.profileOwner(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.ToEditableProfile(user))
}

// UpdateProfile changes only the fields present in the body
// PATCH /profile/:username/editpf
func (h *Handlers) UpdateProfile(c *gin.Context) {
	user, ok := h.profileOwner(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	// omitempty lets an empty string through the binding rules
	if req.Username != nil && !models.ValidUsername(*req.Username) {
		util.RespondValidationError(c, "username", usernameRule)
		return
	}

	updated, err := h.users.UpdateUserFields(c.Request.Context(), user.ID, req.Fields())
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			util.RespondWithAPIError(c, apierrors.Conflict("Username already exists"))
			return
		}
		respondError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, dto.ToEditableProfile(updated))
}

// profileOwner loads :username and checks it belongs to the token's user
func (h *Handlers) profileOwner(c *gin.Context) (*models.User, bool) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return nil, false
	}

	user, err := h.users.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, "user")
		return nil, false
	}

	if user.ID != userID {
		util.RespondForbidden(c, "you can only edit your own profile")
		return nil, false
	}
	return user, true
}
