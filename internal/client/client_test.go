package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pomegranateis/webfinalserver/internal/auth"
	"github.com/pomegranateis/webfinalserver/internal/database"
	"github.com/pomegranateis/webfinalserver/internal/handlers"
	"github.com/pomegranateis/webfinalserver/internal/metrics"
	"github.com/pomegranateis/webfinalserver/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

// ClientTestSuite drives the client against the real router on an in-memory database
type ClientTestSuite struct {
	suite.Suite
	server *httptest.Server
	ctx    context.Context
}

func (suite *ClientTestSuite) SetupTest() {
	db, err := database.OpenInMemory()
	require.NoError(suite.T(), err)

	tokens := auth.NewTokenIssuer([]byte("client-test-secret"), time.Hour)
	authService := auth.NewService(repository.NewUserRepository(db), auth.NewPasswordHasher(bcrypt.MinCost), tokens)

	h := handlers.NewHandlers(db, authService)
	h.SetMetrics(metrics.NewWithRegistry(prometheus.NewRegistry()))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers.RegisterRoutes(router, h.Routes(), handlers.RouteOptions{Verifier: tokens})

	suite.server = httptest.NewServer(router)
	suite.ctx = context.Background()
	suite.T().Cleanup(func() {
		suite.server.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
}

func (suite *ClientTestSuite) newClient() *Client {
	return New(Options{BaseURL: suite.server.URL, Timeout: 5 * time.Second})
}

// account signs up and logs in, returning a client holding the token
func (suite *ClientTestSuite) account(username string) *Client {
	c := suite.newClient()
	_, err := c.Signup(suite.ctx, SignupRequest{
		Email:    username + "@example.com",
		Username: username,
		Password: "password123",
		FullName: "Test " + username,
	})
	require.NoError(suite.T(), err)

	_, err = c.Login(suite.ctx, username+"@example.com", "password123")
	require.NoError(suite.T(), err)
	return c
}

func (suite *ClientTestSuite) TestSignupAndLogin() {
	c := suite.newClient()

	user, err := c.Signup(suite.ctx, SignupRequest{Email: "Ann@Example.com", Username: "ann", Password: "password123"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ann", user.Username)
	assert.Equal(suite.T(), "ann@example.com", user.Email)
	assert.NotEmpty(suite.T(), user.ID)

	result, err := c.Login(suite.ctx, "ann@example.com", "password123")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ann", result.Username)
	assert.NotEmpty(suite.T(), result.Token)
	assert.True(suite.T(), result.ExpiresAt.After(time.Now()))

	_, err = c.Signup(suite.ctx, SignupRequest{Email: "ann@example.com", Username: "ann2", Password: "password123"})
	assert.True(suite.T(), IsConflict(err), "got %v", err)

	_, err = c.Login(suite.ctx, "ann@example.com", "wrong-password")
	assert.True(suite.T(), IsUnauthorized(err), "got %v", err)
}

func (suite *ClientTestSuite) TestPostLikeAndComment() {
	c := suite.account("poster")

	post, err := c.CreatePost(suite.ctx, "hello from the client")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "hello from the client", post.Content)

	liked, err := c.LikePost(suite.ctx, post.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, liked.LikeCount)

	comment, err := c.CreateComment(suite.ctx, post.ID, "first")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), post.ID, comment.PostID)

	comments, err := c.Comments(suite.ctx, post.ID, Page{})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), comments, 1)
	assert.Equal(suite.T(), "first", comments[0].Content)

	feed, err := c.Feed(suite.ctx, Page{Limit: 10}, true)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), feed, 1)
	require.NotNil(suite.T(), feed[0].Author)
	assert.Equal(suite.T(), "poster", feed[0].Author.Username)

	_, err = c.LikePost(suite.ctx, 9999)
	assert.True(suite.T(), IsNotFound(err), "got %v", err)
}

func (suite *ClientTestSuite) TestWritesRequireToken() {
	c := suite.newClient()

	_, err := c.CreatePost(suite.ctx, "anonymous")
	assert.True(suite.T(), IsUnauthorized(err), "got %v", err)

	c.SetToken("not-a-jwt")
	_, err = c.CreatePost(suite.ctx, "forged")
	assert.True(suite.T(), IsForbidden(err), "got %v", err)

	c.ClearToken()
	_, err = c.CreatePost(suite.ctx, "anonymous again")
	assert.True(suite.T(), IsUnauthorized(err), "got %v", err)
}

func (suite *ClientTestSuite) TestFollowGraphAndProfile() {
	alice := suite.account("alice")
	suite.account("bob")

	require.NoError(suite.T(), alice.Follow(suite.ctx, "bob"))
	assert.True(suite.T(), IsConflict(alice.Follow(suite.ctx, "bob")))

	followers, err := alice.Followers(suite.ctx, "bob", Page{})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), followers, 1)
	assert.Equal(suite.T(), "alice", followers[0].Username)

	following, err := alice.Following(suite.ctx, "alice", Page{})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), following, 1)
	assert.Equal(suite.T(), "bob", following[0].Username)

	profile, err := alice.Profile(suite.ctx, "bob")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), profile.FollowerCount)

	require.NoError(suite.T(), alice.Unfollow(suite.ctx, "bob"))
	assert.True(suite.T(), IsNotFound(alice.Unfollow(suite.ctx, "bob")))
}

func (suite *ClientTestSuite) TestEditProfile() {
	c := suite.account("editor")

	bio := "writes code"
	updated, err := c.UpdateProfile(suite.ctx, "editor", ProfileUpdate{Bio: &bio})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "writes code", updated.Bio)
	assert.Equal(suite.T(), "Test editor", updated.FullName)

	editable, err := c.EditableProfile(suite.ctx, "editor")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "editor@example.com", editable.Email)

	suite.account("other")
	_, err = c.EditableProfile(suite.ctx, "other")
	assert.True(suite.T(), IsForbidden(err), "got %v", err)
}

func (suite *ClientTestSuite) TestSearch() {
	c := suite.account("searchable")
	_, err := c.CreatePost(suite.ctx, "findable post")
	require.NoError(suite.T(), err)

	activity, err := c.SearchUser(suite.ctx, "searchable")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "searchable", activity.Username)
	require.Len(suite.T(), activity.Posts, 1)

	users, err := c.SearchUsers(suite.ctx, "search", Page{})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), users, 1)

	_, err = c.SearchUser(suite.ctx, "nobody")
	assert.True(suite.T(), IsNotFound(err), "got %v", err)
}

func (suite *ClientTestSuite) TestHealth() {
	h, err := suite.newClient().Health(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "healthy", h.Status)
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func TestParseErrorFallsBackToBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	_, err := New(Options{BaseURL: server.URL}).Health(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "unknown_error", apiErr.Code)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestParseErrorReadsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"code":"RATE_LIMITED","message":"slow down"}`))
	}))
	defer server.Close()

	_, err := New(Options{BaseURL: server.URL}).Login(context.Background(), "a@example.com", "pw")
	assert.True(t, IsRateLimited(err))
	assert.Contains(t, err.Error(), "slow down")
}
