package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pomegranateis/webfinalserver/internal/auth"
	"github.com/pomegranateis/webfinalserver/internal/database"
	"github.com/pomegranateis/webfinalserver/internal/metrics"
	"github.com/pomegranateis/webfinalserver/internal/middleware"
	"github.com/pomegranateis/webfinalserver/internal/models"
	"github.com/pomegranateis/webfinalserver/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// HandlersTestSuite runs every route against an in-memory database
type HandlersTestSuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	handlers *Handlers
	tokens   *auth.TokenIssuer
	registry *prometheus.Registry
}

func (suite *HandlersTestSuite) SetupTest() {
	db, err := database.OpenInMemory()
	require.NoError(suite.T(), err)
	suite.db = db

	suite.tokens = auth.NewTokenIssuer([]byte("handler-test-secret"), time.Hour)
	authService := auth.NewService(
		repository.NewUserRepository(db),
		auth.NewPasswordHasher(bcrypt.MinCost),
		suite.tokens,
	)

	suite.registry = prometheus.NewRegistry()
	suite.handlers = NewHandlers(db, authService)
	suite.handlers.SetMetrics(metrics.NewWithRegistry(suite.registry))

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	RegisterRoutes(suite.router, suite.handlers.Routes(), RouteOptions{Verifier: suite.tokens})
}

func (suite *HandlersTestSuite) TearDownTest() {
	if sqlDB, err := suite.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (suite *HandlersTestSuite) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// signup registers a user through the API and returns its id and a token
func (suite *HandlersTestSuite) signup(username string) (string, string) {
	w := suite.request(http.MethodPost, "/signup", gin.H{
		"email":    username + "@x.com",
		"username": username,
		"password": "p",
		"fullName": "Full " + username,
	}, "")
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	suite.decode(w, &resp)

	token, _, err := suite.tokens.Issue(resp.User.ID, username)
	require.NoError(suite.T(), err)
	return resp.User.ID, token
}

func (suite *HandlersTestSuite) createPost(token, content string) models.Post {
	w := suite.request(http.MethodPost, "/NavBar/create", gin.H{"content": content}, token)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	var post models.Post
	suite.decode(w, &post)
	return post
}

func (suite *HandlersTestSuite) TestSignupAndLogin() {
	w := suite.request(http.MethodPost, "/signup", gin.H{
		"email": "a@x.com", "username": "a", "password": "p",
	}, "")
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(suite.T(), w.Body.String(), "password")

	w = suite.request(http.MethodPost, "/auth/login", gin.H{"email": "a@x.com", "password": "p"}, "")
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Message  string `json:"message"`
		Token    string `json:"token"`
		Username string `json:"username"`
	}
	suite.decode(w, &resp)
	assert.Equal(suite.T(), "Login successful", resp.Message)
	assert.Equal(suite.T(), "a", resp.Username)

	claims, err := suite.tokens.Verify(resp.Token)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "a", claims.Username)
	assert.WithinDuration(suite.T(), time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)

	w = suite.request(http.MethodPost, "/auth/login", gin.H{"email": "a@x.com", "password": "wrong"}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	w = suite.request(http.MethodPost, "/auth/login", gin.H{"email": "nobody@x.com", "password": "p"}, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestSignupDuplicate() {
	suite.signup("alice")

	w := suite.request(http.MethodPost, "/signup", gin.H{
		"email": "alice@x.com", "username": "someone", "password": "p",
	}, "")
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "Email or username already exists")

	w = suite.request(http.MethodPost, "/signup", gin.H{
		"email": "new@x.com", "username": "alice", "password": "p",
	}, "")
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestSignupValidation() {
	w := suite.request(http.MethodPost, "/signup", gin.H{"email": "not-an-email", "username": "a", "password": "p"}, "")
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
	assert.Contains(suite.T(), w.Body.String(), `"field":"email"`)

	w = suite.request(http.MethodPost, "/signup", "{not json", "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestSignupRejectsBadUsername() {
	for _, username := range []string{"   ", "a/b", "a b", strings.Repeat("a", 31)} {
		w := suite.request(http.MethodPost, "/signup", gin.H{
			"email": "b@x.com", "username": username, "password": "p",
		}, "")
		assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code, "%q", username)
		assert.Contains(suite.T(), w.Body.String(), `"field":"username"`, "%q", username)
	}

	w := suite.request(http.MethodGet, "/NavBar/search?q=b", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), `"users":[]`)
}

func (suite *HandlersTestSuite) TestValidationFieldUsesJSONKey() {
	w := suite.request(http.MethodPost, "/signup", gin.H{
		"email": "a@x.com", "username": "a", "password": "p", "fullName": strings.Repeat("x", 101),
	}, "")
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
	assert.Contains(suite.T(), w.Body.String(), `"field":"fullName"`)

	_, token := suite.signup("alice")
	w = suite.request(http.MethodPatch, "/profile/alice/editpf", gin.H{"full_name": strings.Repeat("x", 101)}, token)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
	assert.Contains(suite.T(), w.Body.String(), `"field":"full_name"`)
}

func (suite *HandlersTestSuite) TestAuthPolicy() {
	for _, r := range suite.handlers.Routes() {
		if r.Access != Authenticated {
			continue
		}
		path := strings.NewReplacer(":id", "1", ":username", "alice").Replace(r.Path)

		w := suite.request(r.Method, path, gin.H{}, "")
		assert.Equal(suite.T(), http.StatusUnauthorized, w.Code, "%s %s without token", r.Method, r.Path)

		w = suite.request(r.Method, path, gin.H{}, "garbage")
		assert.Equal(suite.T(), http.StatusForbidden, w.Code, "%s %s with bad token", r.Method, r.Path)
	}
}

func (suite *HandlersTestSuite) TestCreatePostUsesTokenSubject() {
	aliceID, aliceToken := suite.signup("alice")
	bobID, _ := suite.signup("bob")

	w := suite.request(http.MethodPost, "/NavBar/create", gin.H{
		"content": "hello", "userId": bobID,
	}, aliceToken)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	var post models.Post
	suite.decode(w, &post)
	assert.Equal(suite.T(), aliceID, post.AuthorID)

	w = suite.request(http.MethodPost, "/NavBar/create", gin.H{"content": "   "}, aliceToken)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestFeedOrderingAndAuthor() {
	_, token := suite.signup("alice")
	first := suite.createPost(token, "first")
	second := suite.createPost(token, "second")

	w := suite.request(http.MethodGet, "/feeds", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var feed struct {
		Posts []models.Post `json:"posts"`
		Limit int           `json:"limit"`
	}
	suite.decode(w, &feed)
	require.Len(suite.T(), feed.Posts, 2)
	assert.Equal(suite.T(), second.ID, feed.Posts[0].ID)
	assert.Equal(suite.T(), first.ID, feed.Posts[1].ID)
	assert.Nil(suite.T(), feed.Posts[0].Author)
	assert.Equal(suite.T(), 20, feed.Limit)

	w = suite.request(http.MethodGet, "/feeds?include=author&limit=1", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	suite.decode(w, &feed)
	require.Len(suite.T(), feed.Posts, 1)
	require.NotNil(suite.T(), feed.Posts[0].Author)
	assert.Equal(suite.T(), "alice", feed.Posts[0].Author.Username)
	assert.NotContains(suite.T(), w.Body.String(), "password")
}

func (suite *HandlersTestSuite) TestFeedAuthorOmitsEmail() {
	_, token := suite.signup("alice")
	suite.createPost(token, "hello")

	w := suite.request(http.MethodGet, "/feeds?include=author", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var feed struct {
		Posts []struct {
			Author map[string]interface{} `json:"author"`
		} `json:"posts"`
	}
	suite.decode(w, &feed)
	require.Len(suite.T(), feed.Posts, 1)
	assert.Equal(suite.T(), "alice", feed.Posts[0].Author["username"])
	assert.NotContains(suite.T(), feed.Posts[0].Author, "email")
	assert.NotContains(suite.T(), feed.Posts[0].Author, "updated_at")
	assert.NotContains(suite.T(), w.Body.String(), "alice@x.com")

	w = suite.request(http.MethodGet, "/profile/alice", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.NotContains(suite.T(), w.Body.String(), "alice@x.com")
}

func (suite *HandlersTestSuite) TestLikeIncrementsEveryCall() {
	_, token := suite.signup("alice")
	post := suite.createPost(token, "likeable")

	path := fmt.Sprintf("/feeds/post/%d/like", post.ID)
	var liked models.Post
	for i := 0; i < 3; i++ {
		w := suite.request(http.MethodPost, path, nil, token)
		require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())
		suite.decode(w, &liked)
	}
	assert.Equal(suite.T(), 3, liked.LikeCount)

	w := suite.request(http.MethodPost, "/feeds/post/9999/like", nil, token)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.request(http.MethodPost, "/feeds/post/abc/like", nil, token)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestComments() {
	_, token := suite.signup("alice")
	post := suite.createPost(token, "discuss")
	path := fmt.Sprintf("/feeds/post/%d/comments", post.ID)

	w := suite.request(http.MethodPost, path, gin.H{"content": "one"}, token)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	w = suite.request(http.MethodPost, path, gin.H{"content": "two"}, token)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	w = suite.request(http.MethodGet, path, nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		Comments []models.Comment `json:"comments"`
	}
	suite.decode(w, &resp)
	require.Len(suite.T(), resp.Comments, 2)
	assert.Equal(suite.T(), "two", resp.Comments[0].Content)

	w = suite.request(http.MethodPost, "/feeds/post/9999/comments", gin.H{"content": "x"}, token)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/feeds/post/9999/comments", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), `"comments":[]`)
}

func (suite *HandlersTestSuite) TestFollowFlow() {
	_, aliceToken := suite.signup("alice")
	_, bobToken := suite.signup("bob")
	suite.signup("carol")

	w := suite.request(http.MethodPost, "/profile/alice/follow", nil, bobToken)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	w = suite.request(http.MethodPost, "/profile/alice/follow", nil, bobToken)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	w = suite.request(http.MethodPost, "/profile/alice/follow", nil, aliceToken)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)

	w = suite.request(http.MethodPost, "/profile/ghost/follow", nil, aliceToken)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.request(http.MethodPost, "/profile/carol/follow", nil, aliceToken)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	var followers struct {
		Followers []struct {
			Username string `json:"username"`
		} `json:"followers"`
	}
	w = suite.request(http.MethodGet, "/profile/alice/followers", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	suite.decode(w, &followers)
	require.Len(suite.T(), followers.Followers, 1)
	assert.Equal(suite.T(), "bob", followers.Followers[0].Username)

	var following struct {
		Following []struct {
			Username string `json:"username"`
		} `json:"following"`
	}
	w = suite.request(http.MethodGet, "/profile/alice/following", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	suite.decode(w, &following)
	require.Len(suite.T(), following.Following, 1)
	assert.Equal(suite.T(), "carol", following.Following[0].Username)

	w = suite.request(http.MethodDelete, "/profile/alice/follow", nil, bobToken)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	w = suite.request(http.MethodDelete, "/profile/alice/follow", nil, bobToken)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/profile/ghost/followers", nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestProfile() {
	_, aliceToken := suite.signup("alice")
	_, bobToken := suite.signup("bob")
	suite.createPost(aliceToken, "mine")
	suite.request(http.MethodPost, "/profile/alice/follow", nil, bobToken)

	w := suite.request(http.MethodGet, "/profile/alice", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var profile struct {
		Username      string        `json:"username"`
		FullName      string        `json:"full_name"`
		Posts         []models.Post `json:"posts"`
		FollowerCount int64         `json:"follower_count"`
	}
	suite.decode(w, &profile)
	assert.Equal(suite.T(), "alice", profile.Username)
	assert.Equal(suite.T(), "Full alice", profile.FullName)
	assert.Len(suite.T(), profile.Posts, 1)
	assert.Equal(suite.T(), int64(1), profile.FollowerCount)
	assert.NotContains(suite.T(), w.Body.String(), "alice@x.com")

	w = suite.request(http.MethodGet, "/profile/ghost", nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestEditProfilePartialUpdate() {
	_, aliceToken := suite.signup("alice")
	_, bobToken := suite.signup("bob")

	w := suite.request(http.MethodGet, "/profile/alice/editpf", nil, aliceToken)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "alice@x.com")

	w = suite.request(http.MethodGet, "/profile/alice/editpf", nil, bobToken)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPatch, "/profile/alice/editpf", gin.H{"bio": "new bio"}, aliceToken)
	require.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	var updated struct {
		Username string `json:"username"`
		FullName string `json:"full_name"`
		Bio      string `json:"bio"`
	}
	suite.decode(w, &updated)
	assert.Equal(suite.T(), "new bio", updated.Bio)
	assert.Equal(suite.T(), "alice", updated.Username)
	assert.Equal(suite.T(), "Full alice", updated.FullName)

	w = suite.request(http.MethodPatch, "/profile/alice/editpf", gin.H{"username": "bob"}, aliceToken)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	w = suite.request(http.MethodPatch, "/profile/alice/editpf", gin.H{"bio": "hijack"}, bobToken)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	for _, username := range []string{"", "   ", "a/b"} {
		w = suite.request(http.MethodPatch, "/profile/alice/editpf", gin.H{"username": username}, aliceToken)
		assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code, "%q", username)
		assert.Contains(suite.T(), w.Body.String(), `"field":"username"`, "%q", username)
	}

	w = suite.request(http.MethodPatch, "/profile/alice/editpf", gin.H{"username": "alicia"}, aliceToken)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	w = suite.request(http.MethodGet, "/profile/alicia", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestSearch() {
	_, aliceToken := suite.signup("alice")
	_, bobToken := suite.signup("bob")
	post := suite.createPost(aliceToken, "searchable")
	suite.request(http.MethodPost, fmt.Sprintf("/feeds/post/%d/comments", post.ID), gin.H{"content": "self reply"}, aliceToken)
	suite.request(http.MethodPost, "/profile/alice/follow", nil, bobToken)

	w := suite.request(http.MethodGet, "/NavBar/search/alice", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var result struct {
		Username  string           `json:"username"`
		Posts     []models.Post    `json:"posts"`
		Comments  []models.Comment `json:"comments"`
		Followers []struct {
			Username string `json:"username"`
		} `json:"followers"`
		Following []interface{} `json:"following"`
	}
	suite.decode(w, &result)
	assert.Equal(suite.T(), "alice", result.Username)
	assert.Len(suite.T(), result.Posts, 1)
	assert.Len(suite.T(), result.Comments, 1)
	require.Len(suite.T(), result.Followers, 1)
	assert.Equal(suite.T(), "bob", result.Followers[0].Username)
	assert.Empty(suite.T(), result.Following)
	assert.NotContains(suite.T(), w.Body.String(), "password")

	w = suite.request(http.MethodGet, "/NavBar/search/ghost", nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/NavBar/search?q=LI", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	var users struct {
		Users []struct {
			Username string `json:"username"`
		} `json:"users"`
	}
	suite.decode(w, &users)
	require.Len(suite.T(), users.Users, 1)
	assert.Equal(suite.T(), "alice", users.Users[0].Username)

	w = suite.request(http.MethodGet, "/NavBar/search", nil, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestHealth() {
	w := suite.request(http.MethodGet, "/health", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), `"status":"healthy"`)

	sqlDB, err := suite.db.DB()
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), sqlDB.Close())

	w = suite.request(http.MethodGet, "/health", nil, "")
	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)

	var body struct {
		Status string `json:"status"`
		Error  struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	suite.decode(w, &body)
	assert.Equal(suite.T(), "unhealthy", body.Status)
	assert.Equal(suite.T(), "SERVICE_UNAVAILABLE", body.Error.Code)
	assert.Equal(suite.T(), "database is temporarily unavailable", body.Error.Message)
}

func (suite *HandlersTestSuite) TestStorageFailureIs500() {
	sqlDB, err := suite.db.DB()
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), sqlDB.Close())

	w := suite.request(http.MethodPost, "/auth/login", gin.H{"email": "a@x.com", "password": "p"}, "")
	assert.Equal(suite.T(), http.StatusInternalServerError, w.Code)
	assert.NotContains(suite.T(), w.Body.String(), "closed")

	w = suite.request(http.MethodGet, "/feeds", nil, "")
	assert.Equal(suite.T(), http.StatusInternalServerError, w.Code)
}

func (suite *HandlersTestSuite) TestRateLimitedRoutes() {
	config := middleware.RateLimitConfig{Limit: 2, Window: time.Minute}
	limiter := middleware.NewRateLimiter(config)
	defer limiter.Stop()

	router := gin.New()
	RegisterRoutes(router, suite.handlers.Routes(), RouteOptions{
		Verifier:    suite.tokens,
		AuthLimiter: limiter,
		RateLimit:   config,
	})

	login := func() int {
		body, _ := json.Marshal(gin.H{"email": "nobody@x.com", "password": "p"})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(suite.T(), http.StatusNotFound, login())
	assert.Equal(suite.T(), http.StatusNotFound, login())
	assert.Equal(suite.T(), http.StatusTooManyRequests, login())

	// Unlimited routes are unaffected
	req := httptest.NewRequest(http.MethodGet, "/feeds", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
