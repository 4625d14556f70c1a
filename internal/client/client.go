// Package client is a typed HTTP client for the webfinal API
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/pomegranateis/webfinalserver/internal/telemetry"
)

const userAgent = "feedctl/0.1.0"

// DefaultTimeout bounds every request when Options.Timeout is zero
const DefaultTimeout = 30 * time.Second

type Options struct {
	BaseURL string
	Timeout time.Duration
	Token   string
	// Logger receives request and response debug lines; nil discards them
	Logger *log.Logger
}

// Client calls the API. It is safe for concurrent use once configured.
type Client struct {
	http *resty.Client
	log  *log.Logger
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	c := &Client{
		http: resty.New(),
		log:  opts.Logger,
	}
	c.http.SetTransport(telemetry.NewTransport(nil))
	c.http.SetBaseURL(opts.BaseURL)
	c.http.SetTimeout(opts.Timeout)
	c.http.SetHeader("User-Agent", userAgent)
	c.http.SetHeader("Accept", "application/json")

	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		c.debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})
	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.debug("HTTP Response", "status", resp.StatusCode(), "duration", resp.Time())
		return nil
	})

	if opts.Token != "" {
		c.SetToken(opts.Token)
	}
	return c
}

func (c *Client) debug(msg string, keyvals ...interface{}) {
	if c.log != nil {
		c.log.Debug(msg, keyvals...)
	}
}

// SetToken sends token as a bearer credential on every following request
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

// ClearToken stops sending credentials
func (c *Client) ClearToken() {
	c.http.SetAuthToken("")
	c.http.Header.Del("Authorization")
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}, query url.Values) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return parseError(resp)
	}
	return nil
}

func pageQuery(p Page) url.Values {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	return q
}

func postPath(id uint, suffix string) string {
	return "/feeds/post/" + strconv.FormatUint(uint64(id), 10) + suffix
}

func profilePath(username, suffix string) string {
	return "/profile/" + url.PathEscape(username) + suffix
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &h, nil); err != nil {
		return nil, err
	}
	return &h, nil
}

// Signup creates an account. It does not log in.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	var resp signupResponse
	if err := c.do(ctx, http.MethodPost, "/signup", req, &resp, nil); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Login exchanges credentials for a token and starts using it
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var resp LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp, nil); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// Feed lists posts newest first
func (c *Client) Feed(ctx context.Context, page Page, includeAuthor bool) ([]Post, error) {
	q := pageQuery(page)
	if includeAuthor {
		q.Set("include", "author")
	}

	var resp postList
	if err := c.do(ctx, http.MethodGet, "/feeds", nil, &resp, q); err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

func (c *Client) CreatePost(ctx context.Context, content string) (*Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodPost, "/NavBar/create", contentBody{Content: content}, &post, nil); err != nil {
		return nil, err
	}
	return &post, nil
}

// LikePost adds one like and returns the updated post
func (c *Client) LikePost(ctx context.Context, id uint) (*Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodPost, postPath(id, "/like"), nil, &post, nil); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) Comments(ctx context.Context, postID uint, page Page) ([]Comment, error) {
	var resp commentList
	if err := c.do(ctx, http.MethodGet, postPath(postID, "/comments"), nil, &resp, pageQuery(page)); err != nil {
		return nil, err
	}
	return resp.Comments, nil
}

func (c *Client) CreateComment(ctx context.Context, postID uint, content string) (*Comment, error) {
	var comment Comment
	if err := c.do(ctx, http.MethodPost, postPath(postID, "/comments"), contentBody{Content: content}, &comment, nil); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) Profile(ctx context.Context, username string) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, profilePath(username, ""), nil, &p, nil); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Followers(ctx context.Context, username string, page Page) ([]User, error) {
	var resp userList
	if err := c.do(ctx, http.MethodGet, profilePath(username, "/followers"), nil, &resp, pageQuery(page)); err != nil {
		return nil, err
	}
	return resp.Followers, nil
}

func (c *Client) Following(ctx context.Context, username string, page Page) ([]User, error) {
	var resp userList
	if err := c.do(ctx, http.MethodGet, profilePath(username, "/following"), nil, &resp, pageQuery(page)); err != nil {
		return nil, err
	}
	return resp.Following, nil
}

func (c *Client) Follow(ctx context.Context, username string) error {
	return c.do(ctx, http.MethodPost, profilePath(username, "/follow"), nil, nil, nil)
}

func (c *Client) Unfollow(ctx context.Context, username string) error {
	return c.do(ctx, http.MethodDelete, profilePath(username, "/follow"), nil, nil, nil)
}

// EditableProfile fetches the caller's own editable fields
func (c *Client) EditableProfile(ctx context.Context, username string) (*EditableProfile, error) {
	var p EditableProfile
	if err := c.do(ctx, http.MethodGet, profilePath(username, "/editpf"), nil, &p, nil); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, username string, update ProfileUpdate) (*EditableProfile, error) {
	var p EditableProfile
	if err := c.do(ctx, http.MethodPatch, profilePath(username, "/editpf"), update, &p, nil); err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchUser looks up one user by exact username with their activity
func (c *Client) SearchUser(ctx context.Context, username string) (*UserActivity, error) {
	var activity UserActivity
	if err := c.do(ctx, http.MethodGet, "/NavBar/search/"+url.PathEscape(username), nil, &activity, nil); err != nil {
		return nil, err
	}
	return &activity, nil
}

// SearchUsers matches usernames containing query
func (c *Client) SearchUsers(ctx context.Context, query string, page Page) ([]User, error) {
	q := pageQuery(page)
	q.Set("q", query)

	var resp userList
	if err := c.do(ctx, http.MethodGet, "/NavBar/search", nil, &resp, q); err != nil {
		return nil, err
	}
	return resp.Users, nil
}
