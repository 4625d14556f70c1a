package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pomegranateis/webfinalserver/internal/auth"
	"github.com/pomegranateis/webfinalserver/internal/middleware"
)

// Access is the authorization policy of a route
type Access int

const (
	Public Access = iota
	Authenticated
)

func (a Access) String() string {
	if a == Authenticated {
		return "authenticated"
	}
	return "public"
}

// Route is one entry of the API surface
type Route struct {
	Method      string
	Path        string
	Access      Access
	RateLimited bool
	Handler     gin.HandlerFunc
}

// Routes returns every API route with its access policy.
// /metrics is mounted by the server since it is not backed by these handlers.
func (h *Handlers) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/health", Access: Public, Handler: h.Health},

		{Method: http.MethodPost, Path: "/signup", Access: Public, RateLimited: true, Handler: h.Signup},
		{Method: http.MethodPost, Path: "/auth/login", Access: Public, RateLimited: true, Handler: h.Login},

		{Method: http.MethodGet, Path: "/feeds", Access: Public, Handler: h.GetFeed},
		{Method: http.MethodPost, Path: "/feeds/post/:id/like", Access: Authenticated, Handler: h.LikePost},
		{Method: http.MethodGet, Path: "/feeds/post/:id/comments", Access: Public, Handler: h.GetComments},
		{Method: http.MethodPost, Path: "/feeds/post/:id/comments", Access: Authenticated, Handler: h.CreateComment},

		{Method: http.MethodGet, Path: "/profile/:username", Access: Public, Handler: h.GetProfile},
		{Method: http.MethodGet, Path: "/profile/:username/followers", Access: Public, Handler: h.GetFollowers},
		{Method: http.MethodGet, Path: "/profile/:username/following", Access: Public, Handler: h.GetFollowing},
		{Method: http.MethodPost, Path: "/profile/:username/follow", Access: Authenticated, Handler: h.FollowUser},
		{Method: http.MethodDelete, Path: "/profile/:username/follow", Access: Authenticated, Handler: h.UnfollowUser},
		{Method: http.MethodGet, Path: "/profile/:username/editpf", Access: Authenticated, Handler: h.GetEditableProfile},
		{Method: http.MethodPatch, Path: "/profile/:username/editpf", Access: Authenticated, Handler: h.UpdateProfile},

		{Method: http.MethodPost, Path: "/NavBar/create", Access: Authenticated, Handler: h.CreatePost},
		{Method: http.MethodGet, Path: "/NavBar/search", Access: Public, Handler: h.SearchUsers},
		{Method: http.MethodGet, Path: "/NavBar/search/:username", Access: Public, Handler: h.SearchUserByUsername},
	}
}

// RouteOptions supplies the middleware the route policies refer to
type RouteOptions struct {
	Verifier auth.TokenVerifier
	// AuthLimiter guards rate limited routes; nil disables limiting
	AuthLimiter middleware.Limiter
	RateLimit   middleware.RateLimitConfig
}

// RegisterRoutes mounts routes on router, attaching middleware from each route's policy
func RegisterRoutes(router gin.IRoutes, routes []Route, opts RouteOptions) {
	requireAuth := middleware.RequireAuth(opts.Verifier)

	var limit gin.HandlerFunc
	if opts.AuthLimiter != nil {
		limit = middleware.RateLimit("auth", opts.AuthLimiter, opts.RateLimit)
	}

	for _, r := range routes {
		chain := gin.HandlersChain{}
		if r.RateLimited && limit != nil {
			chain = append(chain, limit)
		}
		if r.Access == Authenticated {
			chain = append(chain, requireAuth)
		}
		chain = append(chain, r.Handler)

		router.Handle(r.Method, r.Path, chain...)
	}
}
