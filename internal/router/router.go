package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo's stock middleware (CORS, recover, request id, static)
	"github.com/redis/go-redis/v9"                  // Redis client shared by the rate limiter and cache
	"go.uber.org/zap"                               // structured logger

	"github.com/iliyamo/septic-crm/internal/config"     // rate limit and cache settings
	"github.com/iliyamo/septic-crm/internal/handler"    // request handlers
	"github.com/iliyamo/septic-crm/internal/middleware" // auth, role gate, rate limit, cache, logging
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Leads      *handler.LeadHandler
	Contact    *handler.ContactHandler
	Activities *handler.ActivityHandler
	Calendar   *handler.CalendarHandler
	Notes      *handler.NoteHandler
	Documents  *handler.DocumentHandler
	Dashboard  *handler.DashboardHandler
	Pipeline   echo.HandlerFunc
}

// Options carries the cross-cutting settings of the HTTP stack.
type Options struct {
	Prefix      string   // path every API route is mounted under, e.g. "/api"
	CORSOrigins []string // allowed browser origins
	UploadDir   string   // served read-only at /uploads; empty disables it
	BodyLimit   string   // e.g. "11M"; leaves room for a 10 MB upload plus form overhead
	RateLimit   config.RateLimitConfig
	Cache       config.CacheConfig
	Redis       *redis.Client // nil disables rate limiting and caching
	Log         *zap.Logger
}

// New builds the Echo instance with the global middleware chain and all
// routes registered.  tokens verifies access tokens for protected routes.
func New(opts Options, tokens middleware.AccessVerifier, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(opts.Log)

	// Outermost first: the request logger must see the status produced by
	// Recover when a handler panics.
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(opts.Log))
	e.Use(echomw.Recover())
	// nosniff matters for /uploads, which serves user supplied files.
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     opts.CORSOrigins,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	if opts.BodyLimit != "" {
		e.Use(echomw.BodyLimit(opts.BodyLimit))
	}
	if opts.UploadDir != "" {
		e.Static(handler.UploadsPath, opts.UploadDir)
	}

	limiter := middleware.NewTokenBucket(opts.RateLimit, opts.Redis, opts.Log)
	cache := middleware.NewRedisCache(opts.Cache, opts.Redis, opts.Log)

	RegisterRoutes(e, opts.Prefix)
	RegisterAuth(e, opts.Prefix, h.Auth, tokens, limiter)
	RegisterContact(e, opts.Prefix, h.Contact, limiter)
	RegisterCRM(e, opts.Prefix, h, tokens, cache)
	RegisterUsers(e, opts.Prefix, h.Users, tokens)
	return e
}

// RegisterRoutes registers routes that do not require authentication and are
// not rate limited: the health checks.
func RegisterRoutes(e *echo.Echo, prefix string) {
	// Plain probe for load balancers, outside the API prefix.
	e.GET("/healthz", handler.Healthz)
	// JSON health check used by the web clients.
	e.GET(prefix+"/health", handler.Health)
}

// RegisterAuth registers the authentication routes.  Login, register and
// refresh are public and rate limited; /auth/me requires an access token.
func RegisterAuth(e *echo.Echo, prefix string, a *handler.AuthHandler, tokens middleware.AccessVerifier, limiter echo.MiddlewareFunc) {
	g := e.Group(prefix + "/auth")
	g.POST("/login", a.Login, limiter)
	g.POST("/register", a.Register, limiter)
	g.POST("/refresh", a.Refresh, limiter)
	g.GET("/me", a.Me, middleware.JWTAuth(tokens))
}

// RegisterContact registers the public website contact form.
func RegisterContact(e *echo.Echo, prefix string, h *handler.ContactHandler, limiter echo.MiddlewareFunc) {
	e.POST(prefix+"/contact", h.Submit, limiter)
}
