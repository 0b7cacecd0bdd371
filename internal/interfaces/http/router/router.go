package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/infrastructure/auth"
	"github.com/salesdesk/backend/internal/infrastructure/config"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
	"github.com/salesdesk/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar registers routes that require an authenticated session
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// PublicRouteRegistrar registers routes reachable without a session,
// such as login and the external approval endpoint
type PublicRouteRegistrar interface {
	RegisterPublicRoutes(rg *gin.RouterGroup)
}

// Router assembles the gin engine, its middleware chain and the
// public and authenticated API groups
type Router struct {
	engine     *gin.Engine
	apiVersion string
	public     []PublicRouteRegistrar
	authed     []RouteRegistrar
}

// Option configures the Router
type Option func(*Router)

// WithAPIVersion sets the API version prefix (e.g. "v1")
func WithAPIVersion(version string) Option {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// New builds a Router with the standard middleware chain applied
func New(cfg *config.Config, log *zap.Logger, opts ...Option) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(
		logger.Recovery(log),
		middleware.ContextLogger(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.CORS(middleware.DefaultCORSConfig()),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "app": cfg.App.Name})
	})

	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Public adds registrars whose routes skip authentication
func (r *Router) Public(registrars ...PublicRouteRegistrar) *Router {
	r.public = append(r.public, registrars...)
	return r
}

// Authed adds registrars whose routes sit behind the session middleware
func (r *Router) Authed(registrars ...RouteRegistrar) *Router {
	r.authed = append(r.authed, registrars...)
	return r
}

// Setup mounts all registered routes. Authenticated routes run behind
// the bearer session middleware, which reloads the user on each request
// so group changes and retirement take effect immediately.
func (r *Router) Setup(jwt *auth.JWTService, users identity.UserRepository) {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, p := range r.public {
		p.RegisterPublicRoutes(api)
	}

	authed := api.Group("")
	authed.Use(middleware.Auth(jwt, users))
	for _, a := range r.authed {
		a.RegisterRoutes(authed)
	}
}

// Engine exposes the underlying gin engine for the HTTP server
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
