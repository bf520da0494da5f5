// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/secondhand-bookstore/internal/config"
	"github.com/iliyamo/secondhand-bookstore/internal/handler"
	"github.com/iliyamo/secondhand-bookstore/internal/middleware"
)

// Deps are the optional collaborators of the routes.  A nil Redis client
// disables response caching and rate limiting.
type Deps struct {
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	PublicDir string
}

// RegisterRoutes registers the operational endpoints: health and metrics.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterStorefront registers the public listing, purchase and sell
// endpoints plus the admin moderation endpoints.  GET listings backed by the
// database go through the response cache; every POST is rate limited and purges the cache once
// it succeeds.
func RegisterStorefront(e *echo.Echo, h *handler.Handler, d Deps) {
	cache := middleware.NewRedisCache(d.Cache, d.Redis)
	e.GET("/posting/all", h.ListPostings, cache)
	e.GET("/posting/:id", h.GetPosting, cache)
	// genres.txt is read per request so edits show up immediately
	e.GET("/book/filter", h.Genres)
	e.GET("/book/filter/:genre", h.FilterByGenre, cache)
	e.GET("/submissions", h.Submissions, cache)

	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	purge := middleware.PurgeCache(d.Cache, d.Redis)
	e.POST("/purchase", h.Purchase, limit, purge)
	e.POST("/checkout", h.Checkout, limit, purge)
	e.POST("/submission", h.Submit, limit, purge)
	e.POST("/add", h.Approve, limit, purge)
	e.POST("/del", h.Reject, limit, purge)

	if d.PublicDir != "" {
		e.Static("/", d.PublicDir)
	}
}

// New builds the echo instance with global middleware and every route.
func New(h *handler.Handler, d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	middleware.Register(e)
	RegisterRoutes(e)
	RegisterStorefront(e, h, d)
	return e
}
