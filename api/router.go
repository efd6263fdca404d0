// Package api wires the HTTP routes.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/use-agent/folio/api/handler"
	"github.com/use-agent/folio/api/middleware"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(d *handler.Deps, batches *handler.Batches) *gin.Engine {
	gin.SetMode(d.Config.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health: no auth required.
	v1.GET("/health", handler.Health(d))

	// Protected group: auth, then rate limit.
	protected := v1.Group("")
	if d.Config.Auth.Enabled {
		protected.Use(middleware.Auth(d.Config.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(d.Config.RateLimit))

	portfolio := protected.Group("/portfolio")
	portfolio.POST("/scrape", handler.Scrape(d))
	portfolio.POST("/analyze", handler.Analyze(d))
	portfolio.POST("/batch", handler.PostBatch(d, batches))
	portfolio.GET("/batch/:id", handler.GetBatch(batches))

	protected.POST("/content/improve", handler.Improve(d))

	return r
}
