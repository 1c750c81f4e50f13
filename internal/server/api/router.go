// Package api exposes a read-mostly HTTP view of the controller. Handlers
// never touch the registry; they push events and wait for the loop to answer.
package api

import (
	"net/http"
	"time"

	"pollcmd/internal/eventloop"
	"pollcmd/internal/server/api/middleware"
	av1 "pollcmd/internal/server/api/v1"
	"pollcmd/internal/server/config"
	"pollcmd/internal/server/event"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Router handles all routing logic
type Router struct {
	engine *gin.Engine
	config *config.APIConfig
	logger *zap.Logger
}

// NewRouter creates and configures a new router
func NewRouter(cfg *config.APIConfig, sink eventloop.Sink[event.Event], logger *zap.Logger) *Router {
	if !logger.Core().Enabled(zap.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine: gin.New(),
		config: cfg,
		logger: logger,
	}

	r.setupMiddleware()
	r.setupAPIV1(sink)

	return r
}

// Handler returns the HTTP handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

func (r *Router) setupMiddleware() {
	m := middleware.New(r.logger)

	r.engine.Use(m.RequestID())
	r.engine.Use(m.Logger())
	r.engine.Use(m.Recovery())
	r.engine.Use(m.Secure())

	r.engine.NoRoute(m.NotFound())
}

func (r *Router) setupAPIV1(sink eventloop.Sink[event.Event]) {
	timeout := r.config.QueryTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	api := av1.NewAPI(sink, timeout, r.logger)

	v1Router := r.engine.Group("/api/v1")
	v1Router.Use(middleware.New(r.logger).NoCache())

	api.RegisterRoutes(v1Router)
}
