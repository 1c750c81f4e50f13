package v1

import (
	"context"
	"time"

	"pollcmd/internal/eventloop"
	"pollcmd/internal/server/api/response"
	"pollcmd/internal/server/event"
	"pollcmd/internal/version"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// API represents the API
type API struct {
	sink    eventloop.Sink[event.Event]
	timeout time.Duration
	logger  *zap.Logger
}

// NewAPI creates new API
func NewAPI(sink eventloop.Sink[event.Event], timeout time.Duration, logger *zap.Logger) *API {
	return &API{
		sink:    sink,
		timeout: timeout,
		logger:  logger,
	}
}

// RegisterRoutes registers API routes
func (api *API) RegisterRoutes(r *gin.RouterGroup) {
	api.RegisterClientRoutes(r)
	api.RegisterCommandRoutes(r)

	r.GET("/health", api.healthCheck)
}

// query asks the event loop for registry state and waits for its answer
func (api *API) query(ctx context.Context, clientID string) (event.QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, api.timeout)
	defer cancel()

	result := make(chan event.QueryResult, 1)
	api.sink.Push(event.Query{ClientID: clientID, Result: result})

	select {
	case res := <-result:
		return res, nil
	case <-ctx.Done():
		return event.QueryResult{}, ctx.Err()
	}
}

// healthCheck handles health check requests
func (api *API) healthCheck(c *gin.Context) {
	resp := response.New(c, api.logger)
	resp.Success(gin.H{
		"status":  "ok",
		"version": version.GetInfo().Short(),
	})
}
