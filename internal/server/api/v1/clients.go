package v1

import (
	"context"
	"errors"
	"net/http"

	"pollcmd/internal/server/api/response"
	"pollcmd/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterClientRoutes registers client routes
func (api *API) RegisterClientRoutes(r *gin.RouterGroup) {
	clients := r.Group("/clients")
	{
		clients.GET("", api.getClients)
		clients.GET("/:id", api.getClient)
	}
}

// getClients handles retrieving all clients
func (api *API) getClients(c *gin.Context) {
	resp := response.New(c, api.logger)

	res, err := api.query(c.Request.Context(), "")
	if err != nil {
		api.queryFailed(resp, err)
		return
	}

	resp.Success(res.Clients)
}

// getClient handles retrieving a specific client
func (api *API) getClient(c *gin.Context) {
	resp := response.New(c, api.logger)

	clientID := c.Param("id")
	res, err := api.query(c.Request.Context(), clientID)
	if err != nil {
		api.queryFailed(resp, err)
		return
	}
	if !res.Found || len(res.Clients) == 0 {
		resp.NotFound(types.ErrClientNotFound)
		return
	}

	resp.Success(res.Clients[0])
}

func (api *API) queryFailed(resp *response.Handler, err error) {
	if errors.Is(err, context.Canceled) {
		api.logger.Info("Client canceled registry query")
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		resp.Error(http.StatusGatewayTimeout, errors.New("request timeout"))
		return
	}

	api.logger.Error("Failed to query registry", zap.Error(err))
	resp.InternalError(errors.New("failed to query registry"))
}
