package v1

import (
	"errors"

	"pollcmd/internal/server/api/response"
	"pollcmd/internal/server/controller"
	"pollcmd/internal/server/event"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CommandRequest is the body of POST /commands
type CommandRequest struct {
	Input string `json:"input" binding:"required"`
}

// RegisterCommandRoutes registers command routes
func (api *API) RegisterCommandRoutes(r *gin.RouterGroup) {
	r.POST("/commands", api.createCommand)
}

// createCommand queues a command for every known client, like a line typed on stdin
func (api *API) createCommand(c *gin.Context) {
	resp := response.New(c, api.logger)

	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(errors.New("invalid command format"))
		return
	}

	line, err := controller.ParseLine(req.Input)
	if err != nil {
		resp.BadRequest(err)
		return
	}

	// The loop strips the line itself, exactly as it does for stdin input
	api.sink.Push(event.NewCommand{Line: req.Input})
	api.logger.Debug("Command queued from API",
		zap.String("input", line),
		zap.String("request_id", c.GetString("request_id")))

	resp.Accepted(gin.H{"input": line})
}
