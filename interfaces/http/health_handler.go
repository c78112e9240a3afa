package http

import (
	"net/http"

	"post-manager/usecase"

	"github.com/gin-gonic/gin"
)

type IHealthHandler interface {
	Healthz(c *gin.Context)
}

type HealthHandler struct {
	session usecase.ISessionManager
}

func NewHealthHandler(session usecase.ISessionManager) IHealthHandler {
	return &HealthHandler{session: session}
}

// Healthz returns OK for health checks along with the current session state.
func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"session": h.session.State(ctx.Request.Context()),
	})
}
