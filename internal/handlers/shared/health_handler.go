package handlers

import (
	"context"
	"net/http"
	"time"

	"goride-ledger/internal/utils"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks  map[string]Pinger
	clients func() int
}

// NewHealthHandler reports on each named dependency. clients may be nil.
func NewHealthHandler(checks map[string]Pinger, clients func() int) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		clients: clients,
	}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			components[name] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "healthy"
	}

	body := gin.H{
		"status":     "healthy",
		"version":    utils.AppVersion,
		"components": components,
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if h.clients != nil {
		body["websocket_clients"] = h.clients()
	}
	c.JSON(status, body)
}
