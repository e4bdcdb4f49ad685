package handlers

import (
	"net/http"

	"github.com/estatedesk/portal/internal/events"
	"github.com/estatedesk/portal/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler reports the state of the database and the event plumbing.
type HealthHandler struct {
	db         *gorm.DB
	bus        *events.Bus
	hub        *services.SSEHub
	reconciler *services.Reconciler
}

func NewHealthHandler(db *gorm.DB, bus *events.Bus, hub *services.SSEHub, reconciler *services.Reconciler) *HealthHandler {
	return &HealthHandler{db: db, bus: bus, hub: hub, reconciler: reconciler}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"
	status := http.StatusOK

	dbStatus := "ok"
	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}
	if overall != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":  overall,
		"service": "estatedesk-portal",
		"components": gin.H{
			"database":          dbStatus,
			"bus_listeners":     h.bus.Count(),
			"sse_clients":       h.hub.ClientCount(),
			"reconcile_enabled": h.reconciler.Enabled(),
		},
	})
}
