package handlers

import (
	"context"
	"time"

	"github.com/estatedesk/portal/internal/events"
	"github.com/estatedesk/portal/internal/models"
	"github.com/estatedesk/portal/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var startTime = time.Now()

// MetricsHandler exposes Prometheus metrics from its own registry, so several
// instances (tests) never collide on the default one.
type MetricsHandler struct {
	handler gin.HandlerFunc
	detach  func()
}

func NewMetricsHandler(db *gorm.DB, bus *events.Bus, hub *services.SSEHub, assignments *services.AssignmentService) *MetricsHandler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	eventsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_assignment_events_total",
		Help: "Assignment change events delivered on the bus",
	}, []string{"type"})
	reg.MustRegister(eventsTotal)
	detach := bus.Subscribe(func(ev events.Event) {
		eventsTotal.WithLabelValues(string(ev.Type)).Inc()
	})

	gauge := func(name, help string, fn func() float64) {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, fn))
	}
	count := func(model interface{}) func() float64 {
		return func() float64 {
			var n int64
			db.WithContext(context.Background()).Model(model).Count(&n)
			return float64(n)
		}
	}

	gauge("portal_uptime_seconds", "Time since server start in seconds", func() float64 {
		return time.Since(startTime).Seconds()
	})
	gauge("portal_db_open_connections", "Number of open DB connections", func() float64 {
		if sqlDB, err := db.DB(); err == nil {
			return float64(sqlDB.Stats().OpenConnections)
		}
		return 0
	})
	gauge("portal_bus_listeners", "Listeners subscribed to the assignment event bus", func() float64 {
		return float64(bus.Count())
	})
	gauge("portal_sse_active_clients", "Number of active SSE connections", func() float64 {
		return float64(hub.ClientCount())
	})
	gauge("portal_project_consultant_edges", "Project-consultant assignments", func() float64 {
		return float64(assignments.Counts(context.Background()).ProjectConsultants)
	})
	gauge("portal_project_client_edges", "Project-client assignments", func() float64 {
		return float64(assignments.Counts(context.Background()).ProjectClients)
	})
	gauge("portal_client_consultant_edges", "Client-consultant links", func() float64 {
		return float64(assignments.Counts(context.Background()).ClientConsultants)
	})
	gauge("portal_clients_total", "Clients not deleted", count(&models.Client{}))
	gauge("portal_consultants_total", "Consultants not deleted", count(&models.Consultant{}))
	gauge("portal_projects_total", "Projects not deleted", count(&models.Project{}))

	return &MetricsHandler{
		handler: gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		detach:  detach,
	}
}

// Metrics serves the Prometheus text format.
// GET /metrics
func (h *MetricsHandler) Metrics(c *gin.Context) {
	h.handler(c)
}

// Close stops counting bus events.
func (h *MetricsHandler) Close() {
	h.detach()
}
