package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/estatedesk/portal/internal/events"
	"github.com/estatedesk/portal/internal/models"
	"github.com/estatedesk/portal/internal/services"
	"github.com/estatedesk/portal/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSearch(t *testing.T) {
	db := setupTestDB(t)
	db.Create(&models.Client{ID: "x1", Name: "Harper Lane", Email: "harper@example.com", Status: "new_lead"})
	db.Create(&models.Client{ID: "x2", Name: "Quinn Moss", Status: "closed"})
	db.Create(&models.Consultant{ID: "c1", Name: "Dana Harrow", Status: "active"})
	db.Create(&models.Project{ID: "p1", Name: "Harbor Lofts", Status: "active"})

	r := gin.New()
	r.GET("/api/search", NewSearchHandler(db).Search)

	w, env := doJSON(r, "GET", "/api/search?q=har", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var result SearchResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 3 {
		t.Errorf("expected 3 hits, got %+v", result)
	}
	if len(result.Clients) != 1 || result.Clients[0].ID != "x1" {
		t.Errorf("clients = %+v", result.Clients)
	}

	w, _ = doJSON(r, "GET", "/api/search?q=h", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("short query: expected 400, got %d", w.Code)
	}
}

func TestMetrics(t *testing.T) {
	db := setupTestDB(t)
	bus := events.NewBus()
	st := store.New(store.NewMemoryKV(), bus)
	assignments := services.NewAssignmentService(st, bus)
	hub := services.NewSSEHub()
	detach := hub.Attach(bus)
	defer detach()

	ctx := t.Context()
	assignments.AssignClientToProject(ctx, "p1", "x1")
	assignments.AssignConsultantToProject(ctx, "p1", "c1")

	metrics := NewMetricsHandler(db, bus, hub, assignments)
	defer metrics.Close()
	assignments.RemoveConsultantFromProject(ctx, "p1", "c1")

	r := gin.New()
	r.GET("/metrics", metrics.Metrics)

	w, _ := doJSON(r, "GET", "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"portal_bus_listeners 2",
		"portal_client_consultant_edges 1",
		"portal_project_consultant_edges 0",
		`portal_assignment_events_total{type="project-consultant"} 1`,
		"# TYPE portal_sse_active_clients gauge",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
