package main

import (
	"github.com/estatedesk/portal/internal/config"
	"github.com/estatedesk/portal/internal/events"
	"github.com/estatedesk/portal/internal/models"
	"github.com/estatedesk/portal/internal/services"
	"github.com/estatedesk/portal/internal/store"
	"github.com/estatedesk/portal/internal/utils"
	"github.com/estatedesk/portal/pkg/logger"
	"gorm.io/gorm"
)

// appServices holds all initialized services needed by the application.
type appServices struct {
	cfg         *config.Config
	db          *gorm.DB
	bus         *events.Bus
	hub         *services.SSEHub
	detachHub   func()
	assignments *services.AssignmentService
	reconciler  *services.Reconciler
	clients     *services.ClientService
	consultants *services.ConsultantService
	projects    *services.ProjectService
	hours       *services.HoursLogService
	dashboard   *services.DashboardService
	audit       *services.AuditLogService
}

// bootstrap initializes all application dependencies: database, relation
// store, services and the audit retention scheduler.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	db := models.GetDB()

	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	bus := events.NewBus()
	st := store.New(store.NewGormKV(db), bus)
	assignments := services.NewAssignmentService(st, bus)

	hub := services.NewSSEHub()
	detach := hub.Attach(bus)

	audit := services.NewAuditLogService(db, cfg.Audit)
	if err := audit.StartScheduler(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start audit log cleanup")
	}

	reconciler := services.NewReconciler(st, cfg.Remote)
	if !reconciler.Enabled() {
		logger.Info().Msg("remote assignment reconciliation not configured")
	}

	return &appServices{
		cfg:         cfg,
		db:          db,
		bus:         bus,
		hub:         hub,
		detachHub:   detach,
		assignments: assignments,
		reconciler:  reconciler,
		clients:     services.NewClientService(db, assignments),
		consultants: services.NewConsultantService(db, assignments),
		projects:    services.NewProjectService(db, assignments),
		hours:       services.NewHoursLogService(db),
		dashboard:   services.NewDashboardService(db, assignments),
		audit:       audit,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.audit.StopScheduler()
	s.detachHub()
	logger.Info().Msg("All schedulers stopped")

	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close database")
		}
	}
}
