package main

import (
	"github.com/estatedesk/portal/internal/handlers"
	"github.com/estatedesk/portal/internal/middleware"
	"github.com/estatedesk/portal/internal/utils"
	"github.com/estatedesk/portal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(svc.cfg.Server.CORSOrigins...))

	healthHandler := handlers.NewHealthHandler(svc.db, svc.bus, svc.hub, svc.reconciler)
	r.GET("/health", healthHandler.CheckHealth)

	metricsHandler := handlers.NewMetricsHandler(svc.db, svc.bus, svc.hub, svc.assignments)
	r.GET("/metrics", metricsHandler.Metrics)

	assignmentHandler := handlers.NewAssignmentHandler(svc.assignments, svc.reconciler, svc.consultants, svc.clients)
	clientHandler := handlers.NewClientHandler(svc.clients)
	consultantHandler := handlers.NewConsultantHandler(svc.consultants)
	projectHandler := handlers.NewProjectHandler(svc.projects)
	hoursHandler := handlers.NewHoursLogHandler(svc.hours)
	auditHandler := handlers.NewAuditLogHandler(svc.audit)
	dashboardHandler := handlers.NewDashboardHandler(svc.dashboard)
	searchHandler := handlers.NewSearchHandler(svc.db)

	syncLimiter := middleware.NewRateLimiter(svc.cfg.RateLimit.SyncRPS, svc.cfg.RateLimit.SyncBurst)

	api := r.Group("/api")
	{
		// SSE Events (public route with internal token validation)
		sseHandler := handlers.NewSSEHandler(svc.hub)
		api.GET("/events/assignments", sseHandler.StreamAssignmentEvents)

		// Any valid token may read
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/me/assignments",
				middleware.RoleRequired(utils.RoleAdmin, utils.RoleConsultant, utils.RoleClient),
				assignmentHandler.Me)

			protected.GET("/search", searchHandler.Search)

			// Projects
			protected.GET("/projects", projectHandler.List)
			protected.GET("/projects/:id", projectHandler.GetByID)
			protected.GET("/projects/:id/consultants", assignmentHandler.ProjectConsultants)
			protected.GET("/projects/:id/clients", assignmentHandler.ProjectClients)
			protected.GET("/projects/:id/available-consultants", assignmentHandler.AvailableConsultants)
			protected.GET("/projects/:id/available-clients", assignmentHandler.AvailableClients)

			// Clients
			protected.GET("/clients", clientHandler.List)
			protected.GET("/clients/:id", clientHandler.GetByID)
			protected.GET("/clients/:id/projects", assignmentHandler.ClientProjects)
			protected.GET("/clients/:id/consultants", assignmentHandler.ClientConsultants)

			// Consultants
			protected.GET("/consultants", consultantHandler.List)
			protected.GET("/consultants/:id", consultantHandler.GetByID)
			protected.GET("/consultants/:id/projects", assignmentHandler.ConsultantProjects)
			protected.GET("/consultants/:id/clients", assignmentHandler.ConsultantClients)

			// Relation export read by peer portals
			protected.GET("/assignments/client-consultant", assignmentHandler.ClientConsultantList)

			// Hours logs; consultants are pinned to their own rows
			hours := protected.Group("/hours-logs",
				middleware.RoleRequired(utils.RoleAdmin, utils.RoleConsultant),
				middleware.AuditLog(svc.audit))
			{
				hours.GET("", hoursHandler.List)
				hours.GET("/summary", hoursHandler.Summary)
				hours.POST("", hoursHandler.Create)
			}
		}

		// Writes require admin
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog(svc.audit))
		{
			admin.POST("/projects", projectHandler.Create)
			admin.PUT("/projects/:id", projectHandler.Update)
			admin.DELETE("/projects/:id", projectHandler.Delete)
			admin.POST("/projects/:id/consultants", assignmentHandler.AssignConsultant)
			admin.POST("/projects/:id/clients", assignmentHandler.AssignClient)
			admin.DELETE("/projects/:id/consultants/:consultantID", assignmentHandler.RemoveConsultant)
			admin.DELETE("/projects/:id/clients/:clientID", assignmentHandler.RemoveClient)
			admin.POST("/projects/:id/setup", assignmentHandler.Setup)

			admin.POST("/clients", clientHandler.Create)
			admin.PUT("/clients/:id", clientHandler.Update)
			admin.DELETE("/clients/:id", clientHandler.Delete)
			admin.POST("/clients/:id/consultants", assignmentHandler.LinkConsultant)
			admin.DELETE("/clients/:id/consultants/:consultantID", assignmentHandler.UnlinkConsultant)

			admin.POST("/consultants", consultantHandler.Create)
			admin.PUT("/consultants/:id", consultantHandler.Update)
			admin.DELETE("/consultants/:id", consultantHandler.Delete)

			admin.DELETE("/hours-logs/:id", hoursHandler.Delete)

			admin.POST("/assignments/client-consultant/sync", syncLimiter.Middleware(), assignmentHandler.Sync)

			admin.GET("/audit-logs", auditHandler.List)
			admin.GET("/dashboard/stats", dashboardHandler.GetStats)
		}
	}
}
