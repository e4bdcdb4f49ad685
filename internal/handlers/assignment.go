package handlers

import (
	"time"

	"github.com/estatedesk/portal/internal/middleware"
	"github.com/estatedesk/portal/internal/models"
	"github.com/estatedesk/portal/internal/services"
	"github.com/estatedesk/portal/internal/utils"
	"github.com/estatedesk/portal/pkg/response"
	"github.com/gin-gonic/gin"
)

type AssignmentHandler struct {
	assignments *services.AssignmentService
	reconciler  *services.Reconciler
	consultants *services.ConsultantService
	clients     *services.ClientService
}

func NewAssignmentHandler(
	assignments *services.AssignmentService,
	reconciler *services.Reconciler,
	consultants *services.ConsultantService,
	clients *services.ClientService,
) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		reconciler:  reconciler,
		consultants: consultants,
		clients:     clients,
	}
}

type AssignConsultantRequest struct {
	ConsultantID string `json:"consultant_id" binding:"required"`
}

type AssignClientRequest struct {
	ClientID string `json:"client_id" binding:"required"`
}

type SetupRequest struct {
	ConsultantIDs []string `json:"consultant_ids"`
	ClientIDs     []string `json:"client_ids"`
}

// ProjectConsultants lists consultants on a project
// GET /api/projects/:id/consultants
func (h *AssignmentHandler) ProjectConsultants(c *gin.Context) {
	p, ok := projectParam(c)
	if !ok {
		return
	}
	response.Success(c, h.assignments.ConsultantsForProject(c.Request.Context(), p))
}

// GET /api/projects/:id/clients
func (h *AssignmentHandler) ProjectClients(c *gin.Context) {
	p, ok := projectParam(c)
	if !ok {
		return
	}
	response.Success(c, h.assignments.ClientsForProject(c.Request.Context(), p))
}

// AvailableConsultants lists consultants not yet on the project
// GET /api/projects/:id/available-consultants
func (h *AssignmentHandler) AvailableConsultants(c *gin.Context) {
	p, ok := projectParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	all, err := h.consultants.IDs(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, h.assignments.AvailableConsultantsForProject(ctx, p, all))
}

// GET /api/projects/:id/available-clients
func (h *AssignmentHandler) AvailableClients(c *gin.Context) {
	p, ok := projectParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	all, err := h.clients.IDs(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, h.assignments.AvailableClientsForProject(ctx, p, all))
}

// AssignConsultant puts a consultant on a project. An existing assignment
// answers 200 with created=false.
// POST /api/projects/:id/consultants
func (h *AssignmentHandler) AssignConsultant(c *gin.Context) {
	p, ok := projectParam(c)
	if !ok {
		return
	}
	var req AssignConsultantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	consultant, err := models.ParseConsultantID(req.ConsultantID)
	if err != nil {
		response.BadRequest(c, "invalid consultant_id")
		return
	}

	result, err := h.assignments.AssignConsultantToProject(c.Request.Context(), p, consultant)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, result)
}

// POST /api/projects/:id/clients
func (h *AssignmentHandler) AssignClient(c *gin.Context) {
	p, ok := projectParam(c)
	if !ok {
		return
	}
	var req AssignClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	client, err := models.ParseClientID(req.ClientID)
	if err != nil {
		response.BadRequest(c, "invalid client_id")
		return
	}

	result, err := h.assignments.AssignClientToProject(c.Request.Context(), p, client)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, result)
}

// DELETE /api/projects/:id/consultants/:consultantID
func (h *AssignmentHandler) RemoveConsultant(c *gin.Context) {
	p, ok := projectParam(c)
	if !ok {
		return
	}
	consultant, ok := consultantParam(c, "consultantID")
	if !ok {
		return
	}

	removed, err := h.assignments.RemoveConsultantFromProject(c.Request.Context(), p, consultant)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"removed": removed})
}

// DELETE /api/projects/:id/clients/:clientID
func (h *AssignmentHandler) RemoveClient(c *gin.Context) {
	p, ok := projectParam(c)
	if !ok {
		return
	}
	client, ok := clientParam(c, "clientID")
	if !ok {
		return
	}

	removed, err := h.assignments.RemoveClientFromProject(c.Request.Context(), p, client)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"removed": removed})
}

// Setup assigns a whole team in one step
// POST /api/projects/:id/setup
func (h *AssignmentHandler) Setup(c *gin.Context) {
	p, ok := projectParam(c)
	if !ok {
		return
	}
	var req SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	consultants, err := models.ParseConsultantIDs(req.ConsultantIDs)
	if err != nil {
		response.BadRequest(c, "invalid consultant_ids")
		return
	}
	clients, err := models.ParseClientIDs(req.ClientIDs)
	if err != nil {
		response.BadRequest(c, "invalid client_ids")
		return
	}

	result, err := h.assignments.SetupProjectAssignments(c.Request.Context(), p, consultants, clients)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, result)
}

// GET /api/consultants/:id/projects
func (h *AssignmentHandler) ConsultantProjects(c *gin.Context) {
	consultant, ok := consultantParam(c, "id")
	if !ok {
		return
	}
	response.Success(c, h.assignments.ProjectsForConsultant(c.Request.Context(), consultant))
}

// GET /api/consultants/:id/clients
func (h *AssignmentHandler) ConsultantClients(c *gin.Context) {
	consultant, ok := consultantParam(c, "id")
	if !ok {
		return
	}
	response.Success(c, h.assignments.ClientsForConsultant(c.Request.Context(), consultant))
}

// GET /api/clients/:id/projects
func (h *AssignmentHandler) ClientProjects(c *gin.Context) {
	client, ok := clientParam(c, "id")
	if !ok {
		return
	}
	response.Success(c, h.assignments.ProjectsForClient(c.Request.Context(), client))
}

// GET /api/clients/:id/consultants
func (h *AssignmentHandler) ClientConsultants(c *gin.Context) {
	client, ok := clientParam(c, "id")
	if !ok {
		return
	}
	response.Success(c, h.assignments.ConsultantsForClient(c.Request.Context(), client))
}

// POST /api/clients/:id/consultants
func (h *AssignmentHandler) LinkConsultant(c *gin.Context) {
	client, ok := clientParam(c, "id")
	if !ok {
		return
	}
	var req AssignConsultantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	consultant, err := models.ParseConsultantID(req.ConsultantID)
	if err != nil {
		response.BadRequest(c, "invalid consultant_id")
		return
	}

	created, err := h.assignments.AssignConsultantToClient(c.Request.Context(), client, consultant, true)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, services.AssignResult{Created: created, Derived: []services.Link{}})
}

// DELETE /api/clients/:id/consultants/:consultantID
func (h *AssignmentHandler) UnlinkConsultant(c *gin.Context) {
	client, ok := clientParam(c, "id")
	if !ok {
		return
	}
	consultant, ok := consultantParam(c, "consultantID")
	if !ok {
		return
	}

	removed, err := h.assignments.RemoveConsultantFromClient(c.Request.Context(), client, consultant)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"removed": removed})
}

// ClientConsultantList serves the relation in the shape the reconciler reads,
// so one portal can reconcile from another.
// GET /api/assignments/client-consultant
func (h *AssignmentHandler) ClientConsultantList(c *gin.Context) {
	edges := h.assignments.ClientConsultantEdges(c.Request.Context())
	rows := make([]services.RemoteAssignment, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, services.RemoteAssignment{
			ClientID:     string(e.A),
			ConsultantID: string(e.B),
			CreatedAt:    e.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	response.Success(c, rows)
}

// Sync pulls the remote client-consultant list and merges it
// POST /api/assignments/client-consultant/sync
func (h *AssignmentHandler) Sync(c *gin.Context) {
	result, err := h.reconciler.SyncClientConsultants(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, result)
}

type MyAssignments struct {
	Role        string                   `json:"role"`
	Projects    []models.ProjectID       `json:"projects,omitempty"`
	Clients     []models.ClientID        `json:"clients,omitempty"`
	Consultants []models.ConsultantID    `json:"consultants,omitempty"`
	Counts      *services.RelationCounts `json:"counts,omitempty"`
}

// Me returns the caller's own assignments
// GET /api/me/assignments
func (h *AssignmentHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	role := middleware.GetRole(c)
	out := MyAssignments{Role: role}

	switch role {
	case utils.RoleAdmin:
		counts := h.assignments.Counts(ctx)
		out.Counts = &counts
	case utils.RoleConsultant:
		id, err := models.ParseConsultantID(middleware.GetSubjectID(c))
		if err != nil {
			response.Forbidden(c, "token is not bound to a consultant")
			return
		}
		out.Projects = h.assignments.ProjectsForConsultant(ctx, id)
		out.Clients = h.assignments.ClientsForConsultant(ctx, id)
	case utils.RoleClient:
		id, err := models.ParseClientID(middleware.GetSubjectID(c))
		if err != nil {
			response.Forbidden(c, "token is not bound to a client")
			return
		}
		out.Projects = h.assignments.ProjectsForClient(ctx, id)
		out.Consultants = h.assignments.ConsultantsForClient(ctx, id)
	default:
		response.Forbidden(c, "unknown role")
		return
	}
	response.Success(c, out)
}
