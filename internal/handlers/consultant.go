package handlers

import (
	"github.com/estatedesk/portal/internal/services"
	"github.com/estatedesk/portal/pkg/response"
	"github.com/gin-gonic/gin"
)

type ConsultantHandler struct {
	consultantService *services.ConsultantService
}

func NewConsultantHandler(consultantService *services.ConsultantService) *ConsultantHandler {
	return &ConsultantHandler{consultantService: consultantService}
}

// List returns paginated consultants
// GET /api/consultants
func (h *ConsultantHandler) List(c *gin.Context) {
	var req services.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.consultantService.List(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, resp)
}

// GET /api/consultants/:id
func (h *ConsultantHandler) GetByID(c *gin.Context) {
	id, ok := consultantParam(c, "id")
	if !ok {
		return
	}

	consultant, err := h.consultantService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, consultant)
}

// POST /api/consultants
func (h *ConsultantHandler) Create(c *gin.Context) {
	var req services.CreateConsultantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	consultant, err := h.consultantService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, consultant)
}

// PUT /api/consultants/:id
func (h *ConsultantHandler) Update(c *gin.Context) {
	id, ok := consultantParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateConsultantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	consultant, err := h.consultantService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, consultant)
}

// Delete removes a consultant, its hours logs and its assignments
// DELETE /api/consultants/:id
func (h *ConsultantHandler) Delete(c *gin.Context) {
	id, ok := consultantParam(c, "id")
	if !ok {
		return
	}

	if err := h.consultantService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
