package handlers

import (
	"github.com/estatedesk/portal/internal/middleware"
	"github.com/estatedesk/portal/internal/services"
	"github.com/estatedesk/portal/internal/utils"
	"github.com/estatedesk/portal/pkg/response"
	"github.com/gin-gonic/gin"
)

type HoursLogHandler struct {
	hoursService *services.HoursLogService
}

func NewHoursLogHandler(hoursService *services.HoursLogService) *HoursLogHandler {
	return &HoursLogHandler{hoursService: hoursService}
}

// scope pins a consultant caller to their own logs.
func scope(c *gin.Context, f *services.HoursLogFilter) {
	if middleware.GetRole(c) == utils.RoleConsultant {
		f.ConsultantID = middleware.GetSubjectID(c)
	}
}

// GET /api/hours-logs
func (h *HoursLogHandler) List(c *gin.Context) {
	var f services.HoursLogFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	scope(c, &f)

	logs, err := h.hoursService.List(c.Request.Context(), &f)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, logs)
}

// Summary totals hours per project
// GET /api/hours-logs/summary
func (h *HoursLogHandler) Summary(c *gin.Context) {
	var f services.HoursLogFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	scope(c, &f)

	summary, err := h.hoursService.Summary(c.Request.Context(), &f)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, summary)
}

// Create logs hours. Consultants may only log for themselves.
// POST /api/hours-logs
func (h *HoursLogHandler) Create(c *gin.Context) {
	var req services.CreateHoursLogRequest
	if middleware.GetRole(c) == utils.RoleConsultant {
		req.ConsultantID = middleware.GetSubjectID(c)
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if middleware.GetRole(c) == utils.RoleConsultant && req.ConsultantID != middleware.GetSubjectID(c) {
		response.Forbidden(c, "consultants can only log their own hours")
		return
	}

	log, err := h.hoursService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, log)
}

// DELETE /api/hours-logs/:id
func (h *HoursLogHandler) Delete(c *gin.Context) {
	if err := h.hoursService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
