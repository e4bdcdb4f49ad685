package handlers

import (
	"github.com/estatedesk/portal/internal/services"
	"github.com/estatedesk/portal/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuditLogHandler struct {
	auditService *services.AuditLogService
}

func NewAuditLogHandler(auditService *services.AuditLogService) *AuditLogHandler {
	return &AuditLogHandler{auditService: auditService}
}

// GET /api/audit-logs
func (h *AuditLogHandler) List(c *gin.Context) {
	var req services.AuditLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.auditService.List(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, resp)
}
