package handlers

import (
	"errors"

	"github.com/estatedesk/portal/internal/models"
	"github.com/estatedesk/portal/internal/services"
	"github.com/estatedesk/portal/pkg/response"
	"github.com/gin-gonic/gin"
)

// fail maps service errors onto the response envelope.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		response.Error(c, response.NewNotFound("not found", err))
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, models.ErrInvalidID):
		response.Error(c, response.NewBadRequest(err.Error(), err))
	case errors.Is(err, services.ErrRemoteUnavailable):
		response.Error(c, response.NewBadGateway("remote assignments unavailable", err))
	case errors.Is(err, services.ErrReconcileDisabled):
		response.Error(c, response.NewServiceUnavailable("remote reconciliation not configured", err))
	default:
		response.Error(c, response.NewServerError("storage failure", err))
	}
}

func projectParam(c *gin.Context) (models.ProjectID, bool) {
	id, err := models.ParseProjectID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return "", false
	}
	return id, true
}

func clientParam(c *gin.Context, name string) (models.ClientID, bool) {
	id, err := models.ParseClientID(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return "", false
	}
	return id, true
}

func consultantParam(c *gin.Context, name string) (models.ConsultantID, bool) {
	id, err := models.ParseConsultantID(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid consultant id")
		return "", false
	}
	return id, true
}
