package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the unified API response format.
// Peers reconciling assignments read the Data field directly.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AppError carries an HTTP status, an application code and an optional cause.
type AppError struct {
	HTTPStatus int
	Code       int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(status int, msg string, cause []error) *AppError {
	e := &AppError{HTTPStatus: status, Code: status, Message: msg}
	if len(cause) > 0 {
		e.Err = cause[0]
	}
	return e
}

func NewBadRequest(msg string, cause ...error) *AppError {
	return newAppError(http.StatusBadRequest, msg, cause)
}

func NewUnauthorized(msg string) *AppError {
	return newAppError(http.StatusUnauthorized, msg, nil)
}

func NewForbidden(msg string) *AppError {
	return newAppError(http.StatusForbidden, msg, nil)
}

func NewNotFound(msg string, cause ...error) *AppError {
	return newAppError(http.StatusNotFound, msg, cause)
}

func NewConflict(msg string, cause ...error) *AppError {
	return newAppError(http.StatusConflict, msg, cause)
}

func NewServerError(msg string, cause ...error) *AppError {
	return newAppError(http.StatusInternalServerError, msg, cause)
}

// NewBadGateway reports a failed call to an upstream portal.
func NewBadGateway(msg string, cause ...error) *AppError {
	return newAppError(http.StatusBadGateway, msg, cause)
}

func NewServiceUnavailable(msg string, cause ...error) *AppError {
	return newAppError(http.StatusServiceUnavailable, msg, cause)
}

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "ok",
		Data:    data,
	})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error sends an error response. An *AppError anywhere in the chain decides
// the status; anything else becomes a 500.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, Response{
			Code:    appErr.Code,
			Message: appErr.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, Response{
		Code:    500,
		Message: err.Error(),
	})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: 400, Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Response{Code: 401, Message: msg})
}

func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, Response{Code: 403, Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Code: 404, Message: msg})
}

func ServerError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, Response{Code: 500, Message: msg})
}
