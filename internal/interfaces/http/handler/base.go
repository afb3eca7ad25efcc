// Package handler contains the HTTP handlers of the sync API.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/erpsync/internal/infrastructure/logger"
	"github.com/erp/erpsync/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(logger.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError classifies err and sends the matching error response.
// Internal errors are logged and their message is not exposed.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	code := dto.ErrorCode(err)
	status := dto.GetHTTPStatus(code)
	message := err.Error()
	if code == dto.ErrCodeInternal {
		logger.L(c.Request.Context()).Error("Request failed", zap.Error(err))
		message = "internal error"
	}
	_ = c.Error(err)
	h.Error(c, status, code, message)
}
