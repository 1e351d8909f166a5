package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/interfaces/http/dto"
	"github.com/billing/backend/internal/interfaces/http/middleware"
)

// UserIDHeader identifies the acting user. Authentication is handled
// upstream; this layer trusts the header.
const UserIDHeader = "X-User-ID"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getUserID extracts and parses the acting user's id
func getUserID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader(UserIDHeader)
	if raw == "" {
		return uuid.Nil, errors.New("missing " + UserIDHeader + " header")
	}
	return uuid.Parse(raw)
}

// Success sends a 200 success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Declined sends an unsuccessful-outcome response, deriving the status
// from the error code. Data carries the structured outcome.
func (h *BaseHandler) Declined(c *gin.Context, data any, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewDeclinedResponse(data, code, message))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.errorResponse(c, dto.ErrCodeBadRequest, message)
}

// HandleError converts domain errors to HTTP responses. Unknown error
// types become a 500 without leaking internals.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.errorResponse(c, domainErr.Code, domainErr.Message)
		return
	}

	h.errorResponse(c, dto.ErrCodeInternal, "An unexpected error occurred")
}

func (h *BaseHandler) errorResponse(c *gin.Context, code, message string) {
	requestID := middleware.GetRequestID(c)
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, requestID))
}
