package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbilling "github.com/billing/backend/internal/application/billing"
)

// InvoiceReader serves the invoice history read side
type InvoiceReader interface {
	ListUserInvoices(ctx context.Context, userID uuid.UUID) ([]appbilling.InvoiceDTO, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (*appbilling.InvoiceDTO, error)
}

// InvoiceHandler handles invoice query endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices InvoiceReader
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices InvoiceReader) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/:userId/invoices", h.ListForUser)
	rg.GET("/invoices/:id", h.Get)
}

// ListForUser handles GET /users/:userId/invoices
func (h *InvoiceHandler) ListForUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		h.BadRequest(c, "invalid user id")
		return
	}

	dtos, err := h.invoices.ListUserInvoices(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dtos)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid invoice id")
		return
	}

	invoice, err := h.invoices.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}
