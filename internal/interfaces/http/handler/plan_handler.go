package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbilling "github.com/billing/backend/internal/application/billing"
)

// PlanReader serves the plan catalog read side
type PlanReader interface {
	ListActivePlans(ctx context.Context) ([]appbilling.PlanDTO, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*appbilling.PlanDTO, error)
}

// PlanHandler handles plan catalog endpoints
type PlanHandler struct {
	BaseHandler
	plans PlanReader
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(plans PlanReader) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// RegisterRoutes registers plan routes
func (h *PlanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	plans := rg.Group("/plans")
	{
		plans.GET("", h.List)
		plans.GET("/:id", h.Get)
	}
}

// List handles GET /plans
func (h *PlanHandler) List(c *gin.Context) {
	dtos, err := h.plans.ListActivePlans(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dtos)
}

// Get handles GET /plans/:id
func (h *PlanHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid plan id")
		return
	}

	plan, err := h.plans.GetPlan(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}
