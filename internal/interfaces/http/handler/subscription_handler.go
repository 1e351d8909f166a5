package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbilling "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/interfaces/http/dto"
)

// SubscriptionCreator runs the subscription creation flow
type SubscriptionCreator interface {
	Execute(ctx context.Context, input appbilling.CreateSubscriptionInput) (*appbilling.CreateSubscriptionResult, error)
}

// PlanChanger runs the plan change flow
type PlanChanger interface {
	Execute(ctx context.Context, input appbilling.ChangePlanInput) (*appbilling.ChangePlanResult, error)
}

// CardChanger runs the payment instrument replacement flow
type CardChanger interface {
	Execute(ctx context.Context, input appbilling.ChangeCardInput) (*appbilling.ChangeCardResult, error)
}

// SubscriptionCanceller runs the cancellation flow
type SubscriptionCanceller interface {
	Execute(ctx context.Context, input appbilling.CancelSubscriptionInput) (*appbilling.CancelSubscriptionResult, error)
}

// SubscriptionHandler handles subscription lifecycle endpoints
type SubscriptionHandler struct {
	BaseHandler
	creator   SubscriptionCreator
	changer   PlanChanger
	cards     CardChanger
	canceller SubscriptionCanceller
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(
	creator SubscriptionCreator,
	changer PlanChanger,
	cards CardChanger,
	canceller SubscriptionCanceller,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		creator:   creator,
		changer:   changer,
		cards:     cards,
		canceller: canceller,
	}
}

// RegisterRoutes registers subscription routes
func (h *SubscriptionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	subscriptions := rg.Group("/subscriptions")
	{
		subscriptions.POST("", h.Create)
		subscriptions.PUT("/plan", h.ChangePlan)
		subscriptions.PUT("/card", h.ChangeCard)
		subscriptions.DELETE("", h.Cancel)
	}
}

// CreateSubscriptionRequest is the body for POST /subscriptions
type CreateSubscriptionRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Document  string `json:"document" binding:"required"`
	Phone     string `json:"phone"`
	PlanID    string `json:"plan_id" binding:"required,uuid"`
	CardToken string `json:"card_token" binding:"required"`
}

// CreateSubscriptionResponse is the payload for a creation outcome
type CreateSubscriptionResponse struct {
	SubscriptionID *uuid.UUID `json:"subscription_id,omitempty"`
	InvoiceID      uuid.UUID  `json:"invoice_id"`
	TransactionID  string     `json:"transaction_id,omitempty"`
	Message        string     `json:"message"`
}

// Create handles POST /subscriptions
func (h *SubscriptionHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		h.BadRequest(c, "invalid plan_id")
		return
	}

	result, err := h.creator.Execute(c.Request.Context(), appbilling.CreateSubscriptionInput{
		UserID:    userID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Document:  req.Document,
		Phone:     req.Phone,
		PlanID:    planID,
		CardToken: req.CardToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	payload := CreateSubscriptionResponse{
		SubscriptionID: result.SubscriptionID,
		InvoiceID:      result.InvoiceID,
		TransactionID:  result.TransactionID,
		Message:        result.Message,
	}
	if !result.Success {
		h.Declined(c, payload, dto.ErrCodePaymentDeclined, result.Message)
		return
	}
	h.Created(c, payload)
}

// ChangePlanRequest is the body for PUT /subscriptions/plan
type ChangePlanRequest struct {
	NewPlanID    string  `json:"new_plan_id" binding:"required,uuid"`
	NewCardToken *string `json:"new_card_token"`
}

// ChangePlanResponse is the payload for a plan change outcome
type ChangePlanResponse struct {
	ChangeType    string     `json:"change_type,omitempty"`
	InvoiceID     *uuid.UUID `json:"invoice_id,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`
	AmountCents   int64      `json:"amount_cents"`
	Message       string     `json:"message"`
}

// ChangePlan handles PUT /subscriptions/plan
func (h *SubscriptionHandler) ChangePlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	newPlanID, err := uuid.Parse(req.NewPlanID)
	if err != nil {
		h.BadRequest(c, "invalid new_plan_id")
		return
	}

	result, err := h.changer.Execute(c.Request.Context(), appbilling.ChangePlanInput{
		UserID:       userID,
		NewPlanID:    newPlanID,
		NewCardToken: req.NewCardToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	payload := ChangePlanResponse{
		ChangeType:    result.ChangeType.String(),
		InvoiceID:     result.InvoiceID,
		TransactionID: result.TransactionID,
		AmountCents:   result.AmountCents,
		Message:       result.Message,
	}
	if !result.Success {
		h.Declined(c, payload, dto.ErrCodePaymentDeclined, result.Message)
		return
	}
	h.Success(c, payload)
}

// ChangeCardRequest is the body for PUT /subscriptions/card
type ChangeCardRequest struct {
	CardToken string `json:"card_token" binding:"required"`
}

// ChangeCardResponse is the payload for a card change outcome
type ChangeCardResponse struct {
	CardID         string `json:"card_id"`
	Brand          string `json:"brand"`
	LastFourDigits string `json:"last_four_digits"`
	Message        string `json:"message"`
}

// ChangeCard handles PUT /subscriptions/card
func (h *SubscriptionHandler) ChangeCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req ChangeCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.cards.Execute(c.Request.Context(), appbilling.ChangeCardInput{
		UserID:    userID,
		CardToken: req.CardToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	payload := ChangeCardResponse{
		CardID:         result.CardID,
		Brand:          result.Brand,
		LastFourDigits: result.LastFourDigits,
		Message:        result.Message,
	}
	if !result.Success {
		h.Declined(c, payload, dto.ErrCodeCardRejected, result.Message)
		return
	}
	h.Success(c, payload)
}

// CancelSubscriptionRequest is the body for DELETE /subscriptions
type CancelSubscriptionRequest struct {
	Reason string `json:"reason"`
}

// Cancel handles DELETE /subscriptions
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// body is optional; an empty reason is allowed
	var req CancelSubscriptionRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.canceller.Execute(c.Request.Context(), appbilling.CancelSubscriptionInput{
		UserID: userID,
		Reason: req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if !result.Success {
		h.Declined(c, gin.H{"message": result.Message}, dto.ErrCodeInternal, result.Message)
		return
	}
	h.Success(c, gin.H{"message": result.Message})
}
