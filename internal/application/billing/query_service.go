package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// QueryService serves the read side: plan catalog and invoice history
type QueryService struct {
	planRepo    billing.PlanRepository
	invoiceRepo billing.InvoiceRepository
}

// NewQueryService creates a new QueryService
func NewQueryService(planRepo billing.PlanRepository, invoiceRepo billing.InvoiceRepository) *QueryService {
	return &QueryService{planRepo: planRepo, invoiceRepo: invoiceRepo}
}

// ListActivePlans returns the plans available for new subscriptions
func (s *QueryService) ListActivePlans(ctx context.Context) ([]PlanDTO, error) {
	plans, err := s.planRepo.FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	dtos := make([]PlanDTO, 0, len(plans))
	for _, p := range plans {
		dtos = append(dtos, toPlanDTO(p))
	}
	return dtos, nil
}

// GetPlan returns a single plan by id
func (s *QueryService) GetPlan(ctx context.Context, id uuid.UUID) (*PlanDTO, error) {
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.ErrPlanNotFound
		}
		return nil, fmt.Errorf("finding plan: %w", err)
	}
	dto := toPlanDTO(plan)
	return &dto, nil
}

// ListUserInvoices returns a user's billing history, most recent first
func (s *QueryService) ListUserInvoices(ctx context.Context, userID uuid.UUID) ([]InvoiceDTO, error) {
	invoices, err := s.invoiceRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	dtos := make([]InvoiceDTO, 0, len(invoices))
	for _, i := range invoices {
		dtos = append(dtos, toInvoiceDTO(i))
	}
	return dtos, nil
}

// GetInvoice returns a single invoice by id
func (s *QueryService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("finding invoice: %w", err)
	}
	dto := toInvoiceDTO(invoice)
	return &dto, nil
}
