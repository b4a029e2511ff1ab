package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// SettingsService manages the per-tenant billing settings
type SettingsService struct {
	settings billing.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settings billing.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns the tenant's settings, falling back to defaults when the tenant
// has not configured anything yet. The defaults are not persisted by a read.
func (s *SettingsService) Get(ctx context.Context, tenantID uuid.UUID) (*SettingsResponse, error) {
	settings, err := s.settings.FindForTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotConfigured) {
			response := ToSettingsResponse(billing.NewBillingSettings(tenantID))
			return &response, nil
		}
		return nil, err
	}

	response := ToSettingsResponse(settings)
	return &response, nil
}

// Update changes the tenant's settings, creating them on first write. Changing
// a number template does not reset the issued numbers; the sequence restarts
// at 1 on its own once the rendered literal portion no longer matches.
func (s *SettingsService) Update(ctx context.Context, tenantID uuid.UUID, req UpdateSettingsRequest) (*SettingsResponse, error) {
	settings, err := s.settings.FindForTenant(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotConfigured) {
			return nil, err
		}
		settings = billing.NewBillingSettings(tenantID)
	}

	if req.InvoiceNumberTemplate != nil {
		settings.InvoiceNumbers.Template = *req.InvoiceNumberTemplate
		// let the sequence re-derive the increment run from the new template
		settings.InvoiceNumbers.IncrementTemplate = ""
	}
	if req.OfferNumberTemplate != nil {
		settings.OfferNumbers.Template = *req.OfferNumberTemplate
		settings.OfferNumbers.IncrementTemplate = ""
	}
	if req.DefaultInvoiceDueDays != nil {
		if *req.DefaultInvoiceDueDays <= 0 {
			return nil, shared.NewDomainError("INVALID_DUE_DAYS", "Invoice due days must be positive")
		}
		settings.DefaultInvoiceDueDays = *req.DefaultInvoiceDueDays
	}
	if req.OfferValidityDays != nil {
		if *req.OfferValidityDays <= 0 {
			return nil, shared.NewDomainError("INVALID_VALIDITY_DAYS", "Offer validity days must be positive")
		}
		settings.OfferValidityDays = *req.OfferValidityDays
	}
	if req.CompanyName != nil {
		settings.CompanyName = *req.CompanyName
	}
	if req.EmailFrom != nil {
		settings.EmailFrom = *req.EmailFrom
	}
	settings.Touch()

	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}

	response := ToSettingsResponse(settings)
	return &response, nil
}
