package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// Default settings applied when a tenant has not configured its own
const (
	DefaultInvoiceDueDays    = 14
	DefaultOfferValidityDays = 30
)

// BillingSettings holds the per-tenant numbering counters and document
// defaults. The numbering counters are a shared mutable resource: the
// repository serializes NextNumber calls with a row lock so two concurrent
// first-sends can never be issued the same number.
type BillingSettings struct {
	shared.TenantAggregateRoot
	InvoiceNumbers        NumberSequence `gorm:"serializer:json"`
	OfferNumbers          NumberSequence `gorm:"serializer:json"`
	DefaultInvoiceDueDays int            `gorm:"not null;default:14"`
	OfferValidityDays     int            `gorm:"not null;default:30"`
	CompanyName           string
	EmailFrom             string
}

// NewBillingSettings creates settings with default templates for a tenant
func NewBillingSettings(tenantID uuid.UUID) *BillingSettings {
	return &BillingSettings{
		TenantAggregateRoot:   shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumbers:        NumberSequence{Template: "INV-YYYY-####", IncrementTemplate: "####"},
		OfferNumbers:          NumberSequence{Template: "OFF-YYYY-####", IncrementTemplate: "####"},
		DefaultInvoiceDueDays: DefaultInvoiceDueDays,
		OfferValidityDays:     DefaultOfferValidityDays,
	}
}

// NextNumber computes the next number for the given document kind and
// advances the matching sequence. The caller is responsible for persisting
// the mutated settings before the number is used.
func (s *BillingSettings) NextNumber(kind DocumentKind, now time.Time) (string, error) {
	seq := &s.InvoiceNumbers
	if kind == DocumentKindOffer {
		seq = &s.OfferNumbers
	}
	next, err := seq.Next(now)
	if err != nil {
		return "", err
	}
	seq.LastNumber = next
	s.Touch()
	return next, nil
}

// SettingsAccessor is the narrow settings view the invoice aggregate needs
// when a submission transitions a draft to sent. NextNumber must be strictly
// serialized per tenant (see SettingsRepository.NextNumber).
type SettingsAccessor interface {
	NextNumber(ctx context.Context, kind DocumentKind) (string, error)
	InvoiceDueDays() int
	ValidityDays() int
}

// SettingsProvider resolves the settings for the current tenant. It returns
// shared.ErrNotConfigured when the tenant has no billing settings yet.
type SettingsProvider func(ctx context.Context) (SettingsAccessor, error)
