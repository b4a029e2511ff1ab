package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
)

// CreateInvoiceRequest creates a new draft document for a customer
type CreateInvoiceRequest struct {
	Kind       billing.DocumentKind `json:"kind" binding:"required,documentkind"`
	CustomerID uuid.UUID            `json:"customer_id" binding:"required"`
	User       string               `json:"-"`
}

// LinkedExpenseInput mirrors billing.LinkedExpense for item updates
type LinkedExpenseInput struct {
	Name       string     `json:"name" binding:"required"`
	PriceCents int64      `json:"price_cents"`
	CategoryID *uuid.UUID `json:"category_id"`
	Enabled    bool       `json:"enabled"`
}

// InvoiceItemInput is one line item in an update request
type InvoiceItemInput struct {
	ID             *uuid.UUID           `json:"id"`
	Name           string               `json:"name" binding:"required"`
	Description    string               `json:"description"`
	Quantity       decimal.Decimal      `json:"quantity" binding:"required"`
	UnitPriceCents int64                `json:"unit_price_cents"`
	TaxPercentage  decimal.Decimal      `json:"tax_percentage"`
	ProductID      *uuid.UUID           `json:"product_id"`
	LinkedExpenses []LinkedExpenseInput `json:"linked_expenses"`
}

// UpdateInvoiceRequest updates the editable content of a document. Nil fields
// are left untouched.
type UpdateInvoiceRequest struct {
	Items      []InvoiceItemInput `json:"items"`
	Subject    *string            `json:"subject"`
	FooterText *string            `json:"footer_text"`
	CustomerID *uuid.UUID         `json:"customer_id"`
	InvoicedAt *time.Time         `json:"invoiced_at"`
	OfferedAt  *time.Time         `json:"offered_at"`
	DueAt      *time.Time         `json:"due_at"`
	User       string             `json:"-"`
}

// SubmitInvoiceRequest submits a document through a channel. A SendAt in the
// future turns the submission into a scheduled send.
type SubmitInvoiceRequest struct {
	Type   billing.SubmissionType `json:"type" binding:"required,submissiontype"`
	SendAt *time.Time             `json:"send_at"`
	User   string                 `json:"-"`
}

// PaymentRequest records a payment against a sent invoice
type PaymentRequest struct {
	CentsPaid int64      `json:"cents_paid" binding:"required"`
	Via       string     `json:"via"`
	PaidAt    *time.Time `json:"paid_at"`
	User      string     `json:"-"`
}

// InvoiceListFilter narrows and pages the document list
type InvoiceListFilter struct {
	Kind     billing.DocumentKind  `form:"kind"`
	Status   billing.InvoiceStatus `form:"status"`
	Search   string                `form:"search"`
	Page     int                   `form:"page"`
	PageSize int                   `form:"page_size"`
	OrderBy  string                `form:"order_by"`
	OrderDir string                `form:"order_dir"`
}

// ActivityResponse is one rendered activity log entry
type ActivityResponse struct {
	ID            uuid.UUID  `json:"id"`
	ActivityAt    time.Time  `json:"activity_at"`
	Type          string     `json:"type"`
	DisplayText   string     `json:"display_text"`
	User          string     `json:"user,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	AttachmentID  *uuid.UUID `json:"attachment_id,omitempty"`
	AttachToEmail bool       `json:"attach_to_email,omitempty"`
	JobRef        *uuid.UUID `json:"job_ref,omitempty"`
}

// SubmissionResponse is one recorded submission
type SubmissionResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	SubmittedAt time.Time  `json:"submitted_at"`
	IsScheduled bool       `json:"is_scheduled"`
	IsCancelled bool       `json:"is_cancelled"`
	JobID       *uuid.UUID `json:"job_id,omitempty"`
}

// InvoiceItemResponse is one line item of a document
type InvoiceItemResponse struct {
	ID             uuid.UUID               `json:"id"`
	Name           string                  `json:"name"`
	Description    string                  `json:"description,omitempty"`
	Quantity       decimal.Decimal         `json:"quantity"`
	UnitPriceCents int64                   `json:"unit_price_cents"`
	TaxPercentage  decimal.Decimal         `json:"tax_percentage"`
	NetCents       int64                   `json:"net_cents"`
	TaxCents       int64                   `json:"tax_cents"`
	ProductID      *uuid.UUID              `json:"product_id,omitempty"`
	LinkedExpenses []billing.LinkedExpense `json:"linked_expenses,omitempty"`
}

// PdfResponse describes the render state of the document's PDF
type PdfResponse struct {
	RequestedAt *time.Time `json:"requested_at,omitempty"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	UpToDate    bool       `json:"up_to_date"`
}

// InvoiceResponse is the full document view
type InvoiceResponse struct {
	ID                 uuid.UUID                `json:"id"`
	Kind               billing.DocumentKind     `json:"kind"`
	Status             billing.InvoiceStatus    `json:"status"`
	Number             string                   `json:"number,omitempty"`
	Customer           billing.CustomerSnapshot `json:"customer"`
	Items              []InvoiceItemResponse    `json:"items"`
	TotalCents         int64                    `json:"total_cents"`
	TotalTaxCents      int64                    `json:"total_tax_cents"`
	Subject            string                   `json:"subject,omitempty"`
	FooterText         string                   `json:"footer_text,omitempty"`
	OfferedAt          *time.Time               `json:"offered_at,omitempty"`
	InvoicedAt         *time.Time               `json:"invoiced_at,omitempty"`
	DueAt              *time.Time               `json:"due_at,omitempty"`
	PaidCents          int64                    `json:"paid_cents"`
	PaidAt             *time.Time               `json:"paid_at,omitempty"`
	PaidVia            string                   `json:"paid_via,omitempty"`
	Activity           []ActivityResponse       `json:"activity"`
	Submissions        []SubmissionResponse     `json:"submissions"`
	PDF                *PdfResponse             `json:"pdf,omitempty"`
	Links              *billing.DocumentLinks   `json:"links,omitempty"`
	ScheduledSendJobID *uuid.UUID               `json:"scheduled_send_job_id,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
	Version            int                      `json:"version"`
}

// InvoiceListResponse is the compact list view
type InvoiceListResponse struct {
	ID         uuid.UUID             `json:"id"`
	Kind       billing.DocumentKind  `json:"kind"`
	Status     billing.InvoiceStatus `json:"status"`
	Number     string                `json:"number,omitempty"`
	Customer   string                `json:"customer"`
	Subject    string                `json:"subject,omitempty"`
	TotalCents int64                 `json:"total_cents"`
	PaidCents  int64                 `json:"paid_cents"`
	DueAt      *time.Time            `json:"due_at,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}

// DownloadURLResponse carries a presigned PDF download link
type DownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UpdateSettingsRequest updates the per-tenant billing settings
type UpdateSettingsRequest struct {
	InvoiceNumberTemplate *string `json:"invoice_number_template"`
	OfferNumberTemplate   *string `json:"offer_number_template"`
	DefaultInvoiceDueDays *int    `json:"default_invoice_due_days"`
	OfferValidityDays     *int    `json:"offer_validity_days"`
	CompanyName           *string `json:"company_name"`
	EmailFrom             *string `json:"email_from"`
}

// SettingsResponse is the settings view
type SettingsResponse struct {
	InvoiceNumberTemplate string `json:"invoice_number_template"`
	LastInvoiceNumber     string `json:"last_invoice_number,omitempty"`
	OfferNumberTemplate   string `json:"offer_number_template"`
	LastOfferNumber       string `json:"last_offer_number,omitempty"`
	DefaultInvoiceDueDays int    `json:"default_invoice_due_days"`
	OfferValidityDays     int    `json:"offer_validity_days"`
	CompanyName           string `json:"company_name,omitempty"`
	EmailFrom             string `json:"email_from,omitempty"`
}

// ToInvoiceResponse converts a domain invoice to its full view
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(inv.Items))
	for idx := range inv.Items {
		item := &inv.Items[idx]
		items = append(items, InvoiceItemResponse{
			ID:             item.ID,
			Name:           item.Name,
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TaxPercentage:  item.TaxPercentage,
			NetCents:       item.NetCents(),
			TaxCents:       item.TaxCents(),
			ProductID:      item.ProductID,
			LinkedExpenses: item.LinkedExpenses,
		})
	}

	activity := make([]ActivityResponse, 0, len(inv.Activity))
	for _, a := range inv.Activity {
		activity = append(activity, ActivityResponse{
			ID:            a.ID,
			ActivityAt:    a.ActivityAt,
			Type:          a.Type.String(),
			DisplayText:   a.Type.DisplayText(),
			User:          a.User,
			Notes:         a.Notes,
			AttachmentID:  a.AttachmentID,
			AttachToEmail: a.AttachToEmail,
			JobRef:        a.JobRef,
		})
	}

	submissions := make([]SubmissionResponse, 0, len(inv.Submissions))
	for _, s := range inv.Submissions {
		submissions = append(submissions, SubmissionResponse{
			ID:          s.ID,
			Type:        s.Type.String(),
			SubmittedAt: s.SubmittedAt,
			IsScheduled: s.IsScheduled,
			IsCancelled: s.IsCancelled,
			JobID:       s.ScheduledSendJobID,
		})
	}

	var pdf *PdfResponse
	if inv.PDF != nil {
		pdf = &PdfResponse{
			RequestedAt: inv.PDF.RequestedAt,
			GeneratedAt: inv.PDF.GeneratedAt,
			UpToDate:    inv.HasCurrentPdf(),
		}
	}

	return InvoiceResponse{
		ID:                 inv.GetID(),
		Kind:               inv.Kind,
		Status:             inv.Status,
		Number:             inv.Number(),
		Customer:           inv.Customer,
		Items:              items,
		TotalCents:         inv.TotalCents,
		TotalTaxCents:      inv.TotalTaxCents,
		Subject:            inv.Subject,
		FooterText:         inv.FooterText,
		OfferedAt:          inv.OfferedAt,
		InvoicedAt:         inv.InvoicedAt,
		DueAt:              inv.DueAt,
		PaidCents:          inv.PaidCents,
		PaidAt:             inv.PaidAt,
		PaidVia:            inv.PaidVia,
		Activity:           activity,
		Submissions:        submissions,
		PDF:                pdf,
		Links:              inv.Links,
		ScheduledSendJobID: inv.ScheduledSendJobID,
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
		Version:            inv.Version,
	}
}

// ToInvoiceListResponses converts domain invoices to their list view
func ToInvoiceListResponses(invoices []billing.Invoice) []InvoiceListResponse {
	out := make([]InvoiceListResponse, 0, len(invoices))
	for idx := range invoices {
		inv := &invoices[idx]
		out = append(out, InvoiceListResponse{
			ID:         inv.GetID(),
			Kind:       inv.Kind,
			Status:     inv.Status,
			Number:     inv.Number(),
			Customer:   inv.Customer.Name,
			Subject:    inv.Subject,
			TotalCents: inv.TotalCents,
			PaidCents:  inv.PaidCents,
			DueAt:      inv.DueAt,
			CreatedAt:  inv.CreatedAt,
		})
	}
	return out
}

// ToSettingsResponse converts domain settings to their view
func ToSettingsResponse(settings *billing.BillingSettings) SettingsResponse {
	return SettingsResponse{
		InvoiceNumberTemplate: settings.InvoiceNumbers.Template,
		LastInvoiceNumber:     settings.InvoiceNumbers.LastNumber,
		OfferNumberTemplate:   settings.OfferNumbers.Template,
		LastOfferNumber:       settings.OfferNumbers.LastNumber,
		DefaultInvoiceDueDays: settings.DefaultInvoiceDueDays,
		OfferValidityDays:     settings.OfferValidityDays,
		CompanyName:           settings.CompanyName,
		EmailFrom:             settings.EmailFrom,
	}
}
