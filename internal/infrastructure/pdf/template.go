package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared/valueobject"
)

// documentTemplate is the built-in layout for invoices and offers. It is
// intentionally plain; styling lives inline so the renderer needs no assets.
const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 11pt; color: #222; }
h1 { font-size: 16pt; margin-bottom: 2pt; }
.meta { color: #666; font-size: 9pt; margin-bottom: 24pt; }
.address { margin-bottom: 24pt; }
table.items { width: 100%; border-collapse: collapse; margin-bottom: 16pt; }
table.items th { text-align: left; border-bottom: 1px solid #999; padding: 4pt 6pt; font-size: 9pt; text-transform: uppercase; color: #666; }
table.items td { padding: 4pt 6pt; border-bottom: 1px solid #eee; }
td.num, th.num { text-align: right; }
.totals { width: 40%; margin-left: 60%; }
.totals td { padding: 2pt 6pt; }
.totals .grand { font-weight: bold; border-top: 1px solid #999; }
.footer { margin-top: 32pt; font-size: 9pt; color: #666; white-space: pre-line; }
</style>
</head>
<body>
<h1>{{.Title}} {{.Number}}</h1>
<div class="meta">
{{- if .IssuedAt}}{{.DateLabel}}: {{formatDate .IssuedAt}}{{end}}
{{- if .DueAt}} &middot; {{.DueLabel}}: {{formatDate .DueAt}}{{end}}
</div>
<div class="address">
<strong>{{.Customer.Name}}</strong><br>
{{- if .Customer.ContactName}}{{.Customer.ContactName}}<br>{{end}}
{{- if .Customer.Street}}{{.Customer.Street}}<br>{{end}}
{{- if .Customer.City}}{{.Customer.ZIP}} {{.Customer.City}}<br>{{end}}
{{- if .Customer.CountryCode}}{{.Customer.CountryCode}}<br>{{end}}
{{- if .Customer.VatID}}VAT: {{.Customer.VatID}}{{end}}
</div>
{{- if .Subject}}<p>{{.Subject}}</p>{{end}}
<table class="items">
<tr><th>Item</th><th class="num">Qty</th><th class="num">Unit Price</th><th class="num">Tax</th><th class="num">Amount</th></tr>
{{- range .Items}}
<tr>
<td>{{.Name}}{{if .Description}}<br><small>{{.Description}}</small>{{end}}</td>
<td class="num">{{.Quantity}}</td>
<td class="num">{{formatCents .UnitPriceCents}}</td>
<td class="num">{{.TaxPercentage}}%</td>
<td class="num">{{formatCents .NetCents}}</td>
</tr>
{{- end}}
</table>
<table class="totals">
<tr><td>Net</td><td class="num">{{formatCents .NetCents}}</td></tr>
<tr><td>Tax</td><td class="num">{{formatCents .TaxCents}}</td></tr>
<tr class="grand"><td>Total</td><td class="num">{{formatCents .TotalCents}}</td></tr>
</table>
{{- if .FooterText}}<div class="footer">{{.FooterText}}</div>{{end}}
</body>
</html>`

// DocumentItem is a line item prepared for the template
type DocumentItem struct {
	Name           string
	Description    string
	Quantity       decimal.Decimal
	UnitPriceCents int64
	TaxPercentage  decimal.Decimal
	NetCents       int64
}

// DocumentData is the view model the document template renders
type DocumentData struct {
	Title       string
	Number      string
	DateLabel   string
	DueLabel    string
	IssuedAt    *time.Time
	DueAt       *time.Time
	Customer    billing.CustomerSnapshot
	Subject     string
	FooterText  string
	Items       []DocumentItem
	NetCents    int64
	TaxCents    int64
	TotalCents  int64
}

// TemplateEngine renders documents into HTML ready for PDF printing
type TemplateEngine struct {
	tmpl *template.Template
}

// NewTemplateEngine parses the built-in document template
func NewTemplateEngine() (*TemplateEngine, error) {
	tmpl, err := template.New("document").Funcs(template.FuncMap{
		"formatCents": formatCents,
		"formatDate":  formatDate,
	}).Parse(documentTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document template: %w", err)
	}
	return &TemplateEngine{tmpl: tmpl}, nil
}

// RenderDocument builds the HTML for an invoice or offer
func (e *TemplateEngine) RenderDocument(inv *billing.Invoice) (string, error) {
	data := buildDocumentData(inv)

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render document template: %w", err)
	}
	return buf.String(), nil
}

func buildDocumentData(inv *billing.Invoice) DocumentData {
	data := DocumentData{
		Number:     inv.Number(),
		Customer:   inv.Customer,
		Subject:    inv.Subject,
		FooterText: inv.FooterText,
		TaxCents:   inv.TotalTaxCents,
		TotalCents: inv.TotalCents,
		NetCents:   inv.TotalCents - inv.TotalTaxCents,
		DueAt:      inv.DueAt,
	}

	if inv.Kind == billing.DocumentKindOffer {
		data.Title = "Offer"
		data.DateLabel = "Offer Date"
		data.DueLabel = "Valid Until"
		data.IssuedAt = inv.OfferedAt
	} else {
		data.Title = "Invoice"
		data.DateLabel = "Invoice Date"
		data.DueLabel = "Due"
		data.IssuedAt = inv.InvoicedAt
	}

	for _, item := range inv.Items {
		data.Items = append(data.Items, DocumentItem{
			Name:           item.Name,
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TaxPercentage:  item.TaxPercentage,
			NetCents:       item.NetCents(),
		})
	}

	return data
}

func formatCents(cents int64) string {
	return valueobject.NewMoneyEUR(cents).String()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
