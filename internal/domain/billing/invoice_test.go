package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

func newTestTenantID() uuid.UUID {
	return uuid.New()
}

func newTestCustomer() CustomerSnapshot {
	return CustomerSnapshot{
		CustomerID:  uuid.New(),
		Name:        "ACME GmbH",
		ContactName: "Jane Doe",
		Email:       "billing@acme.example",
		Street:      "Hauptstr. 1",
		ZIP:         "10115",
		City:        "Berlin",
		CountryCode: "DE",
	}
}

func newTestItems(t *testing.T) []InvoiceItem {
	t.Helper()
	first, err := NewInvoiceItem("Consulting", decimal.NewFromInt(1), 1000, decimal.NewFromInt(20))
	require.NoError(t, err)
	second, err := NewInvoiceItem("Hosting", decimal.NewFromInt(2), 2000, decimal.NewFromInt(10))
	require.NoError(t, err)
	return []InvoiceItem{*first, *second}
}

// stubSettings implements SettingsAccessor backed by an in-memory sequence
type stubSettings struct {
	settings *BillingSettings
	now      time.Time
}

func (s *stubSettings) NextNumber(_ context.Context, kind DocumentKind) (string, error) {
	return s.settings.NextNumber(kind, s.now)
}

func (s *stubSettings) InvoiceDueDays() int { return s.settings.DefaultInvoiceDueDays }
func (s *stubSettings) ValidityDays() int   { return s.settings.OfferValidityDays }

func newStubSettingsProvider(tenantID uuid.UUID) (SettingsProvider, *BillingSettings) {
	settings := NewBillingSettings(tenantID)
	settings.InvoiceNumbers = NumberSequence{Template: "[INV]-###", IncrementTemplate: "###", LastNumber: "[INV]-001"}
	settings.OfferNumbers = NumberSequence{Template: "OFF-###", IncrementTemplate: "###"}
	provider := func(context.Context) (SettingsAccessor, error) {
		return &stubSettings{settings: settings, now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}, nil
	}
	return provider, settings
}

func eventTypes(inv *Invoice) []string {
	types := make([]string, 0, len(inv.GetDomainEvents()))
	for _, e := range inv.GetDomainEvents() {
		types = append(types, e.EventType())
	}
	return types
}

func TestNewInvoice(t *testing.T) {
	tenantID := newTestTenantID()
	customer := newTestCustomer()

	inv, err := NewInvoice(tenantID, DocumentKindInvoice, customer, "jane")
	require.NoError(t, err)

	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.Equal(t, tenantID, inv.TenantID)
	assert.Equal(t, customer, inv.Customer)
	assert.Empty(t, inv.GetDomainEvents(), "creation must not emit events")
	require.Len(t, inv.Activity, 1)
	assert.Equal(t, ActivityTypeCreated, inv.Activity[0].Type)
	assert.Equal(t, "jane", inv.Activity[0].User)

	_, err = NewInvoice(tenantID, DocumentKind("RECEIPT"), customer, "jane")
	assert.Error(t, err)

	_, err = NewInvoice(tenantID, DocumentKindInvoice, CustomerSnapshot{}, "jane")
	assert.Error(t, err)
}

func TestInvoiceUpdateItemsComputesTotals(t *testing.T) {
	inv, err := NewInvoice(newTestTenantID(), DocumentKindInvoice, newTestCustomer(), "jane")
	require.NoError(t, err)

	require.NoError(t, inv.UpdateItems(newTestItems(t)))

	// 1 x 10.00 at 20% plus 2 x 20.00 at 10%
	assert.Equal(t, int64(600), inv.TotalTaxCents)
	assert.Equal(t, int64(5600), inv.TotalCents)
	assert.NotEmpty(t, inv.ContentHash)
}

func TestInvoiceUpdateItemsFractionalQuantity(t *testing.T) {
	inv, err := NewInvoice(newTestTenantID(), DocumentKindInvoice, newTestCustomer(), "jane")
	require.NoError(t, err)

	quantity, err := decimal.NewFromString("1.5")
	require.NoError(t, err)
	item, err := NewInvoiceItem("Support hours", quantity, 333, decimal.NewFromInt(19))
	require.NoError(t, err)

	require.NoError(t, inv.UpdateItems([]InvoiceItem{*item}))

	// 1.5 x 3.33 = 4.995 rounds to 500; tax 4.995 x 19% = 0.94905 rounds to 95
	assert.Equal(t, int64(95), inv.TotalTaxCents)
	assert.Equal(t, int64(595), inv.TotalCents)
}

func TestInvoiceContentHashChangeDetection(t *testing.T) {
	inv, err := NewInvoice(newTestTenantID(), DocumentKindInvoice, newTestCustomer(), "jane")
	require.NoError(t, err)
	require.NoError(t, inv.UpdateItems(newTestItems(t)))

	before := inv.ContentHash
	inv.UpdateTexts("March services", "Payable within 14 days")
	assert.NotEqual(t, before, inv.ContentHash, "text change must change the hash")

	unchanged := inv.ContentHash
	inv.UpdateTexts("March services", "Payable within 14 days")
	assert.Equal(t, unchanged, inv.ContentHash, "identical content must hash identically")
}

func TestInvoiceUpdateItemsRejectedAfterSend(t *testing.T) {
	inv := sentInvoice(t)

	err := inv.UpdateItems(newTestItems(t))
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVOICE_NOT_EDITABLE", domainErr.Code)
}

func TestInvoiceTextsEditableAfterSend(t *testing.T) {
	inv := sentInvoice(t)
	before := inv.ContentHash

	inv.UpdateTexts("Corrected subject", "Corrected footer")

	assert.Equal(t, "Corrected subject", inv.Subject)
	assert.Equal(t, "Corrected footer", inv.FooterText)
	assert.NotEqual(t, before, inv.ContentHash, "text change refreshes the hash")
}

func TestInvoiceCustomerReplaceableAfterSend(t *testing.T) {
	inv := sentInvoice(t)
	before := inv.ContentHash

	replacement := newTestCustomer()
	replacement.Name = "Globex Corp"
	require.NoError(t, inv.UpdateCustomer(replacement))

	assert.Equal(t, replacement.CustomerID, inv.Customer.CustomerID)
	assert.Equal(t, "Globex Corp", inv.Customer.Name)
	assert.NotEqual(t, before, inv.ContentHash)

	err := inv.UpdateCustomer(CustomerSnapshot{})
	require.Error(t, err, "a customer is still required")
}

func TestInvoiceRequestPdf(t *testing.T) {
	inv, err := NewInvoice(newTestTenantID(), DocumentKindInvoice, newTestCustomer(), "jane")
	require.NoError(t, err)

	_, err = inv.RequestPdf(time.Now())
	assert.Error(t, err, "no content hash yet")

	require.NoError(t, inv.UpdateItems(newTestItems(t)))
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	hash, err := inv.RequestPdf(now)
	require.NoError(t, err)
	assert.Equal(t, inv.ContentHash, hash)
	require.NotNil(t, inv.PDF)
	assert.Equal(t, now, *inv.PDF.RequestedAt)
	assert.Nil(t, inv.PDF.GeneratedAt)
	assert.Equal(t, hash, inv.PDF.ForContentHash)

	require.Len(t, inv.GetDomainEvents(), 1)
	pdfEvent, ok := inv.GetDomainEvents()[0].(*InvoicePdfRequestedEvent)
	require.True(t, ok)
	assert.Equal(t, hash, pdfEvent.ForContentHash)
}

func TestInvoiceUpdatePdfPreservesRequestTime(t *testing.T) {
	inv, err := NewInvoice(newTestTenantID(), DocumentKindInvoice, newTestCustomer(), "jane")
	require.NoError(t, err)
	require.NoError(t, inv.UpdateItems(newTestItems(t)))

	requested := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	hash, err := inv.RequestPdf(requested)
	require.NoError(t, err)

	generated := requested.Add(3 * time.Second)
	require.NoError(t, inv.UpdatePdf(hash, "documents", "eu-central-1", "tenants/x/inv.pdf", generated))

	require.NotNil(t, inv.PDF)
	assert.Equal(t, requested, *inv.PDF.RequestedAt)
	assert.Equal(t, generated, *inv.PDF.GeneratedAt)
	assert.Equal(t, "documents", inv.PDF.Bucket)
	assert.True(t, inv.HasCurrentPdf())

	assert.Error(t, inv.UpdatePdf("", "b", "r", "k", generated))
}

func sentInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(newTestTenantID(), DocumentKindInvoice, newTestCustomer(), "jane")
	require.NoError(t, err)
	require.NoError(t, inv.UpdateItems(newTestItems(t)))

	provider, _ := newStubSettingsProvider(inv.TenantID)
	sub := NewSubmission(SubmissionTypeEmail, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, inv.AddSubmission(context.Background(), sub, "jane", provider, nil))
	inv.ClearDomainEvents()
	return inv
}

func TestInvoiceFirstSendAssignsNumberAndDates(t *testing.T) {
	inv, err := NewInvoice(newTestTenantID(), DocumentKindInvoice, newTestCustomer(), "jane")
	require.NoError(t, err)
	require.NoError(t, inv.UpdateItems(newTestItems(t)))

	provider, settings := newStubSettingsProvider(inv.TenantID)
	submittedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sub := NewSubmission(SubmissionTypeEmail, submittedAt)

	require.NoError(t, inv.AddSubmission(context.Background(), sub, "jane", provider, nil))

	assert.Equal(t, InvoiceStatusSent, inv.Status)
	assert.Equal(t, "[INV]-002", inv.InvoiceNumber)
	assert.Equal(t, "[INV]-002", settings.InvoiceNumbers.LastNumber)
	require.NotNil(t, inv.InvoicedAt)
	assert.Equal(t, submittedAt, *inv.InvoicedAt)
	require.NotNil(t, inv.DueAt)
	assert.Equal(t, submittedAt.AddDate(0, 0, DefaultInvoiceDueDays), *inv.DueAt)

	require.Len(t, inv.Submissions, 1)
	types := eventTypes(inv)
	assert.Equal(t, []string{EventTypeInvoicePublished, EventTypeInvoiceSend}, types)

	last := inv.Activity[len(inv.Activity)-1]
	assert.Equal(t, ActivityTypeSentInvoiceEmail, last.Type)
}

func TestInvoiceSecondSendKeepsNumberAndEmitsSendOnly(t *testing.T) {
	inv := sentInvoice(t)
	number := inv.InvoiceNumber

	provider, _ := newStubSettingsProvider(inv.TenantID)
	sub := NewSubmission(SubmissionTypeEmail, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, inv.AddSubmission(context.Background(), sub, "jane", provider, nil))

	assert.Equal(t, number, inv.InvoiceNumber, "number must be assigned once")
	assert.Equal(t, []string{EventTypeInvoiceSend}, eventTypes(inv))
	require.Len(t, inv.Submissions, 2)
}

func TestInvoiceManualSendEmitsNoSendEvent(t *testing.T) {
	inv, err := NewInvoice(newTestTenantID(), DocumentKindInvoice, newTestCustomer(), "jane")
	require.NoError(t, err)
	require.NoError(t, inv.UpdateItems(newTestItems(t)))

	provider, _ := newStubSettingsProvider(inv.TenantID)
	sub := NewSubmission(SubmissionTypeManual, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, inv.AddSubmission(context.Background(), sub, "jane", provider, nil))

	assert.Equal(t, InvoiceStatusSent, inv.Status)
	assert.Equal(t, []string{EventTypeInvoicePublished}, eventTypes(inv))
	last := inv.Activity[len(inv.Activity)-1]
	assert.Equal(t, ActivityTypeSentInvoiceManual, last.Type)
}

func TestOfferFirstSendUsesOfferDefaults(t *testing.T) {
	inv, err := NewInvoice(newTestTenantID(), DocumentKindOffer, newTestCustomer(), "jane")
	require.NoError(t, err)
	require.NoError(t, inv.UpdateItems(newTestItems(t)))

	provider, _ := newStubSettingsProvider(inv.TenantID)
	submittedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sub := NewSubmission(SubmissionTypeLetter, submittedAt)
	require.NoError(t, inv.AddSubmission(context.Background(), sub, "jane", provider, nil))

	assert.Equal(t, "OFF-001", inv.OfferNumber)
	assert.Empty(t, inv.InvoiceNumber)
	require.NotNil(t, inv.OfferedAt)
	assert.Equal(t, submittedAt, *inv.OfferedAt)
	require.NotNil(t, inv.DueAt)
	assert.Equal(t, submittedAt.AddDate(0, 0, DefaultOfferValidityDays), *inv.DueAt)
	last := inv.Activity[len(inv.Activity)-1]
	assert.Equal(t, ActivityTypeSentOfferLetter, last.Type)
}

func TestInvoiceScheduledSubmission(t *testing.T) {
	inv, err := NewInvoice(newTestTenantID(), DocumentKindInvoice, newTestCustomer(), "jane")
	require.NoError(t, err)
	require.NoError(t, inv.UpdateItems(newTestItems(t)))

	provider, _ := newStubSettingsProvider(inv.TenantID)
	runAt := time.Now().Add(48 * time.Hour)
	job := NewDeferredJob(inv.TenantID, runAt)
	sub := NewScheduledSubmission(SubmissionTypeEmail, time.Now(), job.GetID())

	require.NoError(t, inv.AddSubmission(context.Background(), sub, "jane", provider, job))

	assert.Equal(t, InvoiceStatusDraft, inv.Status, "scheduling must not transition the lifecycle")
	assert.Empty(t, inv.InvoiceNumber)
	require.NotNil(t, inv.ScheduledSendJobID)
	assert.Equal(t, job.GetID(), *inv.ScheduledSendJobID)
	assert.Equal(t, EventTypeInvoiceSendLater, job.EventType)
	assert.NotEmpty(t, job.EventPayload)

	assert.Equal(t, []string{EventTypeInvoiceScheduled}, eventTypes(inv))
	last := inv.Activity[len(inv.Activity)-1]
	assert.Equal(t, ActivityTypeScheduledSend, last.Type)
	require.NotNil(t, last.JobRef)
	assert.Equal(t, job.GetID(), *last.JobRef)
}

func TestInvoiceCancelScheduledSubmission(t *testing.T) {
	inv, err := NewInvoice(newTestTenantID(), DocumentKindInvoice, newTestCustomer(), "jane")
	require.NoError(t, err)
	require.NoError(t, inv.UpdateItems(newTestItems(t)))

	err = inv.CancelScheduledSubmission(context.Background(), func(context.Context, uuid.UUID) error { return nil })
	assert.Error(t, err, "nothing scheduled yet")

	provider, _ := newStubSettingsProvider(inv.TenantID)
	job := NewDeferredJob(inv.TenantID, time.Now().Add(time.Hour))
	sub := NewScheduledSubmission(SubmissionTypeEmail, time.Now(), job.GetID())
	require.NoError(t, inv.AddSubmission(context.Background(), sub, "jane", provider, job))

	var deletedJobID uuid.UUID
	require.NoError(t, inv.CancelScheduledSubmission(context.Background(), func(_ context.Context, jobID uuid.UUID) error {
		deletedJobID = jobID
		return nil
	}))

	assert.Equal(t, job.GetID(), deletedJobID)
	assert.Nil(t, inv.ScheduledSendJobID)
	assert.True(t, inv.Submissions[len(inv.Submissions)-1].IsCancelled)
	last := inv.Activity[len(inv.Activity)-1]
	assert.Equal(t, ActivityTypeCancelledScheduledSend, last.Type)
}

func TestInvoiceAttachmentEmailFlag(t *testing.T) {
	inv := sentInvoice(t)

	attachmentID := uuid.New()
	attachment := NewActivity(ActivityTypeAttachment, "jane")
	attachment.AttachmentID = &attachmentID
	inv.AddActivity(attachment)
	note := NewActivity(ActivityTypeNote, "jane").WithNotes("call the customer")
	inv.AddActivity(note)

	require.NoError(t, inv.SetActivityAttachToEmail(attachment.ID, true))
	for _, a := range inv.Activity {
		if a.ID == attachment.ID {
			assert.True(t, a.AttachToEmail)
		}
	}

	require.NoError(t, inv.SetActivityAttachToEmail(attachment.ID, false))
	for _, a := range inv.Activity {
		if a.ID == attachment.ID {
			assert.False(t, a.AttachToEmail)
		}
	}

	var domainErr *shared.DomainError
	err := inv.SetActivityAttachToEmail(note.ID, true)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ACTIVITY_NOT_ATTACHMENT", domainErr.Code)

	err = inv.SetActivityAttachToEmail(uuid.New(), true)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ACTIVITY_NOT_FOUND", domainErr.Code)
}

func TestInvoicePaymentAccrual(t *testing.T) {
	inv := sentInvoice(t)
	require.Equal(t, int64(5600), inv.TotalCents)

	activity, err := inv.AddPayment(PaymentInput{CentsPaid: 2000, Via: "bank transfer"}, "jane")
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaidPartially, inv.Status)
	assert.Equal(t, int64(2000), inv.PaidCents)
	assert.Equal(t, ActivityTypePayment, activity.Type)
	assert.Contains(t, activity.Notes, "EUR 20.00")
	assert.Equal(t, []string{EventTypeInvoicePayment}, eventTypes(inv))
	inv.ClearDomainEvents()

	_, err = inv.AddPayment(PaymentInput{CentsPaid: 3600, Via: "bank transfer"}, "jane")
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.Equal(t, int64(5600), inv.PaidCents)
	assert.Equal(t, []string{EventTypeInvoicePayment, EventTypeInvoicePaid}, eventTypes(inv))

	last := inv.Activity[len(inv.Activity)-1]
	assert.Equal(t, ActivityTypePaid, last.Type)

	_, err = inv.AddPayment(PaymentInput{CentsPaid: 100}, "jane")
	assert.Error(t, err, "paid documents accept no further payments")
}

func TestInvoicePaidViaTracksLatestPayment(t *testing.T) {
	inv := sentInvoice(t)

	_, err := inv.AddPayment(PaymentInput{CentsPaid: 2000, Via: "bank transfer"}, "jane")
	require.NoError(t, err)
	assert.Equal(t, "bank transfer", inv.PaidVia)

	_, err = inv.AddPayment(PaymentInput{CentsPaid: 1000}, "jane")
	require.NoError(t, err)
	assert.Empty(t, inv.PaidVia, "a payment without a channel clears the previous one")

	_, err = inv.AddPayment(PaymentInput{CentsPaid: 2600, Via: "paypal"}, "jane")
	require.NoError(t, err)
	assert.Equal(t, "paypal", inv.PaidVia)
}

func TestInvoicePaymentRejectedOnDraft(t *testing.T) {
	inv, err := NewInvoice(newTestTenantID(), DocumentKindInvoice, newTestCustomer(), "jane")
	require.NoError(t, err)

	_, err = inv.AddPayment(PaymentInput{CentsPaid: 100}, "jane")
	require.Error(t, err)

	_, err = sentInvoice(t).AddPayment(PaymentInput{CentsPaid: 0}, "jane")
	require.Error(t, err, "zero payments are rejected")
}

func TestInvoiceCancellation(t *testing.T) {
	inv := sentInvoice(t)

	require.NoError(t, inv.UpdateStatus(InvoiceStatusCancelled, "jane"))
	assert.Equal(t, InvoiceStatusCancelled, inv.Status)
	assert.Equal(t, []string{EventTypeInvoiceCancelled}, eventTypes(inv))
	last := inv.Activity[len(inv.Activity)-1]
	assert.Equal(t, ActivityTypeCancelledInvoice, last.Type)

	err := inv.UpdateStatus(InvoiceStatusCancelled, "jane")
	assert.Error(t, err, "cancelled is terminal")
}

func TestOfferCancellationEmitsNoEvent(t *testing.T) {
	inv, err := NewInvoice(newTestTenantID(), DocumentKindOffer, newTestCustomer(), "jane")
	require.NoError(t, err)
	require.NoError(t, inv.UpdateItems(newTestItems(t)))
	provider, _ := newStubSettingsProvider(inv.TenantID)
	require.NoError(t, inv.AddSubmission(context.Background(), NewSubmission(SubmissionTypeManual, time.Now()), "jane", provider, nil))
	inv.ClearDomainEvents()

	require.NoError(t, inv.UpdateStatus(InvoiceStatusCancelled, "jane"))
	assert.Empty(t, inv.GetDomainEvents())
	last := inv.Activity[len(inv.Activity)-1]
	assert.Equal(t, ActivityTypeCancelledOffer, last.Type)
}

func TestInvoiceDirectStatusChangeRestricted(t *testing.T) {
	inv := sentInvoice(t)
	assert.Error(t, inv.UpdateStatus(InvoiceStatusPaid, "jane"))
	assert.Error(t, inv.UpdateStatus(InvoiceStatusDraft, "jane"))
}

func TestInvoiceUpdateDates(t *testing.T) {
	inv, err := NewInvoice(newTestTenantID(), DocumentKindInvoice, newTestCustomer(), "jane")
	require.NoError(t, err)
	require.NoError(t, inv.UpdateItems(newTestItems(t)))

	invoicedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	dueAt := invoicedAt.AddDate(0, 0, 30)
	require.NoError(t, inv.UpdateDates(&invoicedAt, nil, &dueAt))
	assert.Empty(t, inv.GetDomainEvents(), "draft date changes emit nothing")

	sent := sentInvoice(t)
	hashBefore := sent.ContentHash
	newDue := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, sent.UpdateDates(sent.InvoicedAt, nil, &newDue))
	assert.NotEqual(t, hashBefore, sent.ContentHash)
	assert.Equal(t, []string{EventTypeInvoiceDatesChanged}, eventTypes(sent))

	event, ok := sent.GetDomainEvents()[0].(*InvoiceDatesChangedEvent)
	require.True(t, ok)
	require.NotNil(t, event.DueAt)
	assert.True(t, newDue.Equal(*event.DueAt))
	assert.Equal(t, sent.TotalCents, event.TotalCents)
	assert.Equal(t, sent.TotalTaxCents, event.TotalTaxCents)

	require.NoError(t, sent.UpdateStatus(InvoiceStatusCancelled, "jane"))
	assert.Error(t, sent.UpdateDates(sent.InvoicedAt, nil, &newDue))
}

func TestInvoiceProcessedEventDeduplication(t *testing.T) {
	inv := sentInvoice(t)

	assert.False(t, inv.HasProcessedEvent("msg-1"))
	inv.MarkEventAsProcessed("msg-1")
	inv.MarkEventAsProcessed("msg-1")
	assert.True(t, inv.HasProcessedEvent("msg-1"))
	assert.Len(t, inv.ProcessedEventIDs, 1)
}

func TestInvoiceCreateAndLinkExpenses(t *testing.T) {
	inv, err := NewInvoice(newTestTenantID(), DocumentKindInvoice, newTestCustomer(), "jane")
	require.NoError(t, err)

	categoryID := uuid.New()
	alreadyLinked := uuid.New()
	items := newTestItems(t)
	items[1].LinkedExpenses = []LinkedExpense{
		{Name: "Server rent", PriceCents: 750, CategoryID: &categoryID, Enabled: true},
		{Name: "Disabled", PriceCents: 100, Enabled: false},
		{Name: "Linked", PriceCents: 100, Enabled: true, ExpenseID: &alreadyLinked},
	}
	require.NoError(t, inv.UpdateItems(items))

	var drafts []ExpenseDraft
	created := uuid.New()
	require.NoError(t, inv.CreateAndLinkExpenses(context.Background(), func(_ context.Context, draft ExpenseDraft) (uuid.UUID, error) {
		drafts = append(drafts, draft)
		return created, nil
	}))

	require.Len(t, drafts, 1, "only enabled, unlinked entries create expenses")
	assert.Equal(t, "Server rent", drafts[0].Name)
	// 7.50 scaled by quantity 2
	assert.Equal(t, int64(1500), drafts[0].ExpendedCents)
	assert.Equal(t, inv.GetID(), drafts[0].InvoiceID)

	linked := inv.Items[1].LinkedExpenses[0]
	require.NotNil(t, linked.ExpenseID)
	assert.Equal(t, created, *linked.ExpenseID)
	assert.Equal(t, alreadyLinked, *inv.Items[1].LinkedExpenses[2].ExpenseID)
}
