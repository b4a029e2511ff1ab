package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billingapp "github.com/kellertobias/servobill-sub000/internal/application/billing"
)

func TestBuildMessagePlainText(t *testing.T) {
	body := buildMessage("billing@example.test", billingapp.EmailMessage{
		To:      "jane@acme.test",
		Subject: "Invoice INV-0001",
		Body:    "Please find your invoice attached.",
	})

	text := string(body)
	assert.Contains(t, text, "From: billing@example.test\r\n")
	assert.Contains(t, text, "To: jane@acme.test\r\n")
	assert.Contains(t, text, "Subject: Invoice INV-0001\r\n")
	assert.Contains(t, text, "Content-Type: text/plain")
	assert.NotContains(t, text, "multipart/mixed")
	assert.True(t, strings.HasSuffix(text, "Please find your invoice attached."))
}

func TestBuildMessageWithAttachment(t *testing.T) {
	body := buildMessage("billing@example.test", billingapp.EmailMessage{
		To:             "jane@acme.test",
		Subject:        "Invoice INV-0001",
		Body:           "Attached.",
		AttachmentName: "INV-0001.pdf",
		Attachment:     []byte("%PDF-1.7 fake"),
	})

	text := string(body)
	assert.Contains(t, text, "multipart/mixed")
	assert.Contains(t, text, "Content-Type: application/pdf")
	assert.Contains(t, text, `filename="INV-0001.pdf"`)
	assert.Contains(t, text, "Content-Transfer-Encoding: base64")
	assert.True(t, strings.HasSuffix(text, "--"+attachmentBoundary+"--\r\n"))
}

func TestBuildMessageEncodesSubject(t *testing.T) {
	body := buildMessage("billing@example.test", billingapp.EmailMessage{
		To:      "jane@acme.test",
		Subject: "Rechnung über Beratung",
		Body:    "Hallo",
	})
	assert.NotContains(t, string(body), "Subject: Rechnung über Beratung",
		"non-ASCII subjects must be MIME encoded")
}

func TestRecordingSender(t *testing.T) {
	sender := NewRecordingSender()
	require.NoError(t, sender.Send(t.Context(), billingapp.EmailMessage{To: "a@b.test"}))
	require.NoError(t, sender.Send(t.Context(), billingapp.EmailMessage{To: "c@d.test"}))

	messages := sender.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "a@b.test", messages[0].To)
}
