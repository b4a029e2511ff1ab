package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
)

func TestEventSerializerRoundTrip(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	original := billing.NewInvoiceSendEvent(uuid.New(), uuid.New(), uuid.New(), "hash-1")

	data, err := serializer.Serialize(original)
	require.NoError(t, err)

	restored, err := serializer.Deserialize(billing.EventTypeInvoiceSend, data)
	require.NoError(t, err)

	sendEvent, ok := restored.(*billing.InvoiceSendEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), sendEvent.EventID())
	assert.Equal(t, original.InvoiceID, sendEvent.InvoiceID)
	assert.Equal(t, original.SubmissionID, sendEvent.SubmissionID)
	assert.Equal(t, "hash-1", sendEvent.ForContentHash)
}

func TestEventSerializerUnknownType(t *testing.T) {
	serializer := NewEventSerializer()

	_, err := serializer.Deserialize("not.registered", []byte("{}"))
	require.Error(t, err)
	assert.False(t, serializer.IsRegistered("not.registered"))
}

func TestRegisterAllEventsCoversWireTypes(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	for _, eventType := range []string{
		billing.EventTypeInvoicePdfRequested,
		billing.EventTypeInvoiceSend,
		billing.EventTypeInvoiceSendLater,
		billing.EventTypeInvoiceScheduled,
		billing.EventTypeInvoicePublished,
		billing.EventTypeInvoicePayment,
		billing.EventTypeInvoicePaid,
		billing.EventTypeInvoiceCancelled,
		billing.EventTypeInvoiceDatesChanged,
	} {
		assert.True(t, serializer.IsRegistered(eventType), eventType)
	}
}
