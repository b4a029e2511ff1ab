package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOutboxTestEntry(t *testing.T) *OutboxEntry {
	event := NewBaseDomainEvent("invoice.published", "Invoice", uuid.New(), uuid.New())
	entry := NewOutboxEntry(event.TenantID(), &event, []byte(`{"test":true}`))
	require.Equal(t, OutboxStatusPending, entry.Status)
	return entry
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	entry := newOutboxTestEntry(t)

	require.NoError(t, entry.MarkProcessing())
	assert.Equal(t, OutboxStatusProcessing, entry.Status)

	entry.MarkSent()
	assert.Equal(t, OutboxStatusSent, entry.Status)
	require.NotNil(t, entry.ProcessedAt)
}

func TestOutboxEntry_MarkProcessing_InvalidStatus(t *testing.T) {
	entry := newOutboxTestEntry(t)
	entry.MarkSent()

	err := entry.MarkProcessing()
	assert.Error(t, err)
}

func TestOutboxEntry_MarkFailed_Backoff(t *testing.T) {
	entry := newOutboxTestEntry(t)

	entry.MarkFailed("connection refused")
	assert.Equal(t, OutboxStatusFailed, entry.Status)
	assert.Equal(t, 1, entry.RetryCount)
	require.NotNil(t, entry.NextRetryAt)
	assert.WithinDuration(t, time.Now().Add(DefaultBaseBackoff), *entry.NextRetryAt, time.Second)
	assert.True(t, entry.CanRetry())

	entry.MarkFailed("connection refused")
	require.NotNil(t, entry.NextRetryAt)
	assert.WithinDuration(t, time.Now().Add(2*DefaultBaseBackoff), *entry.NextRetryAt, time.Second)
}

func TestOutboxEntry_DeadLetterAfterMaxRetries(t *testing.T) {
	entry := newOutboxTestEntry(t)

	for i := 0; i < DefaultMaxRetries; i++ {
		entry.MarkFailed("still broken")
	}

	assert.True(t, entry.IsDead())
	assert.False(t, entry.CanRetry())
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	entry := newOutboxTestEntry(t)

	// Only dead entries may be reset
	assert.Error(t, entry.ResetForRetry())

	for i := 0; i < DefaultMaxRetries; i++ {
		entry.MarkFailed("still broken")
	}
	require.True(t, entry.IsDead())

	require.NoError(t, entry.ResetForRetry())
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, 0, entry.RetryCount)
	assert.Empty(t, entry.LastError)
	assert.Nil(t, entry.NextRetryAt)
}
