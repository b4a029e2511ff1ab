package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{seen: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[eventID], nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

func TestIdempotentHandlerSkipsDuplicates(t *testing.T) {
	inner := &recordingHandler{}
	handler := NewIdempotentHandler(inner, newFakeIdempotencyStore(), zap.NewNop())
	event := newTestEvent()

	require.NoError(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event))

	assert.Equal(t, 1, inner.count(), "second delivery must be a no-op")
}

func TestIdempotentHandlerProcessesOnStoreError(t *testing.T) {
	inner := &recordingHandler{}
	store := newFakeIdempotencyStore()
	store.err = errors.New("redis down")
	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), newTestEvent()))
	assert.Equal(t, 1, inner.count(), "store errors must not drop events")
}

func TestIdempotentHandlerPropagatesHandlerError(t *testing.T) {
	inner := &recordingHandler{err: errors.New("boom")}
	store := newFakeIdempotencyStore()
	handler := NewIdempotentHandler(inner, store, zap.NewNop())
	event := newTestEvent()

	require.Error(t, handler.Handle(context.Background(), event))

	// the key stays marked; the TTL acts as the retry cooldown
	processed, err := store.IsProcessed(context.Background(), event.EventID().String())
	require.NoError(t, err)
	assert.True(t, processed)
}
