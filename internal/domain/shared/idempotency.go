package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed event IDs so consumers can drop
// duplicates delivered by the at-least-once outbox pipeline.
type IdempotencyStore interface {
	// MarkProcessed records an event ID with a TTL. It returns true when
	// the ID was new and false when it had already been recorded.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether an event ID was already recorded
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close releases the underlying store
	Close() error
}

// IdempotencyConfig tunes duplicate suppression for event consumers
type IdempotencyConfig struct {
	// TTL bounds how long a processed event ID is remembered; after it
	// expires the same ID would be processed again
	TTL time.Duration

	// Enabled switches duplicate suppression off entirely when false
	Enabled bool
}

// DefaultIdempotencyConfig remembers event IDs for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
