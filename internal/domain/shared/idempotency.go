package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied keys so that a submission is
// accepted at most once within the TTL.
type IdempotencyStore interface {
	// MarkProcessed claims a key with a TTL.
	// Returns true if the key was newly claimed, false if it was already taken.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release frees a key whose submission was rolled back
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a claimed key is remembered. Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency keys are honoured
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
