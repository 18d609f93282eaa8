package shared

import (
	"context"
	"time"
)

// IdempotencyStore records caller-supplied idempotency keys so that a blindly
// retried allocation cannot be applied twice after an ambiguous failure.
type IdempotencyStore interface {
	// MarkProcessed marks a key as used with a TTL.
	// Returns true if the key was newly marked, false if it was already used.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether a key has already been used
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for recorded keys. After this duration the
	// same key is accepted again. Default: 24 hours.
	TTL time.Duration

	// Enabled determines whether idempotency checking is enforced
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
