package otp

import (
	"context"
	"time"
)

// DefaultTTL is how long a pending code stays valid after issuance.
const DefaultTTL = 300 * time.Second

// CodeStore persists pending one-time codes keyed by an identifier (the
// participant's email). At most one code exists per identifier; Put replaces
// any previous code, which also invalidates it.
type CodeStore interface {
	// Put stores code under identifier with the store's TTL, overwriting any
	// pending code.
	Put(ctx context.Context, identifier, code string) error

	// Get returns the pending code, or sentinel.ErrNotFound when there is
	// none (never issued, consumed, or expired).
	Get(ctx context.Context, identifier string) (string, error)

	// Delete removes the pending code. Deleting an absent entry is not an
	// error.
	Delete(ctx context.Context, identifier string) error

	// ConsumeIfMatch atomically deletes the pending code iff it equals code,
	// reporting whether it matched. The check and the delete are a single
	// backend operation, so two concurrent calls with a valid code cannot
	// both succeed.
	ConsumeIfMatch(ctx context.Context, identifier, code string) (bool, error)

	// ReserveResend marks identifier as having been re-sent a code and
	// reports whether the reservation was acquired. A second call inside the
	// window returns false.
	ReserveResend(ctx context.Context, identifier string, window time.Duration) (bool, error)
}
