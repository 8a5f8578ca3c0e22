// Package lockout tracks consecutive login failures per username and the
// temporary lock applied when the limit is hit.
package lockout

import (
	"context"
	"time"
)

// Store is the lockout state port. Counting and locking are separate calls;
// the service owns the threshold decision.
type Store interface {
	// RecordFailure increments the failure counter for the username and
	// returns the new count. The counter expires after window so stale
	// failures stop counting against the user.
	RecordFailure(ctx context.Context, username string, window time.Duration) (int, error)
	// Lock blocks logins for the username for the given duration.
	Lock(ctx context.Context, username string, duration time.Duration) error
	// IsLocked reports whether the username is currently locked.
	IsLocked(ctx context.Context, username string) (bool, error)
	// Clear resets the counter and any active lock after a successful login.
	Clear(ctx context.Context, username string) error
}
