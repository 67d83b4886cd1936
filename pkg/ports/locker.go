package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates access to a shared state store on the
// hardware-in-the-loop bench, where ground-support equipment and the
// flight controller both touch the phase record. The flight build never
// uses it: in flight the engine is the sole owner of the record.
type DistributedLocker interface {
	// Lock attempts to acquire a lock for the given key. It blocks
	// until the lock is acquired or the context is canceled. The
	// returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
