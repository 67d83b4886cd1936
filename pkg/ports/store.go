package ports

import (
	"context"

	"github.com/nimbus-hab/nimbus/pkg/domain"
)

// StateStore persists the phase record across restarts. This is what
// lets the controller survive a power glitch at 30 km and come back in
// the phase it was in, rather than re-running the launch sequence in
// the stratosphere.
type StateStore interface {
	// Load retrieves the persisted phase record.
	// It returns domain.ErrNoImage when no image has ever been written,
	// and domain.ErrCorruptImage when an image exists but cannot be
	// parsed. The two are not interchangeable: absence means a fresh
	// boot at Init, corruption means resume at SafeMode.
	Load(ctx context.Context) (*domain.PhaseRecord, error)

	// Save durably replaces the persisted image with record. It must be
	// atomic: a crash mid-save must never leave a half-written image
	// readable on the next boot. Save returning nil is the commit point
	// of a transition; the engine runs no phase-entry side effect
	// before it.
	Save(ctx context.Context, record *domain.PhaseRecord) error

	// Delete removes the persisted image. Used by ground tooling to
	// reset a probe between flights, never by the engine in flight.
	Delete(ctx context.Context) error
}
