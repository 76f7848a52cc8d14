package settlement

import (
	"context"

	"github.com/google/uuid"
)

// Store persists settlements with optimistic concurrency. Update
// compares the settlement's version against the stored row and returns
// a TypeConflict error when they diverge; the caller decides whether to
// reload and retry. No implementation retries silently.
type Store interface {
	// Get loads a settlement by id, TypeNotFound when absent.
	Get(ctx context.Context, id uuid.UUID) (*Settlement, error)

	// Create inserts a new settlement at version 1.
	Create(ctx context.Context, s *Settlement) error

	// Update writes the settlement when the stored version still equals
	// s.Version(), bumping it by one; TypeConflict on a stale write.
	Update(ctx context.Context, s *Settlement) error
}
