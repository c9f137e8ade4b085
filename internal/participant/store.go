package participant

import "context"

// Store persists participant records. Implementations assign ids from a
// shared monotonic counter and enforce email uniqueness at creation.
type Store interface {
	// Create assigns the next id, stamps CreatedAt, and stores the record.
	// A duplicate email returns sentinel.ErrConflict.
	Create(ctx context.Context, p Participant) (Participant, error)

	// GetByID returns the record or sentinel.ErrNotFound.
	GetByID(ctx context.Context, id int64) (Participant, error)

	// GetByEmail resolves a record through the email index, or
	// sentinel.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (Participant, error)

	// GetAll returns every record in backend enumeration order.
	GetAll(ctx context.Context) ([]Participant, error)

	// Delete removes the record and its email index entry, reporting whether
	// anything existed.
	Delete(ctx context.Context, id int64) (bool, error)

	// SetConfirmed durably marks the record as confirmed.
	SetConfirmed(ctx context.Context, id int64) error
}
