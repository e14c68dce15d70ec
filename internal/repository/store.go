package repository

import (
	"context"

	"github.com/SwaraChokshi/The-Wheel-Deal/internal/model"
)

// Transition mutates a booking according to the settlement rules and
// reports whether anything changed.  Returning (false, nil) means the
// transition was a legal no-op (e.g. a duplicate "paid" event) and the
// store must not write.  Returning an error aborts without writing.
type Transition func(b *model.Booking) (bool, error)

// BookingStore is the single mutable shared state of the service.  All
// other components are stateless orchestration over it.
//
// Create is the admission step: the overlap check and the insert are one
// atomic operation, serialized per car, so two racing requests for
// overlapping dates can never both succeed.  UpdateByID and
// UpdateByIntentID load the booking, apply the transition under the same
// serialization and persist the result, which keeps webhook reconciliation
// idempotent under at-least-once delivery.
type BookingStore interface {
	// Create inserts b if no non-cancelled booking of the same car
	// overlaps [b.PickupDate, b.ReturnDate].  Returns ErrConflict when
	// the invariant would be violated at commit time.
	Create(ctx context.Context, b *model.Booking) error

	// GetByID returns the booking or ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.Booking, error)

	// ListByUser returns all bookings made by the user, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)

	// ListAll returns every booking, newest first.
	ListAll(ctx context.Context) ([]model.Booking, error)

	// ListOverlapping returns non-cancelled bookings overlapping the
	// inclusive range.  An empty carID matches every car; that form backs
	// the public availability endpoint.
	ListOverlapping(ctx context.Context, carID string, from, to model.Date) ([]model.Booking, error)

	// UpdateByID applies fn to the booking atomically.  Returns the
	// booking as stored after the call, ErrNotFound when it does not
	// exist, or the error produced by fn.
	UpdateByID(ctx context.Context, id string, fn Transition) (*model.Booking, error)

	// UpdateByIntentID is UpdateByID keyed by the external payment
	// reference instead of the booking id.
	UpdateByIntentID(ctx context.Context, intentID string, fn Transition) (*model.Booking, error)

	// SetStatus overwrites the booking status unconditionally.  This is
	// the administrative escape hatch; it deliberately bypasses the
	// settlement rules.
	SetStatus(ctx context.Context, id, status string) error

	// Delete removes the booking outright.  Returns ErrNotFound when no
	// row matched.
	Delete(ctx context.Context, id string) error
}
