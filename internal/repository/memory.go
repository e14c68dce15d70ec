package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/SwaraChokshi/The-Wheel-Deal/internal/model"
)

// MemoryBookingStore is an in-process BookingStore.  A single mutex covers
// the whole map, which makes the overlap-check-and-insert trivially
// serializable; the working set of a rental fleet is small enough that a
// linear scan per admission is fine.  It backs the test suite and any
// tooling that runs without MySQL.
type MemoryBookingStore struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
}

// NewMemoryBookingStore returns an empty store.
func NewMemoryBookingStore() *MemoryBookingStore {
	return &MemoryBookingStore{bookings: make(map[string]*model.Booking)}
}

// Create admits the booking unless a non-cancelled booking of the same car
// overlaps its range.  Check and insert happen under one lock.
func (s *MemoryBookingStore) Create(ctx context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.bookings {
		if other.CarID != b.CarID || !other.Active() {
			continue
		}
		if other.OverlapsRange(b.PickupDate, b.ReturnDate) {
			return ErrConflict
		}
	}
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

// GetByID returns a copy of the booking or ErrNotFound.
func (s *MemoryBookingStore) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryBookingStore) list(match func(*model.Booking) bool) []model.Booking {
	out := make([]model.Booking, 0)
	for _, b := range s.bookings {
		if match(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ListByUser returns the user's bookings, newest first.
func (s *MemoryBookingStore) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(b *model.Booking) bool { return b.UserID == userID }), nil
}

// ListAll returns every booking, newest first.
func (s *MemoryBookingStore) ListAll(ctx context.Context) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(b *model.Booking) bool { return true }), nil
}

// ListOverlapping returns non-cancelled bookings overlapping [from, to],
// for one car or, with an empty carID, for all of them.
func (s *MemoryBookingStore) ListOverlapping(ctx context.Context, carID string, from, to model.Date) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(b *model.Booking) bool {
		if carID != "" && b.CarID != carID {
			return false
		}
		return b.Active() && b.OverlapsRange(from, to)
	}), nil
}

// UpdateByID applies fn to the stored booking under the lock.
func (s *MemoryBookingStore) UpdateByID(ctx context.Context, id string, fn Transition) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.apply(b, fn)
}

// UpdateByIntentID applies fn to the booking holding the payment reference.
func (s *MemoryBookingStore) UpdateByIntentID(ctx context.Context, intentID string, fn Transition) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.PaymentIntentID != nil && *b.PaymentIntentID == intentID {
			return s.apply(b, fn)
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryBookingStore) apply(b *model.Booking, fn Transition) (*model.Booking, error) {
	cp := *b
	changed, err := fn(&cp)
	if err != nil {
		return nil, err
	}
	if changed {
		*b = cp
	}
	out := cp
	return &out, nil
}

// SetStatus overwrites the booking status unconditionally.
func (s *MemoryBookingStore) SetStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	return nil
}

// Delete removes the booking.
func (s *MemoryBookingStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}
