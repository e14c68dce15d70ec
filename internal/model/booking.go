package model

import "time"

// Booking statuses.  Status tracks the rental lifecycle and is mostly
// independent from the payment state: settlement drives pending bookings
// to confirmed, while completed and cancelled are administrative.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Payment statuses.  The wire values match the processor-facing enum:
// "pending" means no checkout was started yet, "payment_pending" means an
// intent exists and the processor has not reported an outcome, and
// "mock_paid" is the development-only shortcut that bypasses the processor.
const (
	PaymentPending  = "pending"
	PaymentAwaiting = "payment_pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
	PaymentMockPaid = "mock_paid"
)

// Booking records an exclusive rental of one car for an inclusive range of
// calendar days.  The price fields are snapshots taken at creation time so
// later catalog edits never change what a customer owes.
//
// Fields:
//
//	ID              – opaque UUID, generated at creation.
//	UserID          – customer who booked; immutable.
//	UserEmail       – customer contact at booking time.
//	UserName        – customer display name at booking time.
//	CarID           – booked car; immutable.
//	CarName         – car display name snapshot.
//	PickupDate      – first rental day, inclusive.
//	ReturnDate      – last rental day, inclusive; never before PickupDate.
//	PickupLocation  – where the car is handed over.
//	UnitPrice       – per-day price snapshot in whole currency units.
//	TotalPrice      – daysInclusive × UnitPrice, computed once.
//	Status          – rental lifecycle state.
//	PaymentStatus   – settlement state.
//	PaymentIntentID – reference to the outstanding processor intent, if any.
//	CreatedAt       – creation timestamp.
type Booking struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	UserEmail       string    `json:"user_email"`
	UserName        string    `json:"user_name"`
	CarID           string    `json:"car_id"`
	CarName         string    `json:"car_name"`
	PickupDate      Date      `json:"pickup_date"`
	ReturnDate      Date      `json:"return_date"`
	PickupLocation  string    `json:"pickup_location"`
	UnitPrice       int64     `json:"unit_price"`
	TotalPrice      int64     `json:"total_price"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	PaymentIntentID *string   `json:"payment_intent_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// Active reports whether the booking occupies its date range for the
// purpose of admission.  Cancelled bookings never block new ones.
func (b *Booking) Active() bool { return b.Status != StatusCancelled }

// OverlapsRange reports whether this booking collides with the given
// inclusive date range on the calendar.  Cancellation is not considered
// here; callers filter with Active first.
func (b *Booking) OverlapsRange(from, to Date) bool {
	return Overlaps(b.PickupDate, b.ReturnDate, from, to)
}

// TotalFor computes the booking total for an inclusive day range at the
// given per-day price.
func TotalFor(pickup, ret Date, unitPrice int64) int64 {
	return int64(DaysInclusive(pickup, ret)) * unitPrice
}

// settled reports whether the payment state is terminal with respect to a
// late failure event.  A failure delivered after any of these must not
// downgrade the booking.
func (b *Booking) settled() bool {
	switch b.PaymentStatus {
	case PaymentPaid, PaymentRefunded, PaymentMockPaid:
		return true
	}
	return false
}

// BeginPayment records a freshly created processor intent and moves the
// booking into payment_pending.  It returns ErrAlreadySettled when the
// booking is already paid; issuing a new intent must never silently revert
// a settled booking to an unsettled state.
func (b *Booking) BeginPayment(intentID string) error {
	if b.settled() {
		return ErrAlreadySettled
	}
	b.PaymentStatus = PaymentAwaiting
	b.PaymentIntentID = &intentID
	return nil
}

// MarkPaid applies a "payment succeeded" outcome.  It reports whether the
// booking changed: marking an already-paid booking is legal and inert so
// duplicate webhook deliveries are harmless.  A refund is terminal and is
// not overwritten by a late success event.  Reaching paid drives a pending
// booking to confirmed.
func (b *Booking) MarkPaid() bool {
	if b.PaymentStatus == PaymentPaid || b.PaymentStatus == PaymentRefunded {
		return false
	}
	b.PaymentStatus = PaymentPaid
	if b.Status == StatusPending {
		b.Status = StatusConfirmed
	}
	return true
}

// MarkFailed applies a "payment failed" outcome.  Failure never downgrades
// a settled booking; ordering is decided by state priority, not by event
// arrival time.  It reports whether the booking changed.
func (b *Booking) MarkFailed() bool {
	if b.settled() || b.PaymentStatus == PaymentFailed {
		return false
	}
	b.PaymentStatus = PaymentFailed
	return true
}

// MarkRefunded applies a "charge refunded" outcome, which is only legal
// from paid.  It reports whether the booking changed.
func (b *Booking) MarkRefunded() bool {
	if b.PaymentStatus != PaymentPaid {
		return false
	}
	b.PaymentStatus = PaymentRefunded
	return true
}

// MarkMockPaid applies the development-only manual shortcut.  It refuses
// bookings that are already paid by either path and otherwise behaves like
// a settlement: the booking is confirmed without any processor involvement.
func (b *Booking) MarkMockPaid(ref string) error {
	if b.PaymentStatus == PaymentPaid || b.PaymentStatus == PaymentMockPaid {
		return ErrAlreadySettled
	}
	b.PaymentStatus = PaymentMockPaid
	if b.Status == StatusPending {
		b.Status = StatusConfirmed
	}
	b.PaymentIntentID = &ref
	return nil
}

// ValidStatus reports whether s is one of the known booking statuses.  The
// admin override writes any of these without consulting the payment state.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
