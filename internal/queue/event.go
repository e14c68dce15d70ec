// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// BookingPaidEvent is published when a booking settles, whether through a
// processor webhook, a manual capture or the dev-only mock payment.  It
// carries enough information for downstream consumers to log or notify
// without querying the primary database.
type BookingPaidEvent struct {
	BookingID      string `json:"booking_id"`
	UserID         string `json:"user_id"`
	UserEmail      string `json:"user_email"`
	CarID          string `json:"car_id"`
	CarName        string `json:"car_name"`
	PickupDate     string `json:"pickup_date"`
	ReturnDate     string `json:"return_date"`
	PickupLocation string `json:"pickup_location"`
	TotalPrice     int64  `json:"total_price"`
	PaymentStatus  string `json:"payment_status"`
	PaidAt         string `json:"paid_at"`
}
