package model

import "time"

// Car represents a rentable vehicle in the catalog.  The catalog is a
// collaborator of the booking core: admission reads PricePerDay and
// Availability exactly once when a booking is created and never again.
//
// Fields:
//
//	ID           – opaque UUID.
//	Name         – display name shown to customers.
//	Brand        – manufacturer.
//	Model        – model designation.
//	Year         – model year.
//	PricePerDay  – current per-day rate in whole currency units.
//	ImageURL     – catalog image.
//	Location     – city where the car is stationed.
//	Seats        – seat count.
//	Transmission – "manual" or "automatic".
//	FuelType     – fuel type label.
//	Availability – whether the car may be booked at all; a false flag
//	               rejects new bookings regardless of dates.
//	CreatedAt    – creation timestamp.
type Car struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	PricePerDay  int64     `json:"price_per_day"`
	ImageURL     string    `json:"image_url"`
	Location     string    `json:"location"`
	Seats        int       `json:"seats"`
	Transmission string    `json:"transmission"`
	FuelType     string    `json:"fuel_type"`
	Availability bool      `json:"availability"`
	CreatedAt    time.Time `json:"created_at"`
}
