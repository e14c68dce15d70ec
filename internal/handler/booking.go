package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/SwaraChokshi/The-Wheel-Deal/internal/model"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/repository"
)

// Catalog is the slice of the car repository the booking flow needs: one
// read per admission to snapshot price and availability.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*model.Car, error)
}

// Identities resolves the contact snapshot written onto new bookings.
type Identities interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// BookingHandler serves the booking lifecycle: admission, listing,
// cancellation and the public availability probe.
type BookingHandler struct {
	Store repository.BookingStore
	Cars  Catalog
	Users Identities
}

// NewBookingHandler wires the booking endpoints to their dependencies.
func NewBookingHandler(store repository.BookingStore, cars Catalog, users Identities) *BookingHandler {
	return &BookingHandler{Store: store, Cars: cars, Users: users}
}

type createBookingRequest struct {
	CarID          string `json:"car_id"`
	PickupDate     string `json:"pickup_date"`
	ReturnDate     string `json:"return_date"`
	PickupLocation string `json:"pickup_location"`
}

// Create admits a new booking.  The date range is validated and normalized
// here; the overlap check itself runs inside the store so that two racing
// requests for the same car are serialized and at most one wins.
func (h *BookingHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.CarID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "car_id is required"})
	}
	pickup, err := model.ParseDate(req.PickupDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pickup_date: " + err.Error()})
	}
	ret, err := model.ParseDate(req.ReturnDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid return_date: " + err.Error()})
	}
	if ret.Before(pickup) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "return_date must not be before pickup_date"})
	}
	if pickup.Before(model.DateOf(time.Now())) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pickup_date must not be in the past"})
	}

	ctx := c.Request().Context()
	car, err := h.Cars.GetByID(ctx, req.CarID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load car"})
	}
	if !car.Availability {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "car is not available for booking"})
	}

	var email, name string
	if h.Users != nil {
		if u, err := h.Users.GetByID(ctx, actor.ID); err == nil {
			email, name = u.Email, u.Username
		}
	}

	b := &model.Booking{
		ID:             uuid.NewString(),
		UserID:         actor.ID,
		UserEmail:      email,
		UserName:       name,
		CarID:          car.ID,
		CarName:        car.Name,
		PickupDate:     pickup,
		ReturnDate:     ret,
		PickupLocation: req.PickupLocation,
		UnitPrice:      car.PricePerDay,
		TotalPrice:     model.TotalFor(pickup, ret, car.PricePerDay),
		Status:         model.StatusPending,
		PaymentStatus:  model.PaymentPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.Store.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "car is already booked for the selected dates"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	return c.JSON(http.StatusCreated, b)
}

// List returns the caller's own bookings, newest first.
func (h *BookingHandler) List(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Store.ListByUser(c.Request().Context(), actor.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list bookings"})
	}
	return c.JSON(http.StatusOK, bookings)
}

// Get returns one booking.  Customers see only their own; admins see any.
func (h *BookingHandler) Get(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	b, err := h.Store.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if b.UserID != actor.ID && !actor.Privileged() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	}
	return c.JSON(http.StatusOK, b)
}

// Cancel marks a booking cancelled, which immediately frees its dates for
// new admissions.  Owners cannot cancel a booking that already settled as
// paid; that path goes through a refund instead.
func (h *BookingHandler) Cancel(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	b, err := h.Store.UpdateByID(c.Request().Context(), c.Param("id"), func(b *model.Booking) (bool, error) {
		if b.UserID != actor.ID && !actor.Privileged() {
			return false, repository.ErrForbidden
		}
		if b.Status == model.StatusCancelled {
			return false, nil
		}
		if !actor.Privileged() && (b.PaymentStatus == model.PaymentPaid || b.PaymentStatus == model.PaymentMockPaid) {
			return false, model.ErrAlreadySettled
		}
		b.Status = model.StatusCancelled
		return true, nil
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	case errors.Is(err, model.ErrAlreadySettled):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already paid; request a refund instead"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel booking"})
	}
	return c.JSON(http.StatusOK, b)
}

// Availability is the public probe: given a date range and optionally a
// car, it reports the conflicting bookings so clients can grey out taken
// dates.  Cancelled bookings never appear here.
func (h *BookingHandler) Availability(c echo.Context) error {
	pickup, err := model.ParseDate(c.QueryParam("pickup_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pickup_date: " + err.Error()})
	}
	ret, err := model.ParseDate(c.QueryParam("return_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid return_date: " + err.Error()})
	}
	if ret.Before(pickup) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "return_date must not be before pickup_date"})
	}
	carID := c.QueryParam("car_id")

	bookings, err := h.Store.ListOverlapping(c.Request().Context(), carID, pickup, ret)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}

	type taken struct {
		CarID      string     `json:"car_id"`
		PickupDate model.Date `json:"pickup_date"`
		ReturnDate model.Date `json:"return_date"`
		Status     string     `json:"status"`
	}
	out := make([]taken, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, taken{CarID: b.CarID, PickupDate: b.PickupDate, ReturnDate: b.ReturnDate, Status: b.Status})
	}
	resp := echo.Map{"bookings": out}
	if carID != "" {
		resp["available"] = len(out) == 0
	}
	return c.JSON(http.StatusOK, resp)
}
