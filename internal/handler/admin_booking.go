package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/SwaraChokshi/The-Wheel-Deal/internal/model"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/repository"
)

// AdminBookingHandler serves the admin views over all bookings.
type AdminBookingHandler struct {
	Store repository.BookingStore
}

// NewAdminBookingHandler wires the admin booking endpoints to the store.
func NewAdminBookingHandler(store repository.BookingStore) *AdminBookingHandler {
	return &AdminBookingHandler{Store: store}
}

// ListAll returns every booking in the system, newest first.
func (h *AdminBookingHandler) ListAll(c echo.Context) error {
	bookings, err := h.Store.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list bookings"})
	}
	return c.JSON(http.StatusOK, bookings)
}

// SetStatus overwrites a booking's lifecycle status.  This is the
// administrative override: it does not consult the payment state, so an
// admin can complete or cancel any booking directly.
func (h *AdminBookingHandler) SetStatus(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		var body struct {
			Status string `json:"status"`
		}
		if err := c.Bind(&body); err == nil {
			status = body.Status
		}
	}
	if !model.ValidStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	if err := h.Store.SetStatus(c.Request().Context(), c.Param("id"), status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update status"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "status": status})
}

// Delete removes the booking record outright.  Customer cancellation only
// marks the booking cancelled; this hard delete is the admin cleanup path.
func (h *AdminBookingHandler) Delete(c echo.Context) error {
	if err := h.Store.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}
