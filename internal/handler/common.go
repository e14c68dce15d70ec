package handler // handler defines the HTTP handlers of the rental API

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/SwaraChokshi/The-Wheel-Deal/internal/model"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/queue"
	queue_publisher "github.com/SwaraChokshi/The-Wheel-Deal/internal/service"
)

// actorFrom extracts the authenticated actor that JWTAuth stored in the
// request context.  Handlers behind the auth middleware can rely on both
// values being present; a missing identity is treated as unauthorized.
func actorFrom(c echo.Context) (model.Actor, error) {
	id, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if id == "" {
		return model.Actor{}, errors.New("missing user identity in context")
	}
	return model.Actor{ID: id, Role: role}, nil
}

// publishPaid emits a booking.paid event for a freshly settled booking.
// Broker failures are ignored: settlement is already durable in the store
// and the broker owns its own retry story.
func publishPaid(ctx context.Context, b *model.Booking) {
	_ = queue_publisher.PublishBookingPaid(ctx, queue.BookingPaidEvent{
		BookingID:      b.ID,
		UserID:         b.UserID,
		UserEmail:      b.UserEmail,
		CarID:          b.CarID,
		CarName:        b.CarName,
		PickupDate:     b.PickupDate.String(),
		ReturnDate:     b.ReturnDate.String(),
		PickupLocation: b.PickupLocation,
		TotalPrice:     b.TotalPrice,
		PaymentStatus:  b.PaymentStatus,
		PaidAt:         time.Now().UTC().Format(time.RFC3339),
	})
}
