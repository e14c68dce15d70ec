package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/SwaraChokshi/The-Wheel-Deal/internal/model"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/payment"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/repository"
)

// WebhookHandler reconciles bookings from processor webhook deliveries.
//
// Deliveries are at-least-once and unordered, so every outcome is applied
// through the settlement transitions, which decide by state priority: a
// duplicate "succeeded" is inert, and a "failed" arriving after "succeeded"
// never downgrades the booking.  Once the signature verifies, the handler
// always acknowledges with 200 — a processing hiccup must not make the
// processor retry a delivery that cannot ever apply.
type WebhookHandler struct {
	Store  repository.BookingStore
	Secret string // webhook signing secret; empty disables verification
}

// NewWebhookHandler wires the reconciler to the booking store.
func NewWebhookHandler(store repository.BookingStore, secret string) *WebhookHandler {
	return &WebhookHandler{Store: store, Secret: secret}
}

// Handle processes one webhook delivery.
func (h *WebhookHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to read body"})
	}

	if h.Secret != "" {
		sig := c.Request().Header.Get("Stripe-Signature")
		if err := payment.VerifySignature(body, sig, h.Secret, time.Now()); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
		}
	} else {
		log.Printf("webhook: WARNING: no signing secret configured, accepting unverified delivery")
	}

	ev, err := payment.ParseEvent(body)
	if err != nil {
		// Verified but unparseable: acknowledge, a retry will not help.
		log.Printf("webhook: dropping unparseable event: %v", err)
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	h.apply(c.Request().Context(), ev)
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

// apply routes the event to the matching settlement transition.  Lookup
// prefers the booking id from correlation metadata and falls back to the
// payment reference.  Missing bookings are logged and dropped.
func (h *WebhookHandler) apply(ctx context.Context, ev payment.SettlementEvent) {
	switch ev.Kind {
	case payment.EventSucceeded:
		b, changed, err := h.update(ctx, ev, func(b *model.Booking) (bool, error) {
			return b.MarkPaid(), nil
		})
		if err != nil {
			log.Printf("webhook: %s: %v", ev.Type, err)
			return
		}
		if changed {
			publishPaid(ctx, b)
		}
	case payment.EventFailed:
		if _, _, err := h.update(ctx, ev, func(b *model.Booking) (bool, error) {
			return b.MarkFailed(), nil
		}); err != nil {
			log.Printf("webhook: %s: %v", ev.Type, err)
		}
	case payment.EventRefunded:
		if _, _, err := h.update(ctx, ev, func(b *model.Booking) (bool, error) {
			return b.MarkRefunded(), nil
		}); err != nil {
			log.Printf("webhook: %s: %v", ev.Type, err)
		}
	default:
		log.Printf("webhook: ignoring event type %q", ev.Type)
	}
}

// update applies fn to the booking named by the event and reports whether
// it changed state.  The changed flag is recomputed from the stored result
// rather than threaded out of fn, so the store interface stays small.
func (h *WebhookHandler) update(ctx context.Context, ev payment.SettlementEvent, fn repository.Transition) (*model.Booking, bool, error) {
	var changed bool
	wrapped := func(b *model.Booking) (bool, error) {
		var err error
		changed, err = fn(b)
		return changed, err
	}

	if ev.BookingID != "" {
		b, err := h.Store.UpdateByID(ctx, ev.BookingID, wrapped)
		if err == nil {
			return b, changed, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, false, err
		}
		// fall through to the payment reference
	}
	if ev.IntentID == "" {
		return nil, false, errors.New("event carries no booking id or payment reference")
	}
	b, err := h.Store.UpdateByIntentID(ctx, ev.IntentID, wrapped)
	if err != nil {
		return nil, false, err
	}
	return b, changed, nil
}
