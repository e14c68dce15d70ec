package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/SwaraChokshi/The-Wheel-Deal/internal/config"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/model"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/payment"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/repository"
)

// Gateway is the outbound face of the payment processor: create an intent
// for a booking and capture an authorized one.
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency, bookingID string) (*payment.Intent, error)
	Capture(ctx context.Context, intentID string, amountMinor int64) (*payment.Intent, error)
}

// PaymentHandler serves intent creation, manual capture and the dev-only
// mock payment.
type PaymentHandler struct {
	Cfg     config.Config
	Store   repository.BookingStore
	Gateway Gateway
}

// NewPaymentHandler wires the payment endpoints to their dependencies.
func NewPaymentHandler(cfg config.Config, store repository.BookingStore, gw Gateway) *PaymentHandler {
	return &PaymentHandler{Cfg: cfg, Store: store, Gateway: gw}
}

type createIntentRequest struct {
	BookingID string `json:"booking_id"`
}

type captureRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
	AmountToCapture int64  `json:"amount_to_capture"`
}

// CreateIntent asks the processor for a payment intent covering the
// booking total and records the intent reference on the booking.  The
// settled check runs twice: once up front to avoid a useless processor
// call, and again inside the store transition where it is authoritative.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req createIntentRequest
	if err := c.Bind(&req); err != nil || req.BookingID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_id is required"})
	}

	ctx := c.Request().Context()
	b, err := h.Store.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if b.UserID != actor.ID && !actor.Privileged() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	}
	if b.Status == model.StatusCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is cancelled"})
	}

	// Totals are stored in whole currency units; the processor wants the
	// smallest denomination.
	intent, err := h.Gateway.CreateIntent(ctx, b.TotalPrice*100, h.Cfg.PaymentCurrency, b.ID)
	if err != nil {
		if errors.Is(err, payment.ErrUpstream) {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment processor unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create payment intent"})
	}

	if _, err := h.Store.UpdateByID(ctx, b.ID, func(b *model.Booking) (bool, error) {
		if err := b.BeginPayment(intent.ID); err != nil {
			return false, err
		}
		return true, nil
	}); err != nil {
		if errors.Is(err, model.ErrAlreadySettled) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking already settled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record payment intent"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"payment_intent_id": intent.ID,
		"client_secret":     intent.ClientSecret,
		"amount":            intent.Amount,
	})
}

// Capture confirms an authorized intent with the processor and settles the
// booking.  This is the synchronous path; the webhook path settles the
// same booking idempotently if both fire.
func (h *PaymentHandler) Capture(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req captureRequest
	if err := c.Bind(&req); err != nil || req.PaymentIntentID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_intent_id is required"})
	}

	ctx := c.Request().Context()
	b, err := h.Store.UpdateByIntentID(ctx, req.PaymentIntentID, func(b *model.Booking) (bool, error) {
		if b.UserID != actor.ID && !actor.Privileged() {
			return false, repository.ErrForbidden
		}
		return false, nil // permission probe only; settlement happens after capture
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no booking for this payment intent"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}

	intent, err := h.Gateway.Capture(ctx, req.PaymentIntentID, req.AmountToCapture)
	if err != nil {
		if errors.Is(err, payment.ErrUpstream) {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment processor unavailable"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	b, err = h.Store.UpdateByIntentID(ctx, req.PaymentIntentID, func(b *model.Booking) (bool, error) {
		return b.MarkPaid(), nil
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "capture succeeded but settlement failed"})
	}
	publishPaid(ctx, b)

	return c.JSON(http.StatusOK, echo.Map{
		"status":  intent.Status,
		"booking": b,
	})
}

// MockPay settles a booking without touching the processor.  It exists for
// local development and demos and is refused outright in production.
func (h *PaymentHandler) MockPay(c echo.Context) error {
	if h.Cfg.IsProduction() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "mock payments are disabled in production"})
	}
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ref := fmt.Sprintf("mock:%d", time.Now().UTC().UnixNano())
	ctx := c.Request().Context()
	b, err := h.Store.UpdateByID(ctx, c.Param("id"), func(b *model.Booking) (bool, error) {
		if b.UserID != actor.ID && !actor.Privileged() {
			return false, repository.ErrForbidden
		}
		if err := b.MarkMockPaid(ref); err != nil {
			return false, err
		}
		return true, nil
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	case errors.Is(err, model.ErrAlreadySettled):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking already paid"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to mark booking paid"})
	}
	publishPaid(ctx, b)
	return c.JSON(http.StatusOK, b)
}
