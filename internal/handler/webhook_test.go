package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwaraChokshi/The-Wheel-Deal/internal/model"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/payment"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/repository"
)

const webhookSecret = "whsec_test"

func seedAwaitingBooking(t *testing.T, s repository.BookingStore, id, intentID string) {
	t.Helper()
	b := &model.Booking{
		ID:            id,
		UserID:        "u1",
		CarID:         "car1",
		PickupDate:    "2024-06-01",
		ReturnDate:    "2024-06-05",
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentPending,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, b.BeginPayment(intentID))
	require.NoError(t, s.Create(context.Background(), b))
}

func deliver(h *WebhookHandler, body, sigHeader string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(body))
	if sigHeader != "" {
		req.Header.Set("Stripe-Signature", sigHeader)
	}
	rec := httptest.NewRecorder()
	_ = h.Handle(e.NewContext(req, rec))
	return rec
}

func signedDelivery(h *WebhookHandler, body string) *httptest.ResponseRecorder {
	return deliver(h, body, payment.SignPayload([]byte(body), webhookSecret, time.Now()))
}

func succeededBody(bookingID, intentID string) string {
	return fmt.Sprintf(`{
        "type": "payment_intent.succeeded",
        "data": {"object": {"id": %q, "metadata": {"bookingId": %q}}}
    }`, intentID, bookingID)
}

func TestWebhookSettlesBooking(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	seedAwaitingBooking(t, store, "b1", "pi_1")
	h := NewWebhookHandler(store, webhookSecret)

	rec := signedDelivery(h, succeededBody("b1", "pi_1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	b, err := store.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, model.StatusConfirmed, b.Status)
}

func TestWebhookDuplicateDeliveryIsIdempotent(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	seedAwaitingBooking(t, store, "b1", "pi_1")
	h := NewWebhookHandler(store, webhookSecret)

	body := succeededBody("b1", "pi_1")
	for i := 0; i < 3; i++ {
		rec := signedDelivery(h, body)
		assert.Equal(t, http.StatusOK, rec.Code, "delivery %d", i)
	}

	b, err := store.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, b.PaymentStatus)
}

func TestWebhookLateFailureDoesNotDowngrade(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	seedAwaitingBooking(t, store, "b1", "pi_1")
	h := NewWebhookHandler(store, webhookSecret)

	signedDelivery(h, succeededBody("b1", "pi_1"))

	// The failure of an earlier attempt arrives after success.
	failed := `{
        "type": "payment_intent.payment_failed",
        "data": {"object": {"id": "pi_1", "metadata": {"bookingId": "b1"}}}
    }`
	rec := signedDelivery(h, failed)
	assert.Equal(t, http.StatusOK, rec.Code, "late failure is still acknowledged")

	b, err := store.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, model.StatusConfirmed, b.Status)
}

func TestWebhookRefund(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	seedAwaitingBooking(t, store, "b1", "pi_1")
	h := NewWebhookHandler(store, webhookSecret)

	signedDelivery(h, succeededBody("b1", "pi_1"))

	// Charge events carry no booking metadata; correlation falls back to
	// the payment reference.
	refund := `{
        "type": "charge.refunded",
        "data": {"object": {"id": "ch_1", "payment_intent": "pi_1"}}
    }`
	rec := signedDelivery(h, refund)
	assert.Equal(t, http.StatusOK, rec.Code)

	b, err := store.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRefunded, b.PaymentStatus)
}

func TestWebhookBadSignature(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	seedAwaitingBooking(t, store, "b1", "pi_1")
	h := NewWebhookHandler(store, webhookSecret)

	body := succeededBody("b1", "pi_1")

	t.Run("missing header", func(t *testing.T) {
		rec := deliver(h, body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		rec := deliver(h, body, payment.SignPayload([]byte(body), "whsec_wrong", time.Now()))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	b, err := store.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentAwaiting, b.PaymentStatus, "rejected deliveries apply nothing")
}

func TestWebhookUnverifiedMode(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	seedAwaitingBooking(t, store, "b1", "pi_1")
	h := NewWebhookHandler(store, "") // no secret configured

	rec := deliver(h, succeededBody("b1", "pi_1"), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	b, err := store.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, b.PaymentStatus)
}

func TestWebhookIntentFallbackWhenMetadataMissing(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	seedAwaitingBooking(t, store, "b1", "pi_1")
	h := NewWebhookHandler(store, webhookSecret)

	body := `{
        "type": "payment_intent.succeeded",
        "data": {"object": {"id": "pi_1"}}
    }`
	rec := signedDelivery(h, body)
	assert.Equal(t, http.StatusOK, rec.Code)

	b, err := store.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, b.PaymentStatus)
}

func TestWebhookUnknownBookingStillAcknowledged(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	h := NewWebhookHandler(store, webhookSecret)

	rec := signedDelivery(h, succeededBody("ghost", "pi_ghost"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookUnrecognizedEventAcknowledged(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	seedAwaitingBooking(t, store, "b1", "pi_1")
	h := NewWebhookHandler(store, webhookSecret)

	body := `{"type": "customer.created", "data": {"object": {"id": "cus_1"}}}`
	rec := signedDelivery(h, body)
	assert.Equal(t, http.StatusOK, rec.Code)

	b, err := store.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentAwaiting, b.PaymentStatus)
}
