package payment

import "encoding/json"

// EventKind is the closed set of settlement outcomes the reconciler acts
// on.  Everything else decodes to EventUnrecognized and is acknowledged
// without touching state.
type EventKind int

const (
	EventUnrecognized EventKind = iota
	EventSucceeded
	EventFailed
	EventRefunded
)

// SettlementEvent is an inbound processor event decoded once at the
// boundary.  BookingID comes from correlation metadata and may be empty;
// IntentID identifies the payment reference and is the fallback lookup key.
type SettlementEvent struct {
	Kind      EventKind
	Type      string // raw processor event type, kept for logging
	BookingID string
	IntentID  string
}

// rawEvent mirrors just enough of the processor's envelope to correlate
// and classify an event.
type rawEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string `json:"id"`
			Metadata struct {
				BookingID string `json:"bookingId"`
			} `json:"metadata"`
			PaymentIntent string `json:"payment_intent"`
		} `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes a verified webhook payload into a SettlementEvent.
// For intent events the object id is the payment reference; for charge
// events the reference is the charge's payment_intent field.
func ParseEvent(body []byte) (SettlementEvent, error) {
	var raw rawEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return SettlementEvent{}, err
	}
	ev := SettlementEvent{
		Type:      raw.Type,
		BookingID: raw.Data.Object.Metadata.BookingID,
		IntentID:  raw.Data.Object.ID,
	}
	switch raw.Type {
	case "payment_intent.succeeded":
		ev.Kind = EventSucceeded
	case "payment_intent.payment_failed":
		ev.Kind = EventFailed
	case "charge.refunded":
		ev.Kind = EventRefunded
		ev.IntentID = raw.Data.Object.PaymentIntent
	default:
		ev.Kind = EventUnrecognized
	}
	return ev, nil
}
