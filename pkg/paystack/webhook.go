package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// SignatureHeader carries the HMAC of the raw webhook body
const SignatureHeader = "x-paystack-signature"

type EventKind string

const (
	EventChargeSuccess   EventKind = "charge.success"
	EventChargeFailed    EventKind = "charge.failed"
	EventTransferSuccess EventKind = "transfer.success"
	EventTransferFailed  EventKind = "transfer.failed"
	EventUnknown         EventKind = "unknown"
)

// AffectsBooking reports whether the event moves a booking
func (k EventKind) AffectsBooking() bool {
	return k == EventChargeSuccess || k == EventChargeFailed
}

// Event is a decoded webhook delivery
type Event struct {
	Kind      EventKind
	Name      string // as sent, kept for logging unknown kinds
	Reference string
	Amount    int64 // kobo
	Customer  Customer
}

type Customer struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string   `json:"reference"`
		Amount    int64    `json:"amount"`
		Customer  Customer `json:"customer"`
	} `json:"data"`
}

// ValidateWebhookSignature recomputes the HMAC-SHA512 of body keyed with
// the secret and compares it to the hex header in constant time
func (c *Client) ValidateWebhookSignature(body []byte, signature string) bool {
	signature = strings.TrimSpace(signature)
	if signature == "" || c.secretKey == "" {
		return false
	}
	got, err := hex.DecodeString(strings.ToLower(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}

// Sign returns the signature the gateway would send for body
func (c *Client) Sign(body []byte) string {
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseWebhookEvent decodes a verified webhook body. Unrecognised event
// names come back as EventUnknown rather than an error.
func ParseWebhookEvent(body []byte) (*Event, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}

	kind := EventKind(p.Event)
	switch kind {
	case EventChargeSuccess, EventChargeFailed, EventTransferSuccess, EventTransferFailed:
	default:
		kind = EventUnknown
	}

	return &Event{
		Kind:      kind,
		Name:      p.Event,
		Reference: p.Data.Reference,
		Amount:    p.Data.Amount,
		Customer:  p.Data.Customer,
	}, nil
}
