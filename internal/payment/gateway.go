package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// EventType is a provider webhook event the service reacts to.
type EventType string

const (
	EventIntentSucceeded EventType = "payment_intent.succeeded"
	EventIntentFailed    EventType = "payment_intent.payment_failed"
	EventIntentCanceled  EventType = "payment_intent.canceled"
)

// ErrSignature is returned when a webhook payload cannot be authenticated.
var ErrSignature = errors.New("webhook signature verification failed")

// IntentRequest asks the provider for a new payment intent.
type IntentRequest struct {
	BookingID      string
	Amount         decimal.Decimal
	Currency       string
	CustomerEmail  string
	IdempotencyKey string
}

// Intent is the provider's view of a payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

// Event is a verified webhook notification about an intent.
type Event struct {
	ID       string
	Type     EventType
	IntentID string
	Message  string
}

// Gateway creates and cancels payment intents and authenticates webhooks.
type Gateway interface {
	Name() string
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	CancelIntent(ctx context.Context, intentID string) error
	ParseEvent(payload []byte, signature string) (*Event, error)
}

// ToMinorUnits converts an amount to the smallest currency unit (cents).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func normalizeCurrency(currency string) string {
	if currency == "" {
		return "usd"
	}
	return strings.ToLower(currency)
}
