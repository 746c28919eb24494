package payment

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// LocalGateway is an in-process gateway for development and tests. Webhooks
// are signed with an HMAC-SHA256 of the raw body.
type LocalGateway struct {
	secret []byte

	mu      sync.Mutex
	intents map[string]*Intent
	keys    map[string]string
}

// NewLocalGateway creates a local gateway signing webhooks with secret. An
// empty secret is replaced with a random one, so webhooks can only be
// simulated in-process until a secret is configured.
func NewLocalGateway(secret string) *LocalGateway {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("payment: read random secret: %v", err))
		}
	}
	return &LocalGateway{
		secret:  key,
		intents: make(map[string]*Intent),
		keys:    make(map[string]string),
	}
}

// Name identifies the provider on stored payments.
func (g *LocalGateway) Name() string {
	return "local"
}

// CreateIntent records a new intent. Repeated idempotency keys return the same intent.
func (g *LocalGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if id, ok := g.keys[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		intent := *g.intents[id]
		return &intent, nil
	}

	id := "pi_local_" + uuid.NewString()
	intent := &Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + uuid.NewString()[:8],
		Status:       "requires_payment_method",
	}
	g.intents[id] = intent
	if req.IdempotencyKey != "" {
		g.keys[req.IdempotencyKey] = id
	}
	out := *intent
	return &out, nil
}

// CancelIntent marks an intent canceled.
func (g *LocalGateway) CancelIntent(ctx context.Context, intentID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[intentID]
	if !ok {
		return fmt.Errorf("payment intent %s not found", intentID)
	}
	intent.Status = "canceled"
	return nil
}

type localEvent struct {
	ID       string    `json:"id"`
	Type     EventType `json:"type"`
	IntentID string    `json:"intent_id"`
	Message  string    `json:"message,omitempty"`
}

// ParseEvent verifies the hex HMAC signature and decodes the event.
func (g *LocalGateway) ParseEvent(payload []byte, signature string) (*Event, error) {
	if !hmac.Equal([]byte(g.Sign(payload)), []byte(signature)) {
		return nil, ErrSignature
	}
	var ev localEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &Event{ID: ev.ID, Type: ev.Type, IntentID: ev.IntentID, Message: ev.Message}, nil
}

// Sign returns the signature ParseEvent expects for payload.
func (g *LocalGateway) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// EventPayload builds a signed webhook body for the given intent, as a
// developer would post it to simulate the provider.
func (g *LocalGateway) EventPayload(eventType EventType, intentID string) ([]byte, string, error) {
	body, err := json.Marshal(localEvent{ID: "evt_" + uuid.NewString(), Type: eventType, IntentID: intentID})
	if err != nil {
		return nil, "", err
	}
	return body, g.Sign(body), nil
}
