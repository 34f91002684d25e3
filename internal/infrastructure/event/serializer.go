package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// Envelope is the broker representation of a domain event
type Envelope struct {
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	ActorID       *uuid.UUID      `json:"actor_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope serializes event into an Envelope
func NewEnvelope(event shared.DomainEvent, actorID uuid.UUID) (*Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event.EventType(), err)
	}
	env := &Envelope{
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		OccurredAt:    event.OccurredAt().UTC(),
		Payload:       payload,
	}
	if actorID != uuid.Nil {
		env.ActorID = &actorID
	}
	return env, nil
}

// RoutingKey is <aggregate>.<event>, e.g. CustomerInvoice.InvoiceCreated
func (e *Envelope) RoutingKey() string {
	return e.AggregateType + "." + e.EventType
}

// Marshal returns the JSON body
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
