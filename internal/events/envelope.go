package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventEnvelope is the common wrapper of every event on the bus.
type EventEnvelope[T any] struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	CausationID   string    `json:"causationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	Sequence      *int64    `json:"sequence,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
	Schema        string    `json:"schema"`
	Payload       T         `json:"payload"`
}

// EnvelopeMetadata carries correlation/causation context for emitted events.
type EnvelopeMetadata struct {
	CorrelationID string
	CausationID   string
}

func (e EventEnvelope[T]) Validate(expectedName string, expectedVersion int) error {
	if e.EventName != expectedName {
		return fmt.Errorf("unexpected eventName: %s", e.EventName)
	}
	if e.EventVersion != expectedVersion {
		return fmt.Errorf("unexpected eventVersion: %d", e.EventVersion)
	}
	if e.PartitionKey == "" {
		return fmt.Errorf("missing partitionKey")
	}
	if e.EventID == "" {
		return fmt.Errorf("missing eventId")
	}
	return nil
}

// SequenceValue returns the producer sequence, zero when absent.
func (e EventEnvelope[T]) SequenceValue() int64 {
	if e.Sequence == nil {
		return 0
	}
	return *e.Sequence
}

// Decode parses body as an envelope of T and validates its identity.
// Failures wrap ErrMalformed.
func Decode[T any](body []byte, name string, version int) (EventEnvelope[T], error) {
	var env EventEnvelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return EventEnvelope[T]{}, fmt.Errorf("%w: unmarshal %s: %v", ErrMalformed, name, err)
	}
	if err := env.Validate(name, version); err != nil {
		return EventEnvelope[T]{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return env, nil
}
