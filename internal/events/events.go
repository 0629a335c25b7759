package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProcessRequestedEvent is a request to start a background processing run.
// The payload is carried as opaque JSON so the emitting service does not
// depend on the task package that consumes it.
type ProcessRequestedEvent struct {
	// ID uniquely identifies this event
	ID uuid.UUID `json:"id"`

	// Type names the kind of task the handler should create
	Type string `json:"type"`

	// Payload holds the task-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *ProcessRequestedEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewProcessRequestedEvent creates a ProcessRequestedEvent with the given
// type and payload. The payload must be JSON-serializable.
func NewProcessRequestedEvent(eventType string, payload interface{}) (*ProcessRequestedEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &ProcessRequestedEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler processes emitted events and takes appropriate action,
// typically creating and submitting a background task.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ProcessRequestedEvent) error
}

// EventEmitter publishes events without direct knowledge of handlers,
// keeping services decoupled from the task machinery.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *ProcessRequestedEvent) error
}
