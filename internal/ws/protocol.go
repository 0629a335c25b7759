package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/phrazzld/triage-api/internal/domain"
)

// Wire message type identifiers. Every frame carries one of these in its
// "type" field.
const (
	TypeStatusUpdate     = "status_update"
	TypeFeedbackRequired = "feedback_required"
	TypeFeedbackReceived = "feedback_received"
	TypeFeedbackTimeout  = "feedback_timeout"
	TypeFeedbackError    = "feedback_error"
	TypeError            = "error"
	TypeProvideFeedback  = "provide_feedback"
)

// Protocol errors for client frames. Both are recoverable: the offending
// frame gets a typed error reply and the connection stays open.
var (
	ErrMalformedMessage   = errors.New("malformed client message")
	ErrUnknownMessageType = errors.New("unknown message type")
)

// StatusUpdate reports the user's current task state, including any
// pending feedback request so a reconnecting client can re-render the
// prompt it may have missed.
type StatusUpdate struct {
	Type             string             `json:"type"`
	Status           domain.TaskStatus  `json:"status"`
	Results          *domain.RunSummary `json:"results,omitempty"`
	DraftEmail       string             `json:"draft_email,omitempty"`
	DraftSubject     string             `json:"draft_subject,omitempty"`
	DraftRecipient   string             `json:"draft_recipient,omitempty"`
	FeedbackRequired bool               `json:"feedback_required"`
	CurrentPrompt    string             `json:"current_prompt,omitempty"`
	CurrentDecision  string             `json:"current_decision,omitempty"`
	CurrentContext   any                `json:"current_context,omitempty"`
}

// FeedbackRequired asks the operator to confirm a pipeline decision.
type FeedbackRequired struct {
	Type     string `json:"type"`
	Prompt   string `json:"prompt"`
	Decision string `json:"decision,omitempty"`
	Context  any    `json:"context,omitempty"`
}

// FeedbackReceived acknowledges a successfully paired provide_feedback.
type FeedbackReceived struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// FeedbackTimeout notifies the operator that a checkpoint expired and the
// pipeline continued with the default outcome.
type FeedbackTimeout struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ErrorMessage is the typed error reply for rejected or malformed client
// frames. Kind is either TypeError or TypeFeedbackError.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewStatusUpdate builds a status_update frame from task state.
func NewStatusUpdate(state domain.TaskState) StatusUpdate {
	return StatusUpdate{
		Type:           TypeStatusUpdate,
		Status:         state.Status,
		Results:        state.Results,
		DraftEmail:     state.DraftEmail,
		DraftSubject:   state.DraftSubject,
		DraftRecipient: state.DraftRecipient,
	}
}

// NewFeedbackRequired builds a feedback_required frame.
func NewFeedbackRequired(prompt, decision string, context any) FeedbackRequired {
	return FeedbackRequired{
		Type:     TypeFeedbackRequired,
		Prompt:   prompt,
		Decision: decision,
		Context:  context,
	}
}

// NewFeedbackReceived builds the acknowledgment frame.
func NewFeedbackReceived() FeedbackReceived {
	return FeedbackReceived{
		Type:   TypeFeedbackReceived,
		Status: "success",
	}
}

// NewFeedbackTimeout builds a feedback_timeout frame.
func NewFeedbackTimeout(message string) FeedbackTimeout {
	return FeedbackTimeout{
		Type:    TypeFeedbackTimeout,
		Message: message,
	}
}

// NewErrorMessage builds an error frame of the given kind (TypeError or
// TypeFeedbackError).
func NewErrorMessage(kind, message string) ErrorMessage {
	return ErrorMessage{
		Type:    kind,
		Message: message,
	}
}

// ClientMessage is a frame received from a client. Only provide_feedback
// is defined today; the envelope keeps the type tag so new client frames
// can be added without breaking parsing.
type ClientMessage struct {
	Type     string `json:"type"`
	Feedback *bool  `json:"feedback,omitempty"`
}

// ParseClientMessage decodes and validates a client frame. Malformed JSON
// or a provide_feedback without its boolean wraps ErrMalformedMessage; a
// recognized envelope with an unexpected type wraps ErrUnknownMessageType.
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch msg.Type {
	case TypeProvideFeedback:
		if msg.Feedback == nil {
			return nil, fmt.Errorf("%w: provide_feedback requires a boolean feedback field", ErrMalformedMessage)
		}
	case "":
		return nil, fmt.Errorf("%w: missing type field", ErrMalformedMessage)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, msg.Type)
	}

	return &msg, nil
}
