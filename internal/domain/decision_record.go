package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Decision record validation errors.
var (
	ErrEmptyThreadID = errors.New("thread ID cannot be empty")
	ErrEmptyStage    = errors.New("stage cannot be empty")
	ErrNilOperatorID = errors.New("operator ID cannot be nil")
)

// DecisionRecord is one audit row from a pipeline run: either a checkpoint
// the operator confirmed or rejected, or the terminal action taken for a
// thread. Outcome is set only on records that end a thread's processing.
type DecisionRecord struct {
	ID         uuid.UUID `json:"id"`
	OperatorID uuid.UUID `json:"operator_id"`
	ThreadID   string    `json:"thread_id"`
	MessageID  string    `json:"message_id"`
	Stage      string    `json:"stage"`
	Decision   string    `json:"decision"`
	Approved   bool      `json:"approved"`
	Answer     string    `json:"answer,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewDecisionRecord creates an audit record for a checkpoint or terminal
// action in the given thread.
func NewDecisionRecord(operatorID uuid.UUID, threadID, messageID, stage, decision string, approved bool, answer string) (*DecisionRecord, error) {
	rec := &DecisionRecord{
		ID:         uuid.New(),
		OperatorID: operatorID,
		ThreadID:   threadID,
		MessageID:  messageID,
		Stage:      stage,
		Decision:   decision,
		Approved:   approved,
		Answer:     answer,
		CreatedAt:  time.Now().UTC(),
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Validate checks the record's required fields.
func (r *DecisionRecord) Validate() error {
	switch {
	case r.OperatorID == uuid.Nil:
		return ErrNilOperatorID
	case r.ThreadID == "":
		return ErrEmptyThreadID
	case r.Stage == "":
		return ErrEmptyStage
	}
	return nil
}
