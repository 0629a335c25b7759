package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/triage-api/internal/events"
)

// TaskFactory builds a runnable task for an operator's processing run.
// The pipeline package provides the concrete implementation.
type TaskFactory interface {
	CreateTask(operatorID uuid.UUID) (Task, error)
}

// TaskSubmitter enqueues tasks for background execution.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// ProcessEventHandler implements the events.EventHandler interface. It
// turns ProcessRequestedEvents into tasks and submits them to the runner.
type ProcessEventHandler struct {
	factory   TaskFactory
	submitter TaskSubmitter
	logger    *slog.Logger
}

// NewProcessEventHandler creates an event handler that uses the given
// factory to create tasks and submits them to the provided submitter.
func NewProcessEventHandler(
	factory TaskFactory,
	submitter TaskSubmitter,
	logger *slog.Logger,
) *ProcessEventHandler {
	return &ProcessEventHandler{
		factory:   factory,
		submitter: submitter,
		logger:    logger.With("component", "process_event_handler"),
	}
}

// HandleEvent processes an event by creating and submitting a task.
// Events of other types are ignored so additional handlers can coexist
// on the same emitter.
func (h *ProcessEventHandler) HandleEvent(
	ctx context.Context,
	event *events.ProcessRequestedEvent,
) error {
	if event.Type != TaskTypeEmailProcessing {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload struct {
		OperatorID string `json:"operator_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	operatorID, err := uuid.Parse(payload.OperatorID)
	if err != nil {
		h.logger.Error("invalid operator ID",
			"error", err,
			"event_id", event.ID)
		return fmt.Errorf("invalid operator ID: %w", err)
	}

	task, err := h.factory.CreateTask(operatorID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"operator_id", operatorID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.submitter.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"operator_id", operatorID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted",
		"task_id", task.ID(),
		"operator_id", operatorID,
		"event_id", event.ID)
	return nil
}

// Ensure ProcessEventHandler implements events.EventHandler
var _ events.EventHandler = (*ProcessEventHandler)(nil)
