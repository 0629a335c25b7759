package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/triage-api/internal/task"
)

// Task is one queued processing run for an operator. It satisfies
// task.Task; the worker pool calls Execute on a worker goroutine, which is
// the goroutine the feedback checkpoints later block.
type Task struct {
	id         uuid.UUID
	operatorID uuid.UUID
	processor  *Processor
	logger     *slog.Logger

	mu     sync.Mutex
	status task.TaskStatus
}

// NewTask creates a pending processing-run task for the operator.
func NewTask(operatorID uuid.UUID, processor *Processor, logger *slog.Logger) (*Task, error) {
	if operatorID == uuid.Nil {
		return nil, fmt.Errorf("operator ID cannot be nil")
	}
	if processor == nil {
		return nil, fmt.Errorf("processor cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Task{
		id:         uuid.New(),
		operatorID: operatorID,
		processor:  processor,
		logger:     logger.With("component", "pipeline_task"),
		status:     task.TaskStatusPending,
	}, nil
}

// ID implements task.Task.
func (t *Task) ID() uuid.UUID {
	return t.id
}

// Type implements task.Task.
func (t *Task) Type() string {
	return task.TaskTypeEmailProcessing
}

// Status implements task.Task.
func (t *Task) Status() task.TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *Task) setStatus(status task.TaskStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
}

// Execute runs the processing pipeline for the task's operator. The
// operator-facing failure state is handled inside the processor; the
// returned error feeds the worker pool's error handler.
func (t *Task) Execute(ctx context.Context) error {
	log := t.logger.With("task_id", t.id, "operator_id", t.operatorID)
	t.setStatus(task.TaskStatusProcessing)
	log.Info("processing run task started")

	if err := t.processor.Run(ctx, t.operatorID); err != nil {
		t.setStatus(task.TaskStatusFailed)
		return fmt.Errorf("processing run for operator %s: %w", t.operatorID, err)
	}

	t.setStatus(task.TaskStatusCompleted)
	log.Info("processing run task finished")
	return nil
}

// Factory builds processing-run tasks around one shared Processor. It
// satisfies task.TaskFactory for the event handler.
type Factory struct {
	processor *Processor
	logger    *slog.Logger
}

// NewFactory creates a task factory over processor.
func NewFactory(processor *Processor, logger *slog.Logger) *Factory {
	return &Factory{
		processor: processor,
		logger:    logger,
	}
}

// CreateTask implements task.TaskFactory.
func (f *Factory) CreateTask(operatorID uuid.UUID) (task.Task, error) {
	return NewTask(operatorID, f.processor, f.logger)
}

var _ task.Task = (*Task)(nil)
var _ task.TaskFactory = (*Factory)(nil)
