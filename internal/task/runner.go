package task

import (
	"context"
	"fmt"
	"log/slog"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// TaskRunner ties a TaskQueue to a WorkerPool and manages background task
// processing. Tasks are held in memory only; nothing survives a restart.
type TaskRunner struct {
	queue  *TaskQueue
	pool   *WorkerPool
	logger *slog.Logger
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)

	runner := &TaskRunner{
		queue:  queue,
		pool:   pool,
		logger: logger,
	}

	pool.SetErrorHandler(func(task Task, err error) {
		// Default error handler just logs the error
		logger.Error("task execution failed",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"error", err)
	})

	return runner
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Submit adds a new task to the queue
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.queue.Enqueue(task); err != nil {
		return fmt.Errorf("failed to submit task: %w", err)
	}

	r.logger.Debug("task submitted",
		"task_id", task.ID(),
		"task_type", task.Type())
	return nil
}

// Start launches the worker pool and begins processing tasks
func (r *TaskRunner) Start() {
	r.pool.Start()
}

// Stop gracefully shuts down the task runner. Workers are cancelled and
// waited for; tasks still queued are dropped.
func (r *TaskRunner) Stop() {
	r.pool.Stop()
	r.queue.Close()
}
