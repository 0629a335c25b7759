package domain

import "errors"

// TaskStatus represents the processing state of a user's background run.
type TaskStatus string

// Possible task status values
const (
	TaskStatusIdle         TaskStatus = "idle"
	TaskStatusStarting     TaskStatus = "starting"
	TaskStatusRunning      TaskStatus = "running"
	TaskStatusDraftCreated TaskStatus = "draft_created"
	TaskStatusCompleted    TaskStatus = "completed"
	TaskStatusFailed       TaskStatus = "failed"
)

// ErrInvalidTaskStatus is returned when a task status is not one of the
// defined values.
var ErrInvalidTaskStatus = errors.New("invalid task status")

// IsValid reports whether the status is one of the defined values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusIdle, TaskStatusStarting, TaskStatusRunning,
		TaskStatusDraftCreated, TaskStatusCompleted, TaskStatusFailed:
		return true
	}
	return false
}

// RunSummary is the compact result payload of one pipeline run. Outcomes
// maps thread IDs to their terminal outcome (archived, declined,
// scheduled, replied, skipped).
type RunSummary struct {
	Processed int               `json:"processed"`
	Outcomes  map[string]string `json:"outcomes,omitempty"`
	Message   string            `json:"message,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// TaskState is the per-user background task record. One exists per user
// key, created lazily on first access and kept for the process lifetime.
// It is mutated only by the worker running for that user (and the scoped
// running-flag release) and read by status queries.
type TaskState struct {
	Running        bool        `json:"running"`
	Status         TaskStatus  `json:"status"`
	Results        *RunSummary `json:"results,omitempty"`
	DraftEmail     string      `json:"draft_email,omitempty"`
	DraftSubject   string      `json:"draft_subject,omitempty"`
	DraftRecipient string      `json:"draft_recipient,omitempty"`
}

// NewTaskState returns the initial state for a user: not running, idle,
// no results.
func NewTaskState() TaskState {
	return TaskState{
		Status: TaskStatusIdle,
	}
}
