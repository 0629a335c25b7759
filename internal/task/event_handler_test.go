package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/triage-api/internal/events"
)

// mockTaskFactory implements TaskFactory for testing
type mockTaskFactory struct {
	CreateTaskFn     func(operatorID uuid.UUID) (Task, error)
	CreateTaskCalled bool
	LastOperatorID   uuid.UUID
}

func (m *mockTaskFactory) CreateTask(operatorID uuid.UUID) (Task, error) {
	m.CreateTaskCalled = true
	m.LastOperatorID = operatorID
	return m.CreateTaskFn(operatorID)
}

// mockSubmitter implements TaskSubmitter for testing
type mockSubmitter struct {
	SubmitFn     func(ctx context.Context, task Task) error
	SubmitCalled bool
	LastTask     Task
}

func (m *mockSubmitter) Submit(ctx context.Context, task Task) error {
	m.SubmitCalled = true
	m.LastTask = task
	return m.SubmitFn(ctx, task)
}

func TestProcessEventHandler_HandleEvent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("successfully handle email processing event", func(t *testing.T) {
		mockTask := NewMockTask(TaskTypeEmailProcessing)

		factory := &mockTaskFactory{
			CreateTaskFn: func(operatorID uuid.UUID) (Task, error) {
				return mockTask, nil
			},
		}
		submitter := &mockSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				return nil
			},
		}

		handler := NewProcessEventHandler(factory, submitter, logger)

		operatorID := uuid.New()
		payload := map[string]string{"operator_id": operatorID.String()}
		event, err := events.NewProcessRequestedEvent(TaskTypeEmailProcessing, payload)
		require.NoError(t, err)

		err = handler.HandleEvent(context.Background(), event)
		assert.NoError(t, err)

		assert.True(t, factory.CreateTaskCalled)
		assert.Equal(t, operatorID, factory.LastOperatorID)
		assert.True(t, submitter.SubmitCalled)
		assert.Equal(t, mockTask, submitter.LastTask)
	})

	t.Run("ignore unsupported event type", func(t *testing.T) {
		factory := &mockTaskFactory{
			CreateTaskFn: func(operatorID uuid.UUID) (Task, error) {
				t.Fail() // Should not be called
				return nil, nil
			},
		}
		submitter := &mockSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				t.Fail() // Should not be called
				return nil
			},
		}

		handler := NewProcessEventHandler(factory, submitter, logger)

		event, err := events.NewProcessRequestedEvent("unsupported_type", map[string]string{"key": "value"})
		require.NoError(t, err)

		err = handler.HandleEvent(context.Background(), event)
		assert.NoError(t, err)

		assert.False(t, factory.CreateTaskCalled)
		assert.False(t, submitter.SubmitCalled)
	})

	t.Run("handle invalid operator ID", func(t *testing.T) {
		factory := &mockTaskFactory{
			CreateTaskFn: func(operatorID uuid.UUID) (Task, error) {
				t.Fail() // Should not be called
				return nil, nil
			},
		}
		submitter := &mockSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				t.Fail() // Should not be called
				return nil
			},
		}

		handler := NewProcessEventHandler(factory, submitter, logger)

		payload := map[string]string{"operator_id": "not-a-uuid"}
		event, err := events.NewProcessRequestedEvent(TaskTypeEmailProcessing, payload)
		require.NoError(t, err)

		err = handler.HandleEvent(context.Background(), event)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid operator ID")

		assert.False(t, factory.CreateTaskCalled)
		assert.False(t, submitter.SubmitCalled)
	})

	t.Run("handle task creation failure", func(t *testing.T) {
		expectedErr := errors.New("task creation failed")

		factory := &mockTaskFactory{
			CreateTaskFn: func(operatorID uuid.UUID) (Task, error) {
				return nil, expectedErr
			},
		}
		submitter := &mockSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				t.Fail() // Should not be called
				return nil
			},
		}

		handler := NewProcessEventHandler(factory, submitter, logger)

		operatorID := uuid.New()
		payload := map[string]string{"operator_id": operatorID.String()}
		event, err := events.NewProcessRequestedEvent(TaskTypeEmailProcessing, payload)
		require.NoError(t, err)

		err = handler.HandleEvent(context.Background(), event)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create task")

		assert.True(t, factory.CreateTaskCalled)
		assert.Equal(t, operatorID, factory.LastOperatorID)
		assert.False(t, submitter.SubmitCalled)
	})

	t.Run("handle task submission failure", func(t *testing.T) {
		expectedErr := errors.New("task submission failed")
		mockTask := NewMockTask(TaskTypeEmailProcessing)

		factory := &mockTaskFactory{
			CreateTaskFn: func(operatorID uuid.UUID) (Task, error) {
				return mockTask, nil
			},
		}
		submitter := &mockSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				return expectedErr
			},
		}

		handler := NewProcessEventHandler(factory, submitter, logger)

		operatorID := uuid.New()
		payload := map[string]string{"operator_id": operatorID.String()}
		event, err := events.NewProcessRequestedEvent(TaskTypeEmailProcessing, payload)
		require.NoError(t, err)

		err = handler.HandleEvent(context.Background(), event)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to submit task")

		assert.True(t, factory.CreateTaskCalled)
		assert.True(t, submitter.SubmitCalled)
		assert.Equal(t, mockTask, submitter.LastTask)
	})
}
