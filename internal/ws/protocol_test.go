package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/triage-api/internal/domain"
)

func TestParseClientMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		payload      string
		wantErr      error
		wantFeedback bool
	}{
		{
			name:         "valid positive feedback",
			payload:      `{"type":"provide_feedback","feedback":true}`,
			wantFeedback: true,
		},
		{
			name:         "valid negative feedback",
			payload:      `{"type":"provide_feedback","feedback":false}`,
			wantFeedback: false,
		},
		{
			name:    "malformed json",
			payload: `{"type":"provide_feedback",`,
			wantErr: ErrMalformedMessage,
		},
		{
			name:    "missing feedback field",
			payload: `{"type":"provide_feedback"}`,
			wantErr: ErrMalformedMessage,
		},
		{
			name:    "missing type field",
			payload: `{"feedback":true}`,
			wantErr: ErrMalformedMessage,
		},
		{
			name:    "unknown type",
			payload: `{"type":"subscribe"}`,
			wantErr: ErrUnknownMessageType,
		},
		{
			name:    "server-side type sent by client",
			payload: `{"type":"status_update"}`,
			wantErr: ErrUnknownMessageType,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			msg, err := ParseClientMessage([]byte(tc.payload))

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, msg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, msg)
			assert.Equal(t, TypeProvideFeedback, msg.Type)
			require.NotNil(t, msg.Feedback)
			assert.Equal(t, tc.wantFeedback, *msg.Feedback)
		})
	}
}

func TestNewStatusUpdateCarriesTaskState(t *testing.T) {
	t.Parallel()

	state := domain.TaskState{
		Status: domain.TaskStatusDraftCreated,
		Results: &domain.RunSummary{
			Processed: 3,
			Outcomes:  map[string]string{"thread-1": "archived"},
		},
		DraftEmail:     "Thanks, see you Tuesday.",
		DraftSubject:   "Re: Kickoff",
		DraftRecipient: "ana@example.com",
	}

	msg := NewStatusUpdate(state)

	assert.Equal(t, TypeStatusUpdate, msg.Type)
	assert.Equal(t, domain.TaskStatusDraftCreated, msg.Status)
	assert.Equal(t, state.Results, msg.Results)
	assert.Equal(t, "Re: Kickoff", msg.DraftSubject)
	assert.False(t, msg.FeedbackRequired)
}

func TestStatusUpdateSerializesFeedbackFlag(t *testing.T) {
	t.Parallel()

	// feedback_required must appear even when false so clients can rely
	// on its presence instead of treating absence as a third state.
	msg := NewStatusUpdate(domain.NewTaskState())
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "feedback_required")
	assert.Equal(t, false, decoded["feedback_required"])
	assert.NotContains(t, decoded, "results", "empty results should be omitted")
}

func TestFrameConstructors(t *testing.T) {
	t.Parallel()

	t.Run("feedback required", func(t *testing.T) {
		t.Parallel()
		msg := NewFeedbackRequired("Is this decision correct?", "respond", "summary text")
		assert.Equal(t, TypeFeedbackRequired, msg.Type)
		assert.Equal(t, "Is this decision correct?", msg.Prompt)
		assert.Equal(t, "respond", msg.Decision)
		assert.Equal(t, "summary text", msg.Context)
	})

	t.Run("feedback received", func(t *testing.T) {
		t.Parallel()
		msg := NewFeedbackReceived()
		assert.Equal(t, TypeFeedbackReceived, msg.Type)
		assert.Equal(t, "success", msg.Status)
	})

	t.Run("feedback timeout", func(t *testing.T) {
		t.Parallel()
		msg := NewFeedbackTimeout("No feedback received, proceeding with default")
		assert.Equal(t, TypeFeedbackTimeout, msg.Type)
		assert.NotEmpty(t, msg.Message)
	})

	t.Run("error kinds", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, TypeError, NewErrorMessage(TypeError, "bad frame").Type)
		assert.Equal(t, TypeFeedbackError, NewErrorMessage(TypeFeedbackError, "no pending request").Type)
	})
}

func TestFeedbackRequiredOmitsNilContext(t *testing.T) {
	t.Parallel()

	msg := NewFeedbackRequired("Is this category correct?", "decline", nil)
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "context")
}
