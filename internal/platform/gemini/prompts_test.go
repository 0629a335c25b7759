package gemini

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPromptBindsEmailContent(t *testing.T) {
	t.Parallel()

	for _, op := range []string{opSummarize, opCategorize, opMeeting, opDecline, opSchedule, opReply} {
		t.Run(op, func(t *testing.T) {
			t.Parallel()

			prompt, err := renderPrompt(op, promptData{EmailContent: "the raw email"})

			require.NoError(t, err)
			assert.Contains(t, prompt, "Email content: the raw email")
		})
	}
}

func TestRenderPromptBindsSummaryForNeedsResponse(t *testing.T) {
	t.Parallel()

	prompt, err := renderPrompt(opNeedsResponse, promptData{Summary: "a short summary"})

	require.NoError(t, err)
	assert.Contains(t, prompt, "Email summary: a short summary")
	assert.NotContains(t, prompt, "Email content:")
}

func TestDecisionPromptsAskForJSON(t *testing.T) {
	t.Parallel()

	decisionOps := []string{opSummarize, opNeedsResponse, opCategorize, opMeeting}
	writerOps := []string{opDecline, opSchedule, opReply}

	for _, op := range decisionOps {
		prompt, err := renderPrompt(op, promptData{EmailContent: "x", Summary: "y"})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(prompt, jsonOutputSuffix),
			"decision prompt %q should end with the JSON instruction", op)
	}

	for _, op := range writerOps {
		prompt, err := renderPrompt(op, promptData{EmailContent: "x"})
		require.NoError(t, err)
		assert.False(t, strings.Contains(prompt, "JSON"),
			"writer prompt %q should not mention JSON", op)
	}
}

func TestRenderPromptDoesNotEscapeContent(t *testing.T) {
	t.Parallel()

	// Email bodies routinely carry characters html/template would escape.
	content := `Greetings <team> & "friends", it's 5 > 4`

	prompt, err := renderPrompt(opReply, promptData{EmailContent: content})

	require.NoError(t, err)
	assert.Contains(t, prompt, content, "email content must reach the model verbatim")
}

func TestRenderPromptUnknownTemplate(t *testing.T) {
	t.Parallel()

	_, err := renderPrompt("no_such_operation", promptData{EmailContent: "x"})

	assert.Error(t, err)
}
