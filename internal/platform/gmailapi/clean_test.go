package gmailapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "unescapes HTML entities",
			input:    "Ben &amp; Jerry &lt;3",
			expected: "Ben & Jerry <3",
		},
		{
			name:     "removes zero-width characters",
			input:    "he​llo\uFEFF world",
			expected: "hello world",
		},
		{
			name:     "strips carriage returns but keeps newlines",
			input:    "line one\r\nline two",
			expected: "line one\nline two",
		},
		{
			name:     "removes bracketed image links",
			input:    "Logo [https://example.com/logo.png] here",
			expected: "Logo here",
		},
		{
			name:     "removes bare URLs",
			input:    "click https://example.com/a?b=c now",
			expected: "click now",
		},
		{
			name:     "collapses runs of spaces and tabs per line",
			input:    "a  \t b\n  c   d  ",
			expected: "a b\nc d",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, cleanText(tc.input))
		})
	}
}

func TestStripHTMLTags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Hello world", stripHTMLTags(`<p style="x">Hello</p> <b>world</b>`))
	assert.Equal(t, "plain", stripHTMLTags("plain"))
}

func TestVisibleReply(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain message untouched",
			input:    "Thanks for the update.\nSee you Monday.",
			expected: "Thanks for the update.\nSee you Monday.",
		},
		{
			name:     "cuts at attribution line",
			input:    "Sounds good.\n\nOn Mon, Jun 2, 2025 at 9:00 AM Ada Lovelace wrote:\n> earlier text",
			expected: "Sounds good.",
		},
		{
			name:     "drops quoted lines",
			input:    "Agreed.\n> quoted one\n > quoted two\nFinal line.",
			expected: "Agreed.\nFinal line.",
		},
		{
			name:     "cuts at original message separator",
			input:    "FYI below.\n---- Original Message ----\nFrom: someone",
			expected: "FYI below.",
		},
		{
			name:     "cuts at forwarded from block",
			input:    "Please review.\nFrom: Grace Hopper\nSent: Tuesday",
			expected: "Please review.",
		},
		{
			name:     "all quoted yields empty",
			input:    "> only quotes\n> nothing else",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, visibleReply(tc.input))
		})
	}
}
