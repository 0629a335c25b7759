package mail

// MessageRef identifies one message in a provider list page.
type MessageRef struct {
	ID       string
	ThreadID string
}

// Message is a message's authoritative detail as returned by the provider.
// Labels reflect the provider's current state, not whatever the list query
// matched on.
type Message struct {
	ID       string
	ThreadID string
	Labels   []string
}

// Item is one message selected into a thread group. Position is 1-based in
// discovery order within the thread; position 1 is the newest message and
// the one the pipeline acts on.
type Item struct {
	MessageID string
	ThreadID  string
	Labels    []string
	Position  int
}

// Thread is one group of selected messages sharing a thread ID.
type Thread struct {
	ID       string
	Messages []Item
}

// Content is the readable form of a single message, used to build LLM
// prompts and drafts. Body is cleaned of markup and truncated by the
// retriever.
type Content struct {
	MessageID string   `json:"messageId"`
	ThreadID  string   `json:"threadId"`
	Subject   string   `json:"subject"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	Cc        string   `json:"cc,omitempty"`
	Date      string   `json:"date"`
	Labels    []string `json:"labelIds,omitempty"`
	Snippet   string   `json:"snippet,omitempty"`
	Body      string   `json:"body"`
}
