package gemini

// promptData carries the bindings available to prompt templates.
type promptData struct {
	// EmailContent is the serialized email content, already truncated by
	// the caller to fit the prompt budget.
	EmailContent string

	// Summary is the summarizer's output; only the needs-response prompt
	// binds it.
	Summary string
}

// emailSummary mirrors the JSON object the summarize prompt asks for. It is
// used to validate the model's output before the raw JSON is handed back to
// the pipeline.
type emailSummary struct {
	From                string   `json:"from"`
	Subject             string   `json:"subject"`
	Date                string   `json:"date"`
	KeyPoints           []string `json:"key_points"`
	RequestsActionItems []string `json:"requests_action_items"`
	Context             string   `json:"context,omitempty"`
	Sentiment           string   `json:"sentiment"`
}

// needsResponseEnvelope is the JSON shape of the needs-response decision.
type needsResponseEnvelope struct {
	NeedsResponse string `json:"needs_response"`
}

// decisionEnvelope is the JSON shape shared by the categorize and meeting
// decisions.
type decisionEnvelope struct {
	Decision string `json:"decision"`
}
