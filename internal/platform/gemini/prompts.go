package gemini

import (
	"bytes"
	"fmt"
	"text/template"
)

// Operation names. They double as template names and show up in logs.
const (
	opSummarize     = "summarize"
	opNeedsResponse = "needs_response"
	opCategorize    = "categorize"
	opMeeting       = "meeting_request"
	opDecline       = "decline_writer"
	opSchedule      = "schedule_writer"
	opReply         = "reply_writer"
)

const summarizeInstructions = `You are an email assistant for a busy executive. Summarize the email below.
Return a JSON object with the following fields:
- "from": the name and organization of the sender
- "subject": the subject line of the email
- "date": the date the email was sent
- "key_points": an array of strings summarizing the main points of the email
- "requests_action_items": an array of strings listing any explicit requests or actions required
- "context": if the email is part of a conversation, a brief summary of the related chain, otherwise an empty string
- "sentiment": a brief sentiment analysis of the email`

const needsResponseInstructions = `You decide whether an email needs a response from the recipient.
Newsletters, automated notifications, receipts, and FYI-only messages do not need a response.
Direct questions, requests, introductions, and time-sensitive matters do.
Return a JSON object with a single field "needs_response" whose value is exactly "respond" or "no response needed".`

const categorizeInstructions = `You triage emails that need a response.
Use "decline" for cold outreach, vendor pitches, and requests the recipient will turn down.
Use "move forward" for everything that deserves a substantive reply.
Return a JSON object with a single field "decision" whose value is exactly "decline" or "move forward".`

const meetingInstructions = `You decide whether an email is a meeting request.
An email is a meeting request when the sender asks to schedule, reschedule, or confirm a meeting or call.
Return a JSON object with a single field "decision" whose value is exactly "yes" or "no".`

const declineWriterInstructions = `You draft polite decline emails on behalf of the recipient.
Write a brief, courteous reply that declines the request in the email below.
Do not invent reasons and do not make commitments. Return only the body of the reply.`

const scheduleWriterInstructions = `You draft scheduling replies on behalf of the recipient.
Write a brief reply that agrees to meet and moves scheduling forward without committing to a specific time.
Return only the body of the reply.`

const replyWriterInstructions = `You draft reply emails on behalf of the recipient.
Write a concise, professional reply that addresses the sender's points and any requested actions.
Return only the body of the reply.`

// Prompt bindings. Decision prompts end with the JSON instruction so the
// response parser can pull a single field; writer prompts take the model's
// raw text as the draft body.
const (
	jsonOutputSuffix    = "\n\nProvide the output in JSON format."
	emailContentBinding = "\n\nEmail content: {{.EmailContent}}"
	summaryBinding      = "\n\nEmail summary: {{.Summary}}"
)

// promptTexts maps each operation to its full template text.
var promptTexts = map[string]string{
	opSummarize:     summarizeInstructions + emailContentBinding + jsonOutputSuffix,
	opNeedsResponse: needsResponseInstructions + summaryBinding + jsonOutputSuffix,
	opCategorize:    categorizeInstructions + emailContentBinding + jsonOutputSuffix,
	opMeeting:       meetingInstructions + emailContentBinding + jsonOutputSuffix,
	opDecline:       declineWriterInstructions + emailContentBinding,
	opSchedule:      scheduleWriterInstructions + emailContentBinding,
	opReply:         replyWriterInstructions + emailContentBinding,
}

// promptTemplates holds one parsed template per operation. text/template
// rather than html/template: email content must reach the model verbatim,
// not HTML-escaped.
var promptTemplates = template.Must(parsePromptTemplates())

func parsePromptTemplates() (*template.Template, error) {
	root := template.New("prompts")
	for name, text := range promptTexts {
		if _, err := root.New(name).Parse(text); err != nil {
			return nil, fmt.Errorf("failed to parse prompt template %q: %w", name, err)
		}
	}
	return root, nil
}

// renderPrompt executes the named operation template with the given bindings.
func renderPrompt(name string, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %q: %w", name, err)
	}
	return buf.String(), nil
}
