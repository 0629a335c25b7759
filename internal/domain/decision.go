package domain

import "strings"

// ResponseDecision is the outcome of the needs-response stage.
type ResponseDecision string

// Response decision values. The wire values match what the decision
// engine emits and what operators see in checkpoint prompts.
const (
	ResponseDecisionRespond    ResponseDecision = "respond"
	ResponseDecisionNoResponse ResponseDecision = "no response needed"
)

// Category is the outcome of the categorization stage. Anything other
// than decline moves the thread forward to the meeting decision.
type Category string

// Category values.
const (
	CategoryDecline     Category = "decline"
	CategoryMoveForward Category = "move forward"
)

// Invert flips a category, used when the operator rejects it.
func (c Category) Invert() Category {
	if c == CategoryDecline {
		return CategoryMoveForward
	}
	return CategoryDecline
}

// Pipeline stages recorded in the decision audit log.
const (
	StageNeedsResponse = "needs_response"
	StageCategory      = "category"
	StageMeeting       = "meeting"
	StageDraft         = "draft"
)

// Terminal outcomes recorded per thread in a RunSummary.
const (
	OutcomeArchived  = "archived"
	OutcomeDeclined  = "declined"
	OutcomeScheduled = "scheduled"
	OutcomeReplied   = "replied"
	OutcomeFailed    = "failed"
)

// MeetingRequested interprets the decision engine's meeting verdict.
// The engine answers in natural-language-ish tokens; only a small
// affirmative set counts as yes.
func MeetingRequested(verdict string) bool {
	switch strings.ToLower(strings.TrimSpace(verdict)) {
	case "yes", "true", "1":
		return true
	}
	return false
}
