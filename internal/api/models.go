package api

import (
	"github.com/google/uuid"
	"github.com/phrazzld/triage-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the operator registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the operator login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated operator
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token
// refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ProcessResponse acknowledges that a background processing run was
// accepted for the operator.
type ProcessResponse struct {
	Status string `json:"status"`
}

// StatusResponse merges the operator's task state with their pending
// feedback request, if any. It is the HTTP twin of the status_update
// WebSocket frame.
type StatusResponse struct {
	Running          bool               `json:"running"`
	Status           domain.TaskStatus  `json:"status"`
	Results          *domain.RunSummary `json:"results,omitempty"`
	DraftEmail       string             `json:"draft_email,omitempty"`
	DraftSubject     string             `json:"draft_subject,omitempty"`
	DraftRecipient   string             `json:"draft_recipient,omitempty"`
	FeedbackRequired bool               `json:"feedback_required"`
	CurrentPrompt    string             `json:"current_prompt,omitempty"`
	CurrentDecision  string             `json:"current_decision,omitempty"`
	CurrentContext   any                `json:"current_context,omitempty"`
}

// ProvideFeedbackRequest defines the payload for the HTTP feedback
// endpoint. The field is a pointer so a missing value is distinguishable
// from an explicit false.
type ProvideFeedbackRequest struct {
	Feedback *bool `json:"feedback" validate:"required"`
}

// ProvideFeedbackResponse reports whether the answer was paired with a
// pending request.
type ProvideFeedbackResponse struct {
	Status string `json:"status"`
}

// DecisionListResponse wraps the operator's recent audit rows.
type DecisionListResponse struct {
	Decisions []domain.DecisionRecord `json:"decisions"`
}
