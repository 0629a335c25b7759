package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/triage-api/internal/api/shared"
	"github.com/phrazzld/triage-api/internal/events"
	"github.com/phrazzld/triage-api/internal/feedback"
	"github.com/phrazzld/triage-api/internal/state"
	"github.com/phrazzld/triage-api/internal/task"
)

// FeedbackBroker is the slice of the feedback broker the HTTP layer uses:
// routing answers in and exposing the pending request for status queries.
// Blocking on Request stays with the pipeline workers.
type FeedbackBroker interface {
	Submit(ctx context.Context, userID string, value bool) bool
	Waiting(userID string) bool
	Pending(userID string) (feedback.PendingRequest, bool)
}

// AutomationHandler handles the endpoints that start processing runs,
// report their progress, and route operator feedback.
type AutomationHandler struct {
	states    *state.Store
	broker    FeedbackBroker
	emitter   events.EventEmitter
	validator *validator.Validate
	logger    *slog.Logger
}

// NewAutomationHandler creates a new AutomationHandler.
func NewAutomationHandler(
	states *state.Store,
	broker FeedbackBroker,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *AutomationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutomationHandler{
		states:    states,
		broker:    broker,
		emitter:   emitter,
		validator: validator.New(),
		logger:    logger.With("component", "automation_handler"),
	}
}

// StartProcessing handles POST /api/automation/process-emails. The run
// itself happens on a background worker; the request only claims the
// operator's single worker slot and enqueues the work.
func (h *AutomationHandler) StartProcessing(w http.ResponseWriter, r *http.Request) {
	operatorID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}
	userID := operatorID.String()

	started, err := h.states.TryStart(userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if !started {
		shared.RespondWithError(w, r, http.StatusConflict, "Processing already running")
		return
	}

	event, err := events.NewProcessRequestedEvent(task.TaskTypeEmailProcessing, map[string]string{
		"operator_id": userID,
	})
	if err == nil {
		err = h.emitter.EmitEvent(r.Context(), event)
	}
	if err != nil {
		// The run never got queued; release the slot so a retry can claim it.
		h.states.Finish(userID)
		h.logger.Error("failed to start processing run", "error", err, "user_id", userID)
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to start processing", err)
		return
	}

	h.logger.Info("processing run accepted", "user_id", userID)
	shared.RespondWithJSON(w, r, http.StatusAccepted, ProcessResponse{Status: "processing_started"})
}

// Status handles GET /api/automation/status. It merges the task state
// snapshot with the pending feedback request, mirroring the status_update
// frame pushed over the WebSocket.
func (h *AutomationHandler) Status(w http.ResponseWriter, r *http.Request) {
	operatorID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}
	userID := operatorID.String()

	st, err := h.states.GetOrCreate(userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := StatusResponse{
		Running:        st.Running,
		Status:         st.Status,
		Results:        st.Results,
		DraftEmail:     st.DraftEmail,
		DraftSubject:   st.DraftSubject,
		DraftRecipient: st.DraftRecipient,
	}
	if pending, ok := h.broker.Pending(userID); ok {
		resp.FeedbackRequired = true
		resp.CurrentPrompt = pending.Prompt
		resp.CurrentDecision = pending.Decision
		resp.CurrentContext = pending.Context
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ProvideFeedback handles POST /api/automation/provide-feedback, the HTTP
// fallback for answering a checkpoint. An answer with no pending request
// is rejected with 400, matching the broker's Submit semantics.
func (h *AutomationHandler) ProvideFeedback(w http.ResponseWriter, r *http.Request) {
	operatorID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req ProvideFeedbackRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if !h.broker.Submit(r.Context(), operatorID.String(), *req.Feedback) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "No pending feedback request")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProvideFeedbackResponse{Status: "success"})
}
