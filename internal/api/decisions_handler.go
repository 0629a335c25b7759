package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/triage-api/internal/api/shared"
	"github.com/phrazzld/triage-api/internal/store"
)

const defaultDecisionLimit = 50

// DecisionsHandler serves the operator's decision audit trail.
type DecisionsHandler struct {
	decisions store.DecisionLogStore
	logger    *slog.Logger
}

// NewDecisionsHandler creates a new DecisionsHandler.
func NewDecisionsHandler(decisions store.DecisionLogStore, logger *slog.Logger) *DecisionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DecisionsHandler{
		decisions: decisions,
		logger:    logger.With("component", "decisions_handler"),
	}
}

// List handles GET /api/decisions?limit=N, returning the operator's most
// recent audit rows, newest first.
func (h *DecisionsHandler) List(w http.ResponseWriter, r *http.Request) {
	operatorID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	limit, ok := getLimitQuery(r, defaultDecisionLimit)
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	records, err := h.decisions.ListByOperator(r.Context(), operatorID, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to list decisions", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DecisionListResponse{Decisions: records})
}
