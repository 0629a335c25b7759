package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/phrazzld/triage-api/internal/api/shared"
)

// getUserIDFromContext extracts the authenticated operator's UUID from the
// request context, where the authentication middleware placed it.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// getLimitQuery parses the "limit" query parameter, returning def when the
// parameter is absent. A present but unusable value reports ok=false.
func getLimitQuery(r *http.Request, def int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, false
	}
	return limit, true
}
