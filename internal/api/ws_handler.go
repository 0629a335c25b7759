package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/phrazzld/triage-api/internal/api/shared"
	"github.com/phrazzld/triage-api/internal/state"
	"github.com/phrazzld/triage-api/internal/ws"
)

// WSHandler upgrades authenticated operators to a WebSocket connection,
// registers it for outbound delivery, and runs the read loop that routes
// provide_feedback frames into the broker.
type WSHandler struct {
	registry *ws.Registry
	states   *state.Store
	broker   FeedbackBroker
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(
	registry *ws.Registry,
	states *state.Store,
	broker FeedbackBroker,
	logger *slog.Logger,
) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		registry: registry,
		states:   states,
		broker:   broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.With("component", "ws_handler"),
	}
}

// Connect handles GET /ws. The request is already authenticated; the
// operator ID in the context scopes everything the connection sees.
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	operatorID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}
	userID := operatorID.String()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	socket := ws.NewSocket(conn)
	h.states.SetLastConnectedUserID(userID)
	h.registry.Register(socket, userID)
	h.logger.Info("websocket connected", "user_id", userID)

	defer func() {
		h.registry.Unregister(socket)
		if err := socket.Close(); err != nil {
			h.logger.Debug("closing websocket", "user_id", userID, "error", err)
		}
		h.logger.Info("websocket disconnected", "user_id", userID)
	}()

	h.sendSnapshot(socket, userID)
	h.readLoop(r, socket, userID)
}

// sendSnapshot pushes the current task state to a freshly connected
// client, including a replay of the pending feedback prompt so an
// operator who reconnects mid-checkpoint still sees the question.
func (h *WSHandler) sendSnapshot(socket *ws.Socket, userID string) {
	st, err := h.states.GetOrCreate(userID)
	if err != nil {
		return
	}

	update := ws.NewStatusUpdate(st)
	pending, waiting := h.broker.Pending(userID)
	if waiting {
		update.FeedbackRequired = true
		update.CurrentPrompt = pending.Prompt
		update.CurrentDecision = pending.Decision
		update.CurrentContext = pending.Context
	}

	if err := socket.WriteJSON(update); err != nil {
		h.logger.Warn("sending status snapshot failed", "user_id", userID, "error", err)
		return
	}
	if waiting {
		if err := socket.WriteJSON(ws.NewFeedbackRequired(pending.Prompt, pending.Decision, pending.Context)); err != nil {
			h.logger.Warn("replaying pending prompt failed", "user_id", userID, "error", err)
		}
	}
}

// readLoop consumes client frames until the connection drops. Malformed
// or unexpected frames get a typed error reply and the connection stays
// open; only a read error ends the loop.
func (h *WSHandler) readLoop(r *http.Request, socket *ws.Socket, userID string) {
	for {
		data, err := socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket read failed", "user_id", userID, "error", err)
			}
			return
		}

		msg, err := ws.ParseClientMessage(data)
		if err != nil {
			h.logger.Debug("rejected client frame", "user_id", userID, "error", err)
			reply := "Invalid message format"
			if errors.Is(err, ws.ErrUnknownMessageType) {
				reply = "Unknown message type"
			}
			if werr := socket.WriteJSON(ws.NewErrorMessage(ws.TypeError, reply)); werr != nil {
				return
			}
			continue
		}

		switch msg.Type {
		case ws.TypeProvideFeedback:
			if !h.broker.Submit(r.Context(), userID, *msg.Feedback) {
				if werr := socket.WriteJSON(ws.NewErrorMessage(ws.TypeFeedbackError, "No pending feedback request")); werr != nil {
					return
				}
			}
		}
	}
}
