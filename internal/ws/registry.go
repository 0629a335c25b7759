package ws

import (
	"context"
	"log/slog"
	"sync"
)

// Registry tracks which connections belong to which user and routes
// outbound messages. It exclusively owns the user-to-connections mapping;
// a connection belongs to exactly one user for its lifetime.
type Registry struct {
	mu        sync.RWMutex
	userConns map[string]map[Conn]struct{}
	connUser  map[Conn]string
	logger    *slog.Logger
}

// NewRegistry creates an empty connection registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		userConns: make(map[string]map[Conn]struct{}),
		connUser:  make(map[Conn]string),
		logger:    log.With("component", "ws_registry"),
	}
}

// Register adds conn under userID. Registering the same connection twice
// is a no-op; a connection never migrates between users.
func (r *Registry) Register(conn Conn, userID string) {
	if conn == nil || userID == "" {
		r.logger.Warn("ignoring registration with missing connection or user ID",
			"user_id", userID)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.connUser[conn]; ok {
		if existing != userID {
			r.logger.Warn("connection already registered to another user, ignoring",
				"user_id", userID,
				"registered_user_id", existing)
		}
		return
	}

	set, ok := r.userConns[userID]
	if !ok {
		set = make(map[Conn]struct{})
		r.userConns[userID] = set
	}
	set[conn] = struct{}{}
	r.connUser[conn] = userID

	r.logger.Debug("connection registered",
		"user_id", userID,
		"connection_count", len(set))
}

// Unregister removes conn from the registry. When the user's connection
// set becomes empty the whole entry is pruned so lookups never see
// dangling empty sets. Unknown connections are a no-op.
func (r *Registry) Unregister(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.connUser[conn]
	if !ok {
		return
	}
	delete(r.connUser, conn)

	set := r.userConns[userID]
	delete(set, conn)
	if len(set) == 0 {
		delete(r.userConns, userID)
	}

	r.logger.Debug("connection unregistered",
		"user_id", userID,
		"connection_count", len(set))
}

// Send delivers message to every connection currently registered for
// userID and returns the number of successful deliveries. A user with no
// connections is not an error: the message is dropped with a log line and
// the caller proceeds. Write failures on individual connections are
// logged and skipped; the failing connection is cleaned up by its own
// read loop when it notices the broken socket.
func (r *Registry) Send(_ context.Context, userID string, message any) int {
	r.mu.RLock()
	set := r.userConns[userID]
	conns := make([]Conn, 0, len(set))
	for conn := range set {
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	if len(conns) == 0 {
		r.logger.Warn("no active connections for user, dropping message",
			"user_id", userID)
		return 0
	}

	delivered := 0
	for _, conn := range conns {
		if err := conn.WriteJSON(message); err != nil {
			r.logger.Warn("failed to deliver message to connection",
				"user_id", userID,
				"error", err)
			continue
		}
		delivered++
	}

	return delivered
}
