package state

import (
	"log/slog"
	"sync"

	"github.com/phrazzld/triage-api/internal/domain"
)

// Update describes a partial merge into a user's task state. Nil fields are
// left untouched; all non-nil fields are applied together under one lock
// acquisition, so concurrent readers never observe half of an update.
type Update struct {
	Running        *bool
	Status         *domain.TaskStatus
	Results        *domain.RunSummary
	DraftEmail     *string
	DraftSubject   *string
	DraftRecipient *string
}

// Bool returns a pointer to v for use in an Update.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v for use in an Update.
func String(v string) *string { return &v }

// Status returns a pointer to v for use in an Update.
func Status(v domain.TaskStatus) *domain.TaskStatus { return &v }

// Store holds one task state record per user. All access goes through the
// store; handles are never shared, so every read is a consistent snapshot.
type Store struct {
	mu            sync.RWMutex
	states        map[string]*domain.TaskState
	lastConnected string
	logger        *slog.Logger
}

// NewStore creates an empty state store.
func NewStore(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		states: make(map[string]*domain.TaskState),
		logger: log.With("component", "state_store"),
	}
}

// GetOrCreate returns a snapshot of the user's task state, creating an idle
// record on first access.
func (s *Store) GetOrCreate(userID string) (domain.TaskState, error) {
	if userID == "" {
		return domain.TaskState{}, domain.ErrEmptyUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.locked(userID)), nil
}

// Apply merges upd into the user's task state, creating the record if it
// does not exist yet. The whole group of fields lands atomically.
func (s *Store) Apply(userID string, upd Update) error {
	if userID == "" {
		return domain.ErrEmptyUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.locked(userID)
	if upd.Running != nil {
		st.Running = *upd.Running
	}
	if upd.Status != nil {
		st.Status = *upd.Status
	}
	if upd.Results != nil {
		st.Results = upd.Results
	}
	if upd.DraftEmail != nil {
		st.DraftEmail = *upd.DraftEmail
	}
	if upd.DraftSubject != nil {
		st.DraftSubject = *upd.DraftSubject
	}
	if upd.DraftRecipient != nil {
		st.DraftRecipient = *upd.DraftRecipient
	}
	return nil
}

// TryStart atomically claims the single worker slot for userID. It returns
// false when a worker is already running for that user; otherwise it marks
// the task as starting, clears leftovers from the previous run, and returns
// true. The claim and the reset are one atomic step.
func (s *Store) TryStart(userID string) (bool, error) {
	if userID == "" {
		return false, domain.ErrEmptyUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.locked(userID)
	if st.Running {
		s.logger.Warn("rejected start, task already running", "user_id", userID)
		return false, nil
	}

	st.Running = true
	st.Status = domain.TaskStatusStarting
	st.Results = nil
	st.DraftEmail = ""
	st.DraftSubject = ""
	st.DraftRecipient = ""
	return true, nil
}

// Finish releases the worker slot for userID. It never fails and tolerates
// unknown users, so callers can run it unconditionally in a defer.
func (s *Store) Finish(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.states[userID]; ok {
		st.Running = false
	}
}

// LastConnectedUserID returns the most recent user to open a connection, or
// an empty string if none has.
func (s *Store) LastConnectedUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastConnected
}

// SetLastConnectedUserID records userID as the most recent user to open a
// connection.
func (s *Store) SetLastConnectedUserID(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastConnected = userID
}

// locked returns the live record for userID, creating it if needed. Callers
// must hold the write lock.
func (s *Store) locked(userID string) *domain.TaskState {
	st, ok := s.states[userID]
	if !ok {
		fresh := domain.NewTaskState()
		st = &fresh
		s.states[userID] = st
		s.logger.Info("created task state", "user_id", userID)
	}
	return st
}

// snapshot deep-copies a record so callers can never mutate store state
// through a returned value.
func snapshot(st *domain.TaskState) domain.TaskState {
	out := *st
	if st.Results != nil {
		results := *st.Results
		if st.Results.Outcomes != nil {
			results.Outcomes = make(map[string]string, len(st.Results.Outcomes))
			for k, v := range st.Results.Outcomes {
				results.Outcomes[k] = v
			}
		}
		out.Results = &results
	}
	return out
}
