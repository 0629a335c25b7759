package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/triage-api/internal/domain"
	"github.com/phrazzld/triage-api/internal/ws"
)

// Raw operator answers as reported back to the pipeline.
const (
	AnswerCorrect = "correct"
	AnswerWrong   = "wrong"
)

// Sender pushes a message to every connection a user currently has and
// reports the delivery count. *ws.Registry satisfies it.
type Sender interface {
	Send(ctx context.Context, userID string, message any) int
}

// PendingRequest is a read-only snapshot of an outstanding checkpoint. The
// connection layer replays it to clients that connect mid-wait so they can
// render the prompt they would otherwise have missed.
type PendingRequest struct {
	Prompt   string
	Decision string
	Context  any
}

// pending is the broker-internal slot for one outstanding request. The
// resolved flag is guarded by the broker mutex; whichever side flips it
// first owns the outcome, which is how delivery stays exactly-once even
// when an answer races the timeout.
type pending struct {
	prompt   string
	decision string
	context  any
	ch       chan bool
	resolved bool
}

// Broker coordinates feedback requests per user. Each user is either idle
// or waiting on exactly one question; users never share state beyond the
// map that holds their slots.
type Broker struct {
	mu      sync.Mutex
	pending map[string]*pending
	sender  Sender
	logger  *slog.Logger
}

// NewBroker creates a Broker that dispatches prompts through sender.
func NewBroker(sender Sender, log *slog.Logger) *Broker {
	if log == nil {
		log = slog.Default()
	}
	return &Broker{
		pending: make(map[string]*pending),
		sender:  sender,
		logger:  log.With("component", "feedback_broker"),
	}
}

// Request asks the operator to confirm a pipeline decision and blocks until
// an answer arrives or timeout elapses. It returns the operator's verdict
// and the raw answer string ("correct" or "wrong"). Timeout is not an
// error: the operator is notified and the affirmative default
// (true, "correct") is returned.
//
// The waiting state and the outbound prompt are both established before
// this call blocks, so an answer submitted immediately after the prompt is
// dispatched is always paired with this request.
//
// A second Request for a user who is already waiting fails with
// ErrAlreadyWaiting instead of replacing the pending question.
func (b *Broker) Request(ctx context.Context, userID, prompt, decision string, contextVal any, timeout time.Duration) (bool, string, error) {
	if userID == "" {
		return false, "", domain.ErrEmptyUserID
	}
	if prompt == "" {
		prompt = defaultPrompt(decision)
	}

	req := &pending{
		prompt:   prompt,
		decision: decision,
		context:  formatContext(contextVal),
		ch:       make(chan bool, 1),
	}

	b.mu.Lock()
	if _, exists := b.pending[userID]; exists {
		b.mu.Unlock()
		return false, "", fmt.Errorf("%w: user %s", ErrAlreadyWaiting, userID)
	}
	b.pending[userID] = req
	b.mu.Unlock()

	b.sender.Send(ctx, userID, ws.NewFeedbackRequired(req.prompt, req.decision, req.context))

	b.logger.Info("waiting for operator feedback",
		"user_id", userID,
		"decision", decision,
		"timeout", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case value := <-req.ch:
		b.logger.Info("operator feedback applied",
			"user_id", userID,
			"decision", decision,
			"answer", rawAnswer(value))
		return value, rawAnswer(value), nil

	case <-timer.C:
		if b.claim(userID, req) {
			b.sender.Send(ctx, userID, ws.NewFeedbackTimeout(
				fmt.Sprintf("Feedback request timed out after %d seconds. Proceeding with default action.",
					int(timeout.Seconds()))))
			b.logger.Warn("feedback request timed out, proceeding with default",
				"user_id", userID,
				"decision", decision)
			return true, AnswerCorrect, nil
		}
		// An answer won the race against the timer; honor it.
		value := <-req.ch
		return value, rawAnswer(value), nil

	case <-ctx.Done():
		if b.claim(userID, req) {
			return false, "", ctx.Err()
		}
		value := <-req.ch
		return value, rawAnswer(value), nil
	}
}

// Submit routes an operator's answer to the waiter for userID. It returns
// false, with no side effect, when no request is pending (stray, duplicate,
// and late answers all land here). On success the value is delivered
// exactly once and the operator receives an acknowledgment.
func (b *Broker) Submit(ctx context.Context, userID string, value bool) bool {
	b.mu.Lock()
	req, ok := b.pending[userID]
	if !ok || req.resolved {
		b.mu.Unlock()
		b.logger.Warn("received feedback with no request pending",
			"user_id", userID)
		return false
	}
	req.resolved = true
	delete(b.pending, userID)
	b.mu.Unlock()

	// Buffered channel: the handoff never blocks this goroutine even if
	// the waiter has not reached its receive yet.
	req.ch <- value

	b.sender.Send(ctx, userID, ws.NewFeedbackReceived())
	b.logger.Info("operator feedback received",
		"user_id", userID,
		"answer", rawAnswer(value))
	return true
}

// Waiting reports whether userID has an unresolved feedback request.
func (b *Broker) Waiting(userID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.pending[userID]
	return ok && !req.resolved
}

// Pending returns a snapshot of the outstanding request for userID, if any.
func (b *Broker) Pending(userID string) (PendingRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.pending[userID]
	if !ok || req.resolved {
		return PendingRequest{}, false
	}
	return PendingRequest{
		Prompt:   req.prompt,
		Decision: req.decision,
		Context:  req.context,
	}, true
}

// claim attempts to resolve req on behalf of the waiter. It returns false
// when an answer already resolved it, in which case the value is sitting
// in the channel and must be honored instead.
func (b *Broker) claim(userID string, req *pending) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if req.resolved {
		return false
	}
	req.resolved = true
	delete(b.pending, userID)
	return true
}

func rawAnswer(value bool) string {
	if value {
		return AnswerCorrect
	}
	return AnswerWrong
}

// defaultPrompt phrases the confirmation question when the caller supplied
// none, based on the decision being checked.
func defaultPrompt(decision string) string {
	switch decision {
	case string(domain.ResponseDecisionRespond):
		return "I think we should respond."
	case string(domain.ResponseDecisionNoResponse):
		return "This email does not need a response."
	case string(domain.CategoryDecline):
		return "I think we should politely decline."
	case string(domain.CategoryMoveForward):
		return "I think we should draft a response."
	case "schedule meeting":
		return "I think we should setup a meeting."
	case "yes":
		return "This is a meeting request that needs scheduling."
	case "no":
		return "This is not just a meeting request and needs a full response."
	default:
		return fmt.Sprintf("The AI has decided: %s", decision)
	}
}

// formatContext renders checkpoint context for display. Maps become
// "key: value" lines so the client can show them verbatim; strings pass
// through; nil stays nil so the field is omitted from the wire frame.
func formatContext(v any) any {
	switch c := v.(type) {
	case nil:
		return nil
	case string:
		return c
	case map[string]string:
		keys := make([]string, 0, len(c))
		for k := range c {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %s", k, c[k]))
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		keys := make([]string, 0, len(c))
		for k := range c {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %v", k, c[k]))
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprintf("%v", c)
	}
}
