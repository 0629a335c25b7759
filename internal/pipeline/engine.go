package pipeline

import (
	"context"
	"time"

	"github.com/phrazzld/triage-api/internal/domain"
	"github.com/phrazzld/triage-api/internal/mail"
)

// Engine is the decision collaborator. Each operation is a black-box call
// returning one value from a small set; platform/gemini provides the real
// implementation.
type Engine interface {
	// Summarize produces a summary of the email used as checkpoint context
	// and as input to DecideResponse.
	Summarize(ctx context.Context, emailContent string) (string, error)

	// DecideResponse decides from the summary whether the email needs a
	// reply at all.
	DecideResponse(ctx context.Context, summary string) (domain.ResponseDecision, error)

	// Categorize classifies an email that needs a reply.
	Categorize(ctx context.Context, emailContent string) (domain.Category, error)

	// DecideMeeting reports whether the email is a meeting request.
	DecideMeeting(ctx context.Context, emailContent string) (bool, error)

	// WriteReply drafts a full response.
	WriteReply(ctx context.Context, emailContent string) (string, error)

	// WriteDecline drafts a polite decline.
	WriteDecline(ctx context.Context, emailContent string) (string, error)

	// WriteSchedule drafts a scheduling response.
	WriteSchedule(ctx context.Context, emailContent string) (string, error)
}

// Source selects the threads one run will process.
type Source interface {
	Fetch(ctx context.Context, threadCount, messageCap int) ([]mail.Thread, error)
}

// Broker is the checkpoint rendezvous. Request blocks the calling
// goroutine until the operator answers or the timeout elapses.
type Broker interface {
	Request(ctx context.Context, userID, prompt, decision string, contextVal any, timeout time.Duration) (bool, string, error)
}

// Sender pushes a message to a user's live connections.
type Sender interface {
	Send(ctx context.Context, userID string, message any) int
}
