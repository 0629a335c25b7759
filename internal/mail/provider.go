package mail

import "context"

// Provider lists and resolves messages in a mailbox. Implementations wrap
// a real mail backend; tests substitute fakes.
type Provider interface {
	// List returns one page of refs for messages carrying every label in
	// labels. excludeQuery is a provider-side search filter the backend may
	// apply best-effort; pageToken of "" requests the first page. The
	// returned token is "" when no further page exists.
	List(ctx context.Context, labels []string, excludeQuery, pageToken string, pageSize int) (refs []MessageRef, nextPageToken string, err error)

	// Get returns the message's current detail, including its actual label
	// set.
	Get(ctx context.Context, messageID string) (Message, error)
}

// Retriever fetches the readable content of a message for prompt building.
type Retriever interface {
	Content(ctx context.Context, messageID string) (Content, error)
}

// Labeler mutates the labels on a message. Labels are created on the
// backend when first applied.
type Labeler interface {
	Apply(ctx context.Context, messageID string, add, remove []string) error
}

// Drafter creates a reply draft on the message's thread.
type Drafter interface {
	CreateDraft(ctx context.Context, body, recipient, subject, threadID string) (draftID string, err error)
}
