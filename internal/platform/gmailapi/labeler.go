package gmailapi

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/gmail/v1"

	"github.com/phrazzld/triage-api/internal/mail"
)

// systemLabels are Gmail's built-in labels, addressed by their fixed IDs
// rather than through the labels API.
var systemLabels = map[string]bool{
	"INBOX":     true,
	"UNREAD":    true,
	"IMPORTANT": true,
	"STARRED":   true,
	"DRAFT":     true,
	"SENT":      true,
	"SPAM":      true,
	"TRASH":     true,
}

// Labeler implements mail.Labeler. Custom label names resolve to IDs
// through the labels API, creating the label on first use; resolved IDs
// are cached for the life of the process.
type Labeler struct {
	svc    *gmail.Service
	logger *slog.Logger
	cache  *labelCache
}

var _ mail.Labeler = (*Labeler)(nil)

func NewLabeler(svc *gmail.Service, logger *slog.Logger) *Labeler {
	return &Labeler{
		svc:    svc,
		logger: logger.With("component", "gmail_labeler"),
		cache:  newLabelCache(),
	}
}

// Apply adds and removes labels on a message by name. A call with nothing
// to change is a no-op.
func (l *Labeler) Apply(ctx context.Context, messageID string, add, remove []string) error {
	if len(add) == 0 && len(remove) == 0 {
		return nil
	}

	addIDs, err := l.resolveAll(ctx, add)
	if err != nil {
		return err
	}
	removeIDs, err := l.resolveAll(ctx, remove)
	if err != nil {
		return err
	}

	req := &gmail.ModifyMessageRequest{
		AddLabelIds:    addIDs,
		RemoveLabelIds: removeIDs,
	}
	if _, err := l.svc.Users.Messages.Modify("me", messageID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to modify labels on message %s: %w", messageID, err)
	}

	l.logger.DebugContext(ctx, "labels modified",
		"message_id", messageID,
		"added", add,
		"removed", remove)
	return nil
}

func (l *Labeler) resolveAll(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(names))
	for _, name := range names {
		id, err := l.resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// resolve maps a label name to its ID, creating the label when it does not
// exist yet.
func (l *Labeler) resolve(ctx context.Context, name string) (string, error) {
	if systemLabels[name] {
		return name, nil
	}

	if id, ok := l.cache.idFor(name); ok {
		return id, nil
	}

	if err := l.cache.refresh(ctx, l.svc); err != nil {
		return "", err
	}
	if id, ok := l.cache.idFor(name); ok {
		return id, nil
	}

	created, err := l.svc.Users.Labels.Create("me", &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create label %q: %w", name, err)
	}

	l.logger.InfoContext(ctx, "label created", "label", name, "label_id", created.Id)

	l.cache.put(name, created.Id)
	return created.Id, nil
}
