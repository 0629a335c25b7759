package gmailapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/api/gmail/v1"

	"github.com/phrazzld/triage-api/internal/mail"
)

// Drafter implements mail.Drafter by creating reply drafts in the
// operator's mailbox. Drafts attach to their thread via threadId; nothing
// is ever sent automatically.
type Drafter struct {
	svc    *gmail.Service
	logger *slog.Logger
}

var _ mail.Drafter = (*Drafter)(nil)

func NewDrafter(svc *gmail.Service, logger *slog.Logger) *Drafter {
	return &Drafter{svc: svc, logger: logger.With("component", "gmail_drafter")}
}

// CreateDraft stores body as a draft reply addressed to recipient on the
// given thread.
func (d *Drafter) CreateDraft(ctx context.Context, body, recipient, subject, threadID string) (string, error) {
	if body == "" {
		return "", errors.New("draft body cannot be empty")
	}
	if recipient == "" {
		return "", errors.New("draft recipient cannot be empty")
	}

	draft := &gmail.Draft{
		Message: &gmail.Message{
			Raw:      base64.URLEncoding.EncodeToString(buildRFC822(body, recipient, subject)),
			ThreadId: threadID,
		},
	}

	created, err := d.svc.Users.Drafts.Create("me", draft).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create draft: %w", err)
	}

	d.logger.InfoContext(ctx, "draft created",
		"draft_id", created.Id,
		"thread_id", threadID)
	return created.Id, nil
}

// buildRFC822 renders the draft as a plain-text MIME message. Thread
// placement is carried by the draft's threadId field, not by reference
// headers.
func buildRFC822(body, recipient, subject string) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return msg.Bytes()
}
