package gmailapi

import (
	"context"
	"encoding/base64"
	"fmt"
	netmail "net/mail"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/phrazzld/triage-api/internal/mail"
)

// defaultMaxBodyChars bounds the cleaned body length. Long bodies are cut
// with a truncation marker so the model knows content is missing.
const defaultMaxBodyChars = 10000

// Retriever implements mail.Retriever: it fetches full messages and
// renders them into the cleaned, truncated Content the pipeline feeds to
// the decision engine.
type Retriever struct {
	svc          *gmail.Service
	maxBodyChars int
}

var _ mail.Retriever = (*Retriever)(nil)

func NewRetriever(svc *gmail.Service) *Retriever {
	return &Retriever{svc: svc, maxBodyChars: defaultMaxBodyChars}
}

func (r *Retriever) Content(ctx context.Context, messageID string) (mail.Content, error) {
	msg, err := r.svc.Users.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return mail.Content{}, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return renderContent(msg, r.maxBodyChars)
}

// renderContent flattens a full Gmail message into prompt-ready Content.
func renderContent(msg *gmail.Message, maxBodyChars int) (mail.Content, error) {
	content := mail.Content{
		MessageID: msg.Id,
		ThreadID:  msg.ThreadId,
		Labels:    msg.LabelIds,
		Snippet:   cleanText(msg.Snippet),
	}

	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			if header == nil {
				continue
			}
			switch strings.ToLower(header.Name) {
			case "subject":
				content.Subject = cleanText(header.Value)
			case "from":
				content.From = cleanText(header.Value)
			case "to":
				content.To = cleanText(header.Value)
			case "cc":
				content.Cc = cleanText(header.Value)
			case "date":
				content.Date = formatDate(header.Value)
			}
		}
	}

	body := visibleReply(extractBody(msg.Payload))
	if runes := []rune(body); len(runes) > maxBodyChars {
		body = string(runes[:maxBodyChars]) + " ... [truncated]"
	}
	content.Body = body

	if content.Body == "" {
		return mail.Content{}, fmt.Errorf("%w: message %s", mail.ErrNoContent, msg.Id)
	}
	return content, nil
}

// extractBody walks the MIME tree for the message text, preferring
// text/plain and falling back to text/html with tags stripped.
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}
	text, mimeType := findTextPart(payload)
	if mimeType == "text/html" {
		text = stripHTMLTags(text)
	}
	return text
}

func findTextPart(part *gmail.MessagePart) (string, string) {
	if part == nil {
		return "", ""
	}

	if part.Body != nil && part.Body.Data != "" {
		mimeType := part.MimeType
		if mimeType == "" || strings.HasPrefix(mimeType, "text/") {
			decoded, err := decodeBody(part.Body.Data)
			if err != nil {
				return "", ""
			}
			return cleanText(string(decoded)), mimeType
		}
	}

	var htmlFallback string
	for _, child := range part.Parts {
		text, mimeType := findTextPart(child)
		if text == "" {
			continue
		}
		if mimeType == "text/plain" {
			return text, mimeType
		}
		if mimeType == "text/html" && htmlFallback == "" {
			htmlFallback = text
		}
	}
	if htmlFallback != "" {
		return htmlFallback, "text/html"
	}
	return "", ""
}

// decodeBody handles both padded and unpadded base64url body data.
func decodeBody(data string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return b, nil
	}
	return base64.RawURLEncoding.DecodeString(data)
}

// formatDate normalizes an RFC 2822 date header to UTC wall-clock form.
// Unparseable dates pass through cleaned so the model still sees the
// sender's value.
func formatDate(raw string) string {
	t, err := netmail.ParseDate(raw)
	if err != nil {
		return cleanText(raw)
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
