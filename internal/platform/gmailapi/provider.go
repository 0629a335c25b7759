package gmailapi

import (
	"context"
	"fmt"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	"github.com/phrazzld/triage-api/internal/mail"
)

// Provider implements mail.Provider on the Gmail messages API. Label IDs
// on fetched messages are resolved to label names, which is what the
// retrieval layer's exclusion filtering matches against.
type Provider struct {
	svc   *gmail.Service
	cache *labelCache
}

var _ mail.Provider = (*Provider)(nil)

func NewProvider(svc *gmail.Service) *Provider {
	return &Provider{svc: svc, cache: newLabelCache()}
}

// List returns one page of refs for messages carrying every label in
// labels. Only id and threadId are requested; label state on list results
// is not authoritative, so callers resolve labels through Get.
func (p *Provider) List(ctx context.Context, labels []string, excludeQuery, pageToken string, pageSize int) ([]mail.MessageRef, string, error) {
	call := p.svc.Users.Messages.List("me").
		LabelIds(labels...).
		MaxResults(int64(pageSize)).
		Fields(googleapi.Field("nextPageToken,messages(id,threadId)")).
		Context(ctx)
	if excludeQuery != "" {
		call = call.Q(excludeQuery)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list messages: %w", err)
	}

	refs := make([]mail.MessageRef, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		refs = append(refs, mail.MessageRef{ID: msg.Id, ThreadID: msg.ThreadId})
	}
	return refs, resp.NextPageToken, nil
}

// Get returns the message's current detail with its label set resolved to
// names. Resolution failing is a Get failure: callers filter on these
// labels, and an unresolved set would let already-processed mail through.
func (p *Provider) Get(ctx context.Context, messageID string) (mail.Message, error) {
	msg, err := p.svc.Users.Messages.Get("me", messageID).Format("minimal").Context(ctx).Do()
	if err != nil {
		return mail.Message{}, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}

	labels, err := p.resolveNames(ctx, msg.LabelIds)
	if err != nil {
		return mail.Message{}, fmt.Errorf("failed to resolve labels on message %s: %w", messageID, err)
	}
	return mail.Message{ID: msg.Id, ThreadID: msg.ThreadId, Labels: labels}, nil
}

// resolveNames translates Gmail label IDs to names. Known system labels
// pass through without an API call; the first unknown ID triggers one
// cache refresh. An ID still unknown after that (a label deleted since the
// message was fetched) is kept verbatim.
func (p *Provider) resolveNames(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(ids))
	refreshed := false
	for _, id := range ids {
		if systemLabels[id] {
			names = append(names, id)
			continue
		}

		name, ok := p.cache.nameFor(id)
		if !ok && !refreshed {
			if err := p.cache.refresh(ctx, p.svc); err != nil {
				return nil, err
			}
			refreshed = true
			name, ok = p.cache.nameFor(id)
		}
		if !ok {
			name = id
		}
		names = append(names, name)
	}
	return names, nil
}
