package gmailapi

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/gmail/v1"
)

// labelCache maps label names to Gmail label IDs and back. Gmail addresses
// user-created labels by opaque IDs (Label_7) while the rest of the system
// speaks names (Q_Draft), so both the Labeler and the Provider need the
// translation. Entries persist for the life of the process.
type labelCache struct {
	mu     sync.Mutex
	byName map[string]string
	byID   map[string]string
}

func newLabelCache() *labelCache {
	return &labelCache{
		byName: make(map[string]string),
		byID:   make(map[string]string),
	}
}

func (c *labelCache) idFor(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.byName[name]
	return id, ok
}

func (c *labelCache) nameFor(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.byID[id]
	return name, ok
}

func (c *labelCache) put(name, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byName[name] = id
	c.byID[id] = name
}

// refresh loads the account's current label list into the cache. System
// labels come back too (their ID equals their name), so one refresh covers
// every ID the messages API can report.
func (c *labelCache) refresh(ctx context.Context, svc *gmail.Service) error {
	resp, err := svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to list labels: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, label := range resp.Labels {
		if label != nil {
			c.byName[label.Name] = label.Id
			c.byID[label.Id] = label.Name
		}
	}
	return nil
}
