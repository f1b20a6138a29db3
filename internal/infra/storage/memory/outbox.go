package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "stayhub/internal/app/outbox"
	infraoutbox "stayhub/internal/infra/outbox"
)

type outboxEntry struct {
	doc       infraoutbox.EventDocument
	sent      bool
	claimedBy string
	nextTry   time.Time
}

// Outbox is an in-memory outbox implementing both the application-side
// Add and the worker-side claim/ack surface.
type Outbox struct {
	mu    sync.Mutex
	order []string
	items map[string]*outboxEntry
}

func NewOutbox() *Outbox {
	return &Outbox{items: make(map[string]*outboxEntry)}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.items[record.ID]; ok {
		return nil
	}
	o.items[record.ID] = &outboxEntry{doc: infraoutbox.EventDocument{
		ID:         record.ID,
		Name:       record.Name,
		Payload:    append([]byte(nil), record.Payload...),
		OccurredAt: record.OccurredAt,
		Aggregate:  record.Aggregate,
		Headers:    record.Headers,
	}}
	o.order = append(o.order, record.ID)
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	for _, id := range o.order {
		entry := o.items[id]
		if entry == nil || entry.sent || entry.claimedBy != "" {
			continue
		}
		if entry.nextTry.After(now) {
			continue
		}
		entry.claimedBy = workerID
		doc := entry.doc
		return &doc, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if entry, ok := o.items[id]; ok {
		entry.sent = true
		entry.claimedBy = ""
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if entry, ok := o.items[id]; ok {
		entry.claimedBy = ""
		entry.nextTry = retryAt
		entry.doc.Attempts++
	}
	return nil
}

// Pending reports how many records still await publication. Used by
// tests and the readiness probe.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	count := 0
	for _, entry := range o.items {
		if !entry.sent {
			count++
		}
	}
	return count
}

// Records returns a copy of every stored record in insertion order.
func (o *Outbox) Records() []infraoutbox.EventDocument {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]infraoutbox.EventDocument, 0, len(o.order))
	for _, id := range o.order {
		if entry, ok := o.items[id]; ok {
			out = append(out, entry.doc)
		}
	}
	return out
}
