package memory

import (
	"context"
	"testing"
	"time"

	appoutbox "stayhub/internal/app/outbox"
)

func record(id string) appoutbox.EventRecord {
	return appoutbox.EventRecord{
		ID:         id,
		Name:       "booking.created",
		Payload:    []byte(`{}`),
		OccurredAt: time.Now(),
		Aggregate:  "b-1",
	}
}

func TestOutboxClaimIsExclusive(t *testing.T) {
	box := NewOutbox()
	ctx := context.Background()
	if err := box.Add(ctx, record("evt-1")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	first, err := box.Claim(ctx, "w-1")
	if err != nil || first == nil {
		t.Fatalf("first claim = %v, %v", first, err)
	}
	second, err := box.Claim(ctx, "w-2")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if second != nil {
		t.Fatalf("claimed record handed out twice: %+v", second)
	}
}

func TestOutboxMarkSentRemovesFromPending(t *testing.T) {
	box := NewOutbox()
	ctx := context.Background()
	if err := box.Add(ctx, record("evt-1")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	doc, err := box.Claim(ctx, "w-1")
	if err != nil || doc == nil {
		t.Fatalf("claim = %v, %v", doc, err)
	}
	if err := box.MarkSent(ctx, doc.ID); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	if box.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", box.Pending())
	}
	if again, _ := box.Claim(ctx, "w-1"); again != nil {
		t.Fatalf("sent record re-claimed: %+v", again)
	}
}

func TestOutboxMarkFailedDefersRetry(t *testing.T) {
	box := NewOutbox()
	ctx := context.Background()
	if err := box.Add(ctx, record("evt-1")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	doc, err := box.Claim(ctx, "w-1")
	if err != nil || doc == nil {
		t.Fatalf("claim = %v, %v", doc, err)
	}
	if err := box.MarkFailed(ctx, doc.ID, time.Now().Add(time.Hour), "broker down"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if box.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", box.Pending())
	}
	if early, _ := box.Claim(ctx, "w-1"); early != nil {
		t.Fatalf("record claimable before retry time: %+v", early)
	}

	if err := box.Add(ctx, record("evt-2")); err != nil {
		t.Fatalf("Add second: %v", err)
	}
	next, err := box.Claim(ctx, "w-1")
	if err != nil || next == nil || next.ID != "evt-2" {
		t.Fatalf("claim skipped deferred record = %v, %v", next, err)
	}
}

func TestOutboxAddIsIdempotent(t *testing.T) {
	box := NewOutbox()
	ctx := context.Background()
	if err := box.Add(ctx, record("evt-1")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := box.Add(ctx, record("evt-1")); err != nil {
		t.Fatalf("duplicate Add: %v", err)
	}
	if got := len(box.Records()); got != 1 {
		t.Fatalf("records = %d, want 1", got)
	}
}
