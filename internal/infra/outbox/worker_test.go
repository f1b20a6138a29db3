package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	queue  []*EventDocument
	sent   []string
	failed []string
}

func (s *fakeStore) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	if len(s.queue) == 0 {
		return nil, nil
	}
	doc := s.queue[0]
	s.queue = s.queue[1:]
	return doc, nil
}

func (s *fakeStore) MarkSent(ctx context.Context, id string) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	s.failed = append(s.failed, id)
	return nil
}

type publishedMessage struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	messages []publishedMessage
	err      error
}

func (p *fakeProducer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, publishedMessage{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func bookingCreatedDoc() *EventDocument {
	return &EventDocument{
		ID:         "evt-1",
		Name:       "booking.created",
		Payload:    []byte(`{"booking_id":"b-1","total_price":300}`),
		OccurredAt: time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC),
		Aggregate:  "b-1",
	}
}

func TestProcessOncePublishesCloudEvent(t *testing.T) {
	store := &fakeStore{queue: []*EventDocument{bookingCreatedDoc()}}
	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer, ID: "w-1"}

	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce: %v", err)
	}
	if len(producer.messages) != 1 {
		t.Fatalf("published = %d, want 1", len(producer.messages))
	}
	msg := producer.messages[0]
	if msg.topic != "booking.events.v1" {
		t.Fatalf("topic = %q", msg.topic)
	}
	if msg.key != "b-1" {
		t.Fatalf("key = %q", msg.key)
	}
	if msg.headers["content-type"] != "application/cloudevents+json" {
		t.Fatalf("headers = %v", msg.headers)
	}

	var envelope map[string]any
	if err := json.Unmarshal(msg.payload, &envelope); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if envelope["specversion"] != "1.0" || envelope["type"] != "booking.created.v1" {
		t.Fatalf("envelope = %v", envelope)
	}
	data := envelope["data"].(map[string]any)
	if data["booking_id"] != "b-1" {
		t.Fatalf("data = %v", data)
	}

	if len(store.sent) != 1 || store.sent[0] != "evt-1" {
		t.Fatalf("sent = %v", store.sent)
	}
}

func TestProcessOnceAppliesTopicPrefix(t *testing.T) {
	store := &fakeStore{queue: []*EventDocument{bookingCreatedDoc()}}
	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer, TopicPrefix: "staging."}

	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce: %v", err)
	}
	if producer.messages[0].topic != "staging.booking.events.v1" {
		t.Fatalf("topic = %q", producer.messages[0].topic)
	}
}

func TestProcessOnceMarksFailureForRetry(t *testing.T) {
	store := &fakeStore{queue: []*EventDocument{bookingCreatedDoc()}}
	producer := &fakeProducer{err: errors.New("broker down")}
	w := &Worker{Store: store, Producer: producer}

	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce: %v", err)
	}
	if len(store.failed) != 1 || store.failed[0] != "evt-1" {
		t.Fatalf("failed = %v", store.failed)
	}
	if len(store.sent) != 0 {
		t.Fatalf("sent = %v, want none", store.sent)
	}
}

func TestProcessOnceIdleQueue(t *testing.T) {
	w := &Worker{Store: &fakeStore{}, Producer: &fakeProducer{}}
	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce on empty queue: %v", err)
	}
}

func TestRunRequiresWiring(t *testing.T) {
	w := &Worker{}
	if err := w.Run(context.Background()); !errors.Is(err, ErrWorkerNotConfigured) {
		t.Fatalf("err = %v, want ErrWorkerNotConfigured", err)
	}
}

func TestNextRetryClampsToLastStep(t *testing.T) {
	w := &Worker{Backoff: []time.Duration{time.Second, 5 * time.Second}}
	before := time.Now()
	at := w.nextRetry(10)
	if at.Sub(before) > 6*time.Second || at.Sub(before) < 4*time.Second {
		t.Fatalf("retry delay = %v, want ~5s", at.Sub(before))
	}
}
