package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "stayhub/internal/app/outbox"
	infraoutbox "stayhub/internal/infra/outbox"
)

const (
	outboxStatusPending = "PENDING"
	outboxStatusSent    = "SENT"
)

// OutboxStore persists pending domain events alongside the entities
// they describe, and hands them to the publishing worker one at a time.
type OutboxStore struct {
	col *mongo.Collection
}

func NewOutboxStore(db *mongo.Database) *OutboxStore {
	return &OutboxStore{col: db.Collection("outbox")}
}

func (s *OutboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	doc := outboxDocument{
		ID:         record.ID,
		Name:       record.Name,
		Payload:    record.Payload,
		OccurredAt: record.OccurredAt.UnixMilli(),
		Aggregate:  record.Aggregate,
		Headers:    record.Headers,
		Status:     outboxStatusPending,
	}
	_, err := s.col.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	now := time.Now().UnixMilli()
	filter := bson.M{
		"status":     outboxStatusPending,
		"claimed_by": bson.M{"$in": bson.A{"", nil}},
		"$or": bson.A{
			bson.M{"next_try": bson.M{"$lte": now}},
			bson.M{"next_try": bson.M{"$exists": false}},
		},
	}
	update := bson.M{"$set": bson.M{"claimed_by": workerID}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "occurred_at", Value: 1}}).
		SetReturnDocument(options.After)
	var doc outboxDocument
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &infraoutbox.EventDocument{
		ID:         doc.ID,
		Name:       doc.Name,
		Payload:    doc.Payload,
		OccurredAt: timestampToTime(doc.OccurredAt),
		Aggregate:  doc.Aggregate,
		Headers:    doc.Headers,
		Attempts:   doc.Attempts,
	}, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": outboxStatusSent, "claimed_by": ""},
	})
	return err
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"claimed_by": "", "next_try": retryAt.UnixMilli(), "last_error": reason},
		"$inc": bson.M{"attempts": 1},
	})
	return err
}

type outboxDocument struct {
	ID         string            `bson:"_id"`
	Name       string            `bson:"name"`
	Payload    []byte            `bson:"payload"`
	OccurredAt int64             `bson:"occurred_at"`
	Aggregate  string            `bson:"aggregate"`
	Headers    map[string]string `bson:"headers"`
	Status     string            `bson:"status"`
	ClaimedBy  string            `bson:"claimed_by"`
	NextTry    int64             `bson:"next_try"`
	Attempts   int               `bson:"attempts"`
	LastError  string            `bson:"last_error"`
}
