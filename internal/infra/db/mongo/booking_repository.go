package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("bookings")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.NotFoundError{ID: id}
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{})
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID domainuser.ID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"user_id": string(userID)})
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cursor.Err()
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.NotFoundError{ID: id}
	}
	return nil
}

type bookingDocument struct {
	ID         string  `bson:"_id"`
	ListingID  string  `bson:"listing_id"`
	UserID     string  `bson:"user_id"`
	CheckIn    int64   `bson:"check_in"`
	CheckOut   int64   `bson:"check_out"`
	Guests     int     `bson:"guests"`
	TotalPrice float64 `bson:"total_price"`
	CreatedAt  int64   `bson:"created_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:         string(b.ID),
		ListingID:  string(b.ListingID),
		UserID:     string(b.UserID),
		CheckIn:    b.CheckInDate.UnixMilli(),
		CheckOut:   b.CheckOutDate.UnixMilli(),
		Guests:     b.Guests,
		TotalPrice: b.TotalPrice,
		CreatedAt:  b.CreatedAt.UnixMilli(),
	}
}

func (d bookingDocument) toEntity() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:           domainbooking.BookingID(d.ID),
		ListingID:    domainlisting.ListingID(d.ListingID),
		UserID:       domainuser.ID(d.UserID),
		CheckInDate:  timestampToTime(d.CheckIn),
		CheckOutDate: timestampToTime(d.CheckOut),
		Guests:       d.Guests,
		TotalPrice:   d.TotalPrice,
		CreatedAt:    timestampToTime(d.CreatedAt),
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
