package mongo

import (
	"context"
	"errors"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("listings")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ListingID) (*domainlisting.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlisting.NotFoundError{ID: id}
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *ListingRepository) List(ctx context.Context, query domainlisting.Query) (domainlisting.Result, error) {
	opts := query.Normalized()
	filter := buildFilter(opts.Filters)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainlisting.Result{}, err
	}

	findOpts := options.Find().
		SetSort(buildSort(opts.Sort)).
		SetSkip(int64(opts.Skip())).
		SetLimit(int64(opts.Limit))
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainlisting.Result{}, err
	}
	defer cursor.Close(ctx)

	var items []*domainlisting.Listing
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainlisting.Result{}, err
		}
		items = append(items, doc.toEntity())
	}
	if err := cursor.Err(); err != nil {
		return domainlisting.Result{}, err
	}
	return domainlisting.Result{Items: items, Total: int(total)}, nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlisting.Listing) error {
	doc := newListingDocument(l)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlisting.ListingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlisting.NotFoundError{ID: id}
	}
	return nil
}

// fieldKeys maps the public filter/sort names onto document keys.
var fieldKeys = map[string]string{
	"city":          "city",
	"country":       "country",
	"guests":        "guests",
	"bedrooms":      "bedrooms",
	"bathrooms":     "bathrooms",
	"pricePerNight": "price_per_night",
	"createdAt":     "created_at",
	"title":         "title",
}

// buildFilter translates the comparison-operator filters into their
// Mongo counterparts so the comparison runs server-side instead of in
// process.
func buildFilter(filters []domainlisting.Filter) bson.M {
	out := bson.M{}
	for _, f := range filters {
		key, ok := fieldKeys[f.Field]
		if !ok {
			continue
		}
		kind := domainlisting.FilterableFields[f.Field]
		switch f.Op {
		case domainlisting.OpIn:
			out[key] = bson.M{"$in": coerceValues(f.Values, kind)}
		case domainlisting.OpGt, domainlisting.OpGte, domainlisting.OpLt, domainlisting.OpLte:
			value := coerceValue(f.Values[0], kind)
			if existing, ok := out[key].(bson.M); ok {
				existing["$"+string(f.Op)] = value
			} else {
				out[key] = bson.M{"$" + string(f.Op): value}
			}
		default:
			out[key] = coerceValue(f.Values[0], kind)
		}
	}
	return out
}

func buildSort(keys []domainlisting.SortKey) bson.D {
	sort := bson.D{}
	for _, key := range keys {
		field, ok := fieldKeys[key.Field]
		if !ok {
			continue
		}
		direction := 1
		if key.Desc {
			direction = -1
		}
		sort = append(sort, bson.E{Key: field, Value: direction})
	}
	if len(sort) == 0 {
		sort = bson.D{{Key: "created_at", Value: -1}}
	}
	return sort
}

func coerceValues(raw []string, kind domainlisting.FieldKind) []any {
	out := make([]any, 0, len(raw))
	for _, v := range raw {
		out = append(out, coerceValue(v, kind))
	}
	return out
}

func coerceValue(raw string, kind domainlisting.FieldKind) any {
	if kind == domainlisting.KindNumber {
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	}
	return raw
}

type listingDocument struct {
	ID            string   `bson:"_id"`
	HostID        string   `bson:"host_id"`
	Title         string   `bson:"title"`
	Description   string   `bson:"description"`
	Address       string   `bson:"address"`
	City          string   `bson:"city"`
	Country       string   `bson:"country"`
	PricePerNight float64  `bson:"price_per_night"`
	Guests        int      `bson:"guests"`
	Bedrooms      int      `bson:"bedrooms"`
	Bathrooms     int      `bson:"bathrooms"`
	Amenities     []string `bson:"amenities"`
	Images        []string `bson:"images"`
	CreatedAt     int64    `bson:"created_at"`
}

func newListingDocument(l *domainlisting.Listing) listingDocument {
	return listingDocument{
		ID:            string(l.ID),
		HostID:        string(l.Host),
		Title:         l.Title,
		Description:   l.Description,
		Address:       l.Address,
		City:          l.City,
		Country:       l.Country,
		PricePerNight: l.PricePerNight,
		Guests:        l.Guests,
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		Amenities:     l.Amenities,
		Images:        l.Images,
		CreatedAt:     l.CreatedAt.UnixMilli(),
	}
}

func (d listingDocument) toEntity() *domainlisting.Listing {
	return &domainlisting.Listing{
		ID:            domainlisting.ListingID(d.ID),
		Host:          domainuser.ID(d.HostID),
		Title:         d.Title,
		Description:   d.Description,
		Address:       d.Address,
		City:          d.City,
		Country:       d.Country,
		PricePerNight: d.PricePerNight,
		Guests:        d.Guests,
		Bedrooms:      d.Bedrooms,
		Bathrooms:     d.Bathrooms,
		Amenities:     d.Amenities,
		Images:        d.Images,
		CreatedAt:     timestampToTime(d.CreatedAt),
	}
}
