package booking

import (
	"time"

	"stayhub/internal/domain/listing"
	"stayhub/internal/domain/user"
)

type Created struct {
	BookingID  BookingID         `json:"booking_id"`
	ListingID  listing.ListingID `json:"listing_id"`
	UserID     user.ID           `json:"user_id"`
	CheckIn    time.Time         `json:"check_in"`
	CheckOut   time.Time         `json:"check_out"`
	Guests     int               `json:"guests"`
	TotalPrice float64           `json:"total_price"`
	At         time.Time         `json:"at"`
}

func (e Created) EventName() string     { return "booking.created" }
func (e Created) AggregateID() string   { return string(e.BookingID) }
func (e Created) OccurredAt() time.Time { return e.At }

type Updated struct {
	BookingID BookingID         `json:"booking_id"`
	ListingID listing.ListingID `json:"listing_id"`
	UserID    user.ID           `json:"user_id"`
	CheckIn   time.Time         `json:"check_in"`
	CheckOut  time.Time         `json:"check_out"`
	Guests    int               `json:"guests"`
	At        time.Time         `json:"at"`
}

func (e Updated) EventName() string     { return "booking.updated" }
func (e Updated) AggregateID() string   { return string(e.BookingID) }
func (e Updated) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	BookingID BookingID         `json:"booking_id"`
	ListingID listing.ListingID `json:"listing_id"`
	UserID    user.ID           `json:"user_id"`
	At        time.Time         `json:"at"`
}

func (e Cancelled) EventName() string     { return "booking.cancelled" }
func (e Cancelled) AggregateID() string   { return string(e.BookingID) }
func (e Cancelled) OccurredAt() time.Time { return e.At }
