package dto

import (
	"time"

	"stayhub/internal/domain/booking"
	"stayhub/internal/domain/listing"
	"stayhub/internal/domain/user"
)

// BookingListingSnapshot is the listing projection attached to every
// booking response: title/address/city/country/pricePerNight.
type BookingListingSnapshot struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	Country       string  `json:"country"`
	PricePerNight float64 `json:"pricePerNight"`
}

type BookingView struct {
	ID           string                 `json:"id"`
	Listing      BookingListingSnapshot `json:"listing"`
	User         *UserProjection        `json:"user,omitempty"`
	CheckInDate  time.Time              `json:"checkInDate"`
	CheckOutDate time.Time              `json:"checkOutDate"`
	Guests       int                    `json:"guests"`
	TotalPrice   float64                `json:"totalPrice"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// MapBookingView tolerates a missing listing snapshot (deleted listing)
// by keeping only the reference id; the booking stays readable either
// way.
func MapBookingView(b *booking.Booking, l *listing.Listing, u *user.User) BookingView {
	snapshot := BookingListingSnapshot{ID: string(b.ListingID)}
	if l != nil {
		snapshot.Title = l.Title
		snapshot.Address = l.Address
		snapshot.City = l.City
		snapshot.Country = l.Country
		snapshot.PricePerNight = l.PricePerNight
	}
	return BookingView{
		ID:           string(b.ID),
		Listing:      snapshot,
		User:         MapUserProjection(u),
		CheckInDate:  b.CheckInDate,
		CheckOutDate: b.CheckOutDate,
		Guests:       b.Guests,
		TotalPrice:   b.TotalPrice,
		CreatedAt:    b.CreatedAt,
	}
}
