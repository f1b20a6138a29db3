package booking

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/events"
	"stayhub/internal/domain/user"
)

var (
	ErrInvalidGuests = errors.New("booking: guests count must be positive")
	ErrUserRequired  = errors.New("booking: user id required")
	ErrListingNeeded = errors.New("booking: listing id required")
)

type BookingID string

type Booking struct {
	ID           BookingID
	ListingID    listing.ListingID
	UserID       user.ID
	CheckInDate  time.Time
	CheckOutDate time.Time
	Guests       int
	TotalPrice   float64
	CreatedAt    time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	ListAll(ctx context.Context) ([]*Booking, error)
	ListByUser(ctx context.Context, userID user.ID) ([]*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id BookingID) error
}

// Nights is the rounded absolute day difference between the two dates.
// The absolute value means a reversed range still yields a positive
// count; only coinciding dates produce zero. Callers reject the zero
// case but deliberately keep the reversed one (see DESIGN.md).
func Nights(checkIn, checkOut time.Time) int {
	diff := checkOut.Sub(checkIn).Hours() / 24
	return int(math.Round(math.Abs(diff)))
}

type CreateParams struct {
	ID        BookingID
	ListingID listing.ListingID
	UserID    user.ID
	CheckIn   time.Time
	CheckOut  time.Time
	Guests    int
	Total     float64
	CreatedAt time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, ErrUserRequired
	}
	if strings.TrimSpace(string(params.ListingID)) == "" {
		return nil, ErrListingNeeded
	}
	if params.Guests < 1 {
		return nil, ErrInvalidGuests
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	b := &Booking{
		ID:           params.ID,
		ListingID:    params.ListingID,
		UserID:       params.UserID,
		CheckInDate:  params.CheckIn,
		CheckOutDate: params.CheckOut,
		Guests:       params.Guests,
		TotalPrice:   params.Total,
		CreatedAt:    now,
	}
	b.Record(Created{BookingID: b.ID, ListingID: b.ListingID, UserID: b.UserID, CheckIn: b.CheckInDate, CheckOut: b.CheckOutDate, Guests: b.Guests, TotalPrice: b.TotalPrice, At: now})
	return b, nil
}

// Update carries a partial field set for PUT semantics; nil leaves the
// field untouched. Only dates and guest count are mutable: the listing
// reference is fixed at creation and the owner is never client-supplied.
type Update struct {
	CheckInDate  *time.Time
	CheckOutDate *time.Time
	Guests       *int
}

// Apply re-validates the touched fields' own ranges. It does not
// re-derive TotalPrice nor re-check capacity against the listing; only
// creation computes the price (see DESIGN.md).
func (b *Booking) Apply(u Update, now time.Time) error {
	if u.Guests != nil {
		if *u.Guests < 1 {
			return ErrInvalidGuests
		}
		b.Guests = *u.Guests
	}
	if u.CheckInDate != nil {
		b.CheckInDate = *u.CheckInDate
	}
	if u.CheckOutDate != nil {
		b.CheckOutDate = *u.CheckOutDate
	}
	b.Record(Updated{BookingID: b.ID, ListingID: b.ListingID, UserID: b.UserID, CheckIn: b.CheckInDate, CheckOut: b.CheckOutDate, Guests: b.Guests, At: now.UTC()})
	return nil
}

// CanBeAccessedBy is the shared access rule for get/update/delete:
// the booking's owner, or an admin. Exhaustive over the role enum.
func (b *Booking) CanBeAccessedBy(callerID user.ID, role user.Role) bool {
	if b.UserID == callerID {
		return true
	}
	switch role {
	case user.RoleAdmin:
		return true
	case user.RoleUser, user.RoleHost:
		return false
	default:
		return false
	}
}
