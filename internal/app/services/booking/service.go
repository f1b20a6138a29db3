package booking

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/outbox"
	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
)

// Caller is the authenticated identity the HTTP layer resolved; the
// service never trusts a client-supplied user reference.
type Caller struct {
	ID   domainuser.ID
	Role domainuser.Role
}

// Service mediates every read and write of bookings, enforcing the
// cross-entity invariants against listing state and the owner-or-admin
// access rule.
type Service struct {
	Bookings domainbooking.Repository
	Listings domainlisting.Repository
	Users    domainuser.Repository
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Logger   *slog.Logger
	Clock    func() time.Time
	NewID    func() string
}

// List returns the caller's bookings, or every booking for admins.
// Admin results additionally carry the booker's name/email projection.
func (s *Service) List(ctx context.Context, caller Caller) ([]dto.BookingView, error) {
	var (
		bookings []*domainbooking.Booking
		err      error
	)
	admin := caller.Role == domainuser.RoleAdmin
	if admin {
		bookings, err = s.Bookings.ListAll(ctx)
	} else {
		bookings, err = s.Bookings.ListByUser(ctx, caller.ID)
	}
	if err != nil {
		return nil, err
	}

	listingCache := make(map[domainlisting.ListingID]*domainlisting.Listing)
	userCache := make(map[domainuser.ID]*domainuser.User)
	views := make([]dto.BookingView, 0, len(bookings))
	for _, b := range bookings {
		l := s.loadListing(ctx, b, listingCache)
		var booker *domainuser.User
		if admin {
			booker = s.loadUser(ctx, b.UserID, userCache)
		}
		views = append(views, dto.MapBookingView(b, l, booker))
	}
	return views, nil
}

// Get fetches one booking, restricted to its owner or an admin.
func (s *Service) Get(ctx context.Context, id domainbooking.BookingID, caller Caller) (dto.BookingView, error) {
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return dto.BookingView{}, err
	}
	if !b.CanBeAccessedBy(caller.ID, caller.Role) {
		return dto.BookingView{}, domainbooking.AccessError{UserID: caller.ID, Action: "view"}
	}
	l := s.loadListing(ctx, b, nil)
	booker := s.loadUser(ctx, b.UserID, nil)
	return dto.MapBookingView(b, l, booker), nil
}

type CreateParams struct {
	ListingID string
	CheckIn   time.Time
	CheckOut  time.Time
	Guests    int
}

// Create validates and persists a new booking. The checks run in a
// fixed order, each a distinct failure: field presence, listing
// existence, capacity, then a non-zero night count. The owner is always
// the caller. Overlapping date ranges on the same listing are not
// detected (see DESIGN.md).
func (s *Service) Create(ctx context.Context, caller Caller, params CreateParams) (dto.BookingView, error) {
	if params.ListingID == "" || params.CheckIn.IsZero() || params.CheckOut.IsZero() || params.Guests == 0 {
		return dto.BookingView{}, domainbooking.ValidationError{Message: domainbooking.MsgMissingFields}
	}

	l, err := s.Listings.ByID(ctx, domainlisting.ListingID(params.ListingID))
	if err != nil {
		return dto.BookingView{}, err
	}

	if params.Guests > l.Guests {
		return dto.BookingView{}, domainbooking.CapacityExceeded(l.Guests)
	}

	nights := domainbooking.Nights(params.CheckIn, params.CheckOut)
	if nights == 0 {
		return dto.BookingView{}, domainbooking.ValidationError{Message: domainbooking.MsgCheckOutNotAfter}
	}

	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(s.newID()),
		ListingID: l.ID,
		UserID:    caller.ID,
		CheckIn:   params.CheckIn,
		CheckOut:  params.CheckOut,
		Guests:    params.Guests,
		Total:     float64(nights) * l.PricePerNight,
		CreatedAt: s.now(),
	})
	if err != nil {
		return dto.BookingView{}, domainbooking.ValidationError{Message: err.Error()}
	}

	if err := s.Bookings.Save(ctx, b); err != nil {
		return dto.BookingView{}, err
	}
	if err := s.drainEvents(ctx, b); err != nil {
		return dto.BookingView{}, err
	}
	if s.Logger != nil {
		s.Logger.Info("booking created", "booking_id", b.ID, "listing_id", b.ListingID, "user_id", b.UserID, "nights", nights, "total", b.TotalPrice)
	}
	return dto.MapBookingView(b, l, nil), nil
}

// Update applies a partial field set after the owner-or-admin check.
// Touched fields are re-validated on their own ranges, but the total
// price is not re-derived and capacity is not re-checked against the
// listing; only creation computes the price.
func (s *Service) Update(ctx context.Context, id domainbooking.BookingID, caller Caller, update domainbooking.Update) (dto.BookingView, error) {
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return dto.BookingView{}, err
	}
	if !b.CanBeAccessedBy(caller.ID, caller.Role) {
		return dto.BookingView{}, domainbooking.AccessError{UserID: caller.ID, Action: "update"}
	}
	if err := b.Apply(update, s.now()); err != nil {
		return dto.BookingView{}, domainbooking.ValidationError{Message: err.Error()}
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return dto.BookingView{}, err
	}
	if err := s.drainEvents(ctx, b); err != nil {
		return dto.BookingView{}, err
	}
	l := s.loadListing(ctx, b, nil)
	return dto.MapBookingView(b, l, nil), nil
}

// Delete hard-deletes after the owner-or-admin check. A missing id is
// always a not-found, never a silent success.
func (s *Service) Delete(ctx context.Context, id domainbooking.BookingID, caller Caller) error {
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return err
	}
	if !b.CanBeAccessedBy(caller.ID, caller.Role) {
		return domainbooking.AccessError{UserID: caller.ID, Action: "delete"}
	}
	if err := s.Bookings.Delete(ctx, id); err != nil {
		return err
	}
	b.Record(domainbooking.Cancelled{BookingID: b.ID, ListingID: b.ListingID, UserID: b.UserID, At: s.now()})
	if err := s.drainEvents(ctx, b); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("booking deleted", "booking_id", id, "user_id", caller.ID)
	}
	return nil
}

func (s *Service) loadListing(ctx context.Context, b *domainbooking.Booking, cache map[domainlisting.ListingID]*domainlisting.Listing) *domainlisting.Listing {
	if cache != nil {
		if l, ok := cache[b.ListingID]; ok {
			return l
		}
	}
	l, err := s.Listings.ByID(ctx, b.ListingID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("listing snapshot missing for booking", "booking_id", b.ID, "listing_id", b.ListingID, "error", err)
		}
		l = nil
	}
	if cache != nil {
		cache[b.ListingID] = l
	}
	return l
}

func (s *Service) loadUser(ctx context.Context, id domainuser.ID, cache map[domainuser.ID]*domainuser.User) *domainuser.User {
	if cache != nil {
		if u, ok := cache[id]; ok {
			return u
		}
	}
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("booker lookup failed", "user_id", id, "error", err)
		}
		u = nil
	}
	if cache != nil {
		cache[id] = u
	}
	return u
}

func (s *Service) drainEvents(ctx context.Context, b *domainbooking.Booking) error {
	pending := b.PendingEvents()
	b.ClearEvents()
	return outbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, pending)
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
