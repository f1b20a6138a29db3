package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "stayhub/internal/domain/booking"
	domainuser "stayhub/internal/domain/user"
)

type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items: make(map[domainbooking.BookingID]*domainbooking.Booking),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.NotFoundError{ID: id}
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0, len(r.items))
	for _, b := range r.items {
		out = append(out, cloneBooking(b))
	}
	sortByCreation(out)
	return out, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID domainuser.ID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.UserID == userID {
			out = append(out, cloneBooking(b))
		}
	}
	sortByCreation(out)
	return out, nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[b.ID] = cloneBooking(b)
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainbooking.NotFoundError{ID: id}
	}
	delete(r.items, id)
	return nil
}

func sortByCreation(items []*domainbooking.Booking) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	if b == nil {
		return nil
	}
	copyBooking := *b
	copyBooking.ClearEvents()
	return &copyBooking
}
