package memory

import (
	"context"
	"sync"

	domainlisting "stayhub/internal/domain/listing"
)

// ListingRepository is an in-memory implementation, used by the demo
// fallback path and the test suites.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlisting.ListingID]*domainlisting.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlisting.ListingID]*domainlisting.Listing),
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ListingID) (*domainlisting.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.items[id]
	if !ok {
		return nil, domainlisting.NotFoundError{ID: id}
	}
	return cloneListing(l), nil
}

func (r *ListingRepository) List(ctx context.Context, query domainlisting.Query) (domainlisting.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := query.Normalized()
	matches := make([]*domainlisting.Listing, 0, len(r.items))
	for _, l := range r.items {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return domainlisting.Result{}, ctx.Err()
			default:
			}
		}
		if !filtersMatch(l, opts.Filters) {
			continue
		}
		matches = append(matches, cloneListing(l))
	}

	domainlisting.SortListings(matches, opts.Sort)

	total := len(matches)
	start := opts.Skip()
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return domainlisting.Result{Items: matches[start:end], Total: total}, nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlisting.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[l.ID] = cloneListing(l)
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlisting.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainlisting.NotFoundError{ID: id}
	}
	delete(r.items, id)
	return nil
}

func filtersMatch(l *domainlisting.Listing, filters []domainlisting.Filter) bool {
	for _, f := range filters {
		if !f.Matches(l) {
			return false
		}
	}
	return true
}

func cloneListing(l *domainlisting.Listing) *domainlisting.Listing {
	if l == nil {
		return nil
	}
	copyListing := *l
	copyListing.Amenities = append([]string(nil), l.Amenities...)
	copyListing.Images = append([]string(nil), l.Images...)
	return &copyListing
}
