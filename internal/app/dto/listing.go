package dto

import (
	"time"

	"stayhub/internal/domain/listing"
	"stayhub/internal/domain/user"
)

type ListingView struct {
	ID            string          `json:"id"`
	HostID        string          `json:"hostId"`
	Host          *UserProjection `json:"host,omitempty"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Address       string          `json:"address"`
	City          string          `json:"city"`
	Country       string          `json:"country"`
	PricePerNight float64         `json:"pricePerNight"`
	Guests        int             `json:"guests"`
	Bedrooms      int             `json:"bedrooms"`
	Bathrooms     int             `json:"bathrooms"`
	Amenities     []string        `json:"amenities"`
	Images        []string        `json:"images"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func MapListingView(l *listing.Listing, host *user.User) ListingView {
	return ListingView{
		ID:            string(l.ID),
		HostID:        string(l.Host),
		Host:          MapUserProjection(host),
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
		CreatedAt:     l.CreatedAt,
	}
}

type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination mirrors the skip+limit versus total arithmetic of the
// catalog endpoint: next when another page exists, prev past page one.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

func NewPagination(page, limit, total int) Pagination {
	var p Pagination
	if page*limit < total {
		p.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	if (page-1)*limit > 0 {
		p.Prev = &PageRef{Page: page - 1, Limit: limit}
	}
	return p
}
