package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"stayhub/internal/domain/user"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

var (
	ErrTitleRequired       = errors.New("listing: title is required")
	ErrTitleTooLong        = fmt.Errorf("listing: title cannot be more than %d characters", MaxTitleLength)
	ErrDescriptionRequired = errors.New("listing: description is required")
	ErrDescriptionTooLong  = fmt.Errorf("listing: description cannot be more than %d characters", MaxDescriptionLength)
	ErrAddressRequired     = errors.New("listing: address is required")
	ErrCityRequired        = errors.New("listing: city is required")
	ErrCountryRequired     = errors.New("listing: country is required")
	ErrHostRequired        = errors.New("listing: host is required")
	ErrNegativePrice       = errors.New("listing: price per night cannot be negative")
	ErrGuestsLimit         = errors.New("listing: must allow at least 1 guest")
	ErrNegativeBedrooms    = errors.New("listing: bedrooms cannot be negative")
	ErrNegativeBathrooms   = errors.New("listing: bathrooms cannot be negative")
	ErrImageURLRequired    = errors.New("listing: image url is required")
)

type ListingID string

// NotFoundError reports a lookup miss; its message is the one clients see.
type NotFoundError struct {
	ID ListingID
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("Listing not found with id of %s", e.ID)
}

type Listing struct {
	ID            ListingID
	Host          user.ID
	Title         string
	Description   string
	Address       string
	City          string
	Country       string
	PricePerNight float64
	Guests        int
	Bedrooms      int
	Bathrooms     int
	Amenities     []string
	Images        []string
	CreatedAt     time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	List(ctx context.Context, query Query) (Result, error)
	Save(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id ListingID) error
}

type CreateParams struct {
	ID            ListingID
	Host          user.ID
	Title         string
	Description   string
	Address       string
	City          string
	Country       string
	PricePerNight float64
	Guests        int
	Bedrooms      int
	Bathrooms     int
	Amenities     []string
	Images        []string
	CreatedAt     time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	title := strings.TrimSpace(params.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateDescription(params.Description); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Address) == "" {
		return nil, ErrAddressRequired
	}
	if strings.TrimSpace(params.City) == "" {
		return nil, ErrCityRequired
	}
	if strings.TrimSpace(params.Country) == "" {
		return nil, ErrCountryRequired
	}
	if params.PricePerNight < 0 {
		return nil, ErrNegativePrice
	}
	if params.Guests < 1 {
		return nil, ErrGuestsLimit
	}
	bedrooms := params.Bedrooms
	if bedrooms == 0 {
		bedrooms = 1
	}
	if bedrooms < 0 {
		return nil, ErrNegativeBedrooms
	}
	bathrooms := params.Bathrooms
	if bathrooms == 0 {
		bathrooms = 1
	}
	if bathrooms < 0 {
		return nil, ErrNegativeBathrooms
	}
	created := params.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return &Listing{
		ID:            params.ID,
		Host:          params.Host,
		Title:         title,
		Description:   params.Description,
		Address:       params.Address,
		City:          params.City,
		Country:       params.Country,
		PricePerNight: params.PricePerNight,
		Guests:        params.Guests,
		Bedrooms:      bedrooms,
		Bathrooms:     bathrooms,
		Amenities:     append([]string(nil), params.Amenities...),
		Images:        append([]string(nil), params.Images...),
		CreatedAt:     created.UTC(),
	}, nil
}

// Update carries a partial field set; nil means "leave untouched".
type Update struct {
	Title         *string
	Description   *string
	Address       *string
	City          *string
	Country       *string
	PricePerNight *float64
	Guests        *int
	Bedrooms      *int
	Bathrooms     *int
	Amenities     []string
	Images        []string
}

// Apply validates each touched field and mutates the listing in place.
// The host reference is never part of an update.
func (l *Listing) Apply(u Update) error {
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if err := validateTitle(title); err != nil {
			return err
		}
		l.Title = title
	}
	if u.Description != nil {
		if err := validateDescription(*u.Description); err != nil {
			return err
		}
		l.Description = *u.Description
	}
	if u.Address != nil {
		if strings.TrimSpace(*u.Address) == "" {
			return ErrAddressRequired
		}
		l.Address = *u.Address
	}
	if u.City != nil {
		if strings.TrimSpace(*u.City) == "" {
			return ErrCityRequired
		}
		l.City = *u.City
	}
	if u.Country != nil {
		if strings.TrimSpace(*u.Country) == "" {
			return ErrCountryRequired
		}
		l.Country = *u.Country
	}
	if u.PricePerNight != nil {
		if *u.PricePerNight < 0 {
			return ErrNegativePrice
		}
		l.PricePerNight = *u.PricePerNight
	}
	if u.Guests != nil {
		if *u.Guests < 1 {
			return ErrGuestsLimit
		}
		l.Guests = *u.Guests
	}
	if u.Bedrooms != nil {
		if *u.Bedrooms < 0 {
			return ErrNegativeBedrooms
		}
		l.Bedrooms = *u.Bedrooms
	}
	if u.Bathrooms != nil {
		if *u.Bathrooms < 0 {
			return ErrNegativeBathrooms
		}
		l.Bathrooms = *u.Bathrooms
	}
	if u.Amenities != nil {
		l.Amenities = append([]string(nil), u.Amenities...)
	}
	if u.Images != nil {
		l.Images = append([]string(nil), u.Images...)
	}
	return nil
}

func (l *Listing) AttachImage(url string) error {
	if strings.TrimSpace(url) == "" {
		return ErrImageURLRequired
	}
	l.Images = append(l.Images, url)
	return nil
}

func validateTitle(title string) error {
	if title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func validateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return ErrDescriptionRequired
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}
