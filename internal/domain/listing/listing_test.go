package listing

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validParams() CreateParams {
	return CreateParams{
		ID:            "l-1",
		Host:          "h-1",
		Title:         "Canal-side loft",
		Description:   "Bright loft near the center.",
		Address:       "14 Brouwersgracht",
		City:          "Amsterdam",
		Country:       "Netherlands",
		PricePerNight: 120,
		Guests:        4,
	}
}

func TestNewListingDefaultsRooms(t *testing.T) {
	l, err := NewListing(validParams())
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	if l.Bedrooms != 1 || l.Bathrooms != 1 {
		t.Fatalf("bedrooms/bathrooms = %d/%d, want 1/1", l.Bedrooms, l.Bathrooms)
	}
	if l.CreatedAt.IsZero() {
		t.Fatal("created at not stamped")
	}
}

func TestNewListingValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateParams)
		want   error
	}{
		{"missing host", func(p *CreateParams) { p.Host = "" }, ErrHostRequired},
		{"missing title", func(p *CreateParams) { p.Title = "  " }, ErrTitleRequired},
		{"title too long", func(p *CreateParams) { p.Title = strings.Repeat("x", MaxTitleLength+1) }, ErrTitleTooLong},
		{"missing description", func(p *CreateParams) { p.Description = "" }, ErrDescriptionRequired},
		{"description too long", func(p *CreateParams) { p.Description = strings.Repeat("x", MaxDescriptionLength+1) }, ErrDescriptionTooLong},
		{"missing address", func(p *CreateParams) { p.Address = "" }, ErrAddressRequired},
		{"missing city", func(p *CreateParams) { p.City = "" }, ErrCityRequired},
		{"missing country", func(p *CreateParams) { p.Country = "" }, ErrCountryRequired},
		{"negative price", func(p *CreateParams) { p.PricePerNight = -1 }, ErrNegativePrice},
		{"zero guests", func(p *CreateParams) { p.Guests = 0 }, ErrGuestsLimit},
		{"negative bedrooms", func(p *CreateParams) { p.Bedrooms = -1 }, ErrNegativeBedrooms},
		{"negative bathrooms", func(p *CreateParams) { p.Bathrooms = -2 }, ErrNegativeBathrooms},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validParams()
			tc.mutate(&params)
			if _, err := NewListing(params); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestApplyPartialUpdate(t *testing.T) {
	l, err := NewListing(validParams())
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	price := 150.0
	city := "Utrecht"
	if err := l.Apply(Update{PricePerNight: &price, City: &city}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if l.PricePerNight != 150 || l.City != "Utrecht" {
		t.Fatalf("updated fields = %v/%q", l.PricePerNight, l.City)
	}
	if l.Title != "Canal-side loft" {
		t.Fatalf("untouched title changed to %q", l.Title)
	}
}

func TestApplyRevalidatesTouchedFields(t *testing.T) {
	l, err := NewListing(validParams())
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	bad := -5.0
	if err := l.Apply(Update{PricePerNight: &bad}); !errors.Is(err, ErrNegativePrice) {
		t.Fatalf("err = %v, want ErrNegativePrice", err)
	}
	if l.PricePerNight != 120 {
		t.Fatalf("price mutated to %v", l.PricePerNight)
	}
}

func TestAttachImage(t *testing.T) {
	l, err := NewListing(validParams())
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	if err := l.AttachImage("https://cdn.example.com/a.jpg"); err != nil {
		t.Fatalf("AttachImage: %v", err)
	}
	if len(l.Images) != 1 {
		t.Fatalf("images = %v", l.Images)
	}
	if err := l.AttachImage("  "); !errors.Is(err, ErrImageURLRequired) {
		t.Fatalf("err = %v, want ErrImageURLRequired", err)
	}
}

func TestCanBeManagedBy(t *testing.T) {
	l := &Listing{ID: "l-1", Host: "h-1", CreatedAt: time.Now()}
	if !l.CanBeManagedBy("h-1", "host") {
		t.Fatal("owner host denied")
	}
	if !l.CanBeManagedBy("someone", "admin") {
		t.Fatal("admin denied")
	}
	if l.CanBeManagedBy("h-2", "host") {
		t.Fatal("other host allowed")
	}
	if l.CanBeManagedBy("h-2", "user") {
		t.Fatal("plain user allowed")
	}
	// Ownership wins regardless of the role carried by the caller.
	if !l.CanBeManagedBy("h-1", "user") {
		t.Fatal("owner denied because of role")
	}
}
