package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
	"stayhub/internal/infra/storage/memory"
)

type fakeUploader struct {
	keys []string
	err  error
}

func (f *fakeUploader) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.example.com/" + key, nil
}

func newService() (*Service, *memory.ListingRepository) {
	repo := memory.NewListingRepository()
	seq := 0
	svc := &Service{
		Listings: repo,
		Users:    memory.NewUserRepository(),
		Clock:    func() time.Time { return time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC) },
		NewID: func() string {
			seq++
			return fmt.Sprintf("l-%d", seq)
		},
	}
	return svc, repo
}

func hostCaller(id string) Caller {
	return Caller{ID: domainuser.ID(id), Role: domainuser.RoleHost}
}

func createParams(title string) CreateParams {
	return CreateParams{
		Title:         title,
		Description:   "A place to stay.",
		Address:       "1 Main Street",
		City:          "Amsterdam",
		Country:       "Netherlands",
		PricePerNight: 100,
		Guests:        4,
	}
}

func TestCreateStampsHostFromCaller(t *testing.T) {
	svc, _ := newService()
	view, err := svc.Create(context.Background(), hostCaller("h-1"), createParams("Loft"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if view.HostID != "h-1" {
		t.Fatalf("host = %q, want h-1", view.HostID)
	}
	if view.Bedrooms != 1 || view.Bathrooms != 1 {
		t.Fatalf("room defaults = %d/%d", view.Bedrooms, view.Bathrooms)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService()
	params := createParams("Loft")
	params.Guests = 0
	if _, err := svc.Create(context.Background(), hostCaller("h-1"), params); !errors.Is(err, domainlisting.ErrGuestsLimit) {
		t.Fatalf("err = %v, want ErrGuestsLimit", err)
	}
}

func TestGetUnknownListing(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Get(context.Background(), "nope")
	var notFound domainlisting.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want not-found", err)
	}
	if notFound.Error() != "Listing not found with id of nope" {
		t.Fatalf("message = %q", notFound.Error())
	}
}

func TestUpdateOwnerOrAdminOnly(t *testing.T) {
	svc, _ := newService()
	view, err := svc.Create(context.Background(), hostCaller("h-1"), createParams("Loft"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := domainlisting.ListingID(view.ID)
	price := 150.0

	_, err = svc.Update(context.Background(), id, hostCaller("h-2"), domainlisting.Update{PricePerNight: &price})
	var access domainlisting.AccessError
	if !errors.As(err, &access) {
		t.Fatalf("err = %v, want access error", err)
	}
	if access.Error() != "User h-2 is not authorized to update this listing" {
		t.Fatalf("message = %q", access.Error())
	}

	updated, err := svc.Update(context.Background(), id, Caller{ID: "a-1", Role: domainuser.RoleAdmin}, domainlisting.Update{PricePerNight: &price})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.PricePerNight != 150 {
		t.Fatalf("price = %v, want 150", updated.PricePerNight)
	}
}

func TestDeleteOwnerOrAdminOnly(t *testing.T) {
	svc, _ := newService()
	view, err := svc.Create(context.Background(), hostCaller("h-1"), createParams("Loft"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := domainlisting.ListingID(view.ID)

	err = svc.Delete(context.Background(), id, hostCaller("h-2"))
	var access domainlisting.AccessError
	if !errors.As(err, &access) {
		t.Fatalf("err = %v, want access error", err)
	}
	if err := svc.Delete(context.Background(), id, hostCaller("h-1")); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), id); err == nil {
		t.Fatal("listing still readable after delete")
	}
}

func TestListPagination(t *testing.T) {
	svc, _ := newService()
	for i := 0; i < 25; i++ {
		if _, err := svc.Create(context.Background(), hostCaller("h-1"), createParams(fmt.Sprintf("Listing %02d", i))); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	page2, err := svc.List(context.Background(), domainlisting.Query{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page2.Count != 10 {
		t.Fatalf("count = %d, want 10", page2.Count)
	}
	if page2.Pagination.Next == nil || page2.Pagination.Next.Page != 3 {
		t.Fatalf("next = %+v, want page 3", page2.Pagination.Next)
	}
	if page2.Pagination.Prev == nil || page2.Pagination.Prev.Page != 1 {
		t.Fatalf("prev = %+v, want page 1", page2.Pagination.Prev)
	}

	page3, err := svc.List(context.Background(), domainlisting.Query{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("List page 3: %v", err)
	}
	if page3.Count != 5 {
		t.Fatalf("count = %d, want 5", page3.Count)
	}
	if page3.Pagination.Next != nil {
		t.Fatalf("next = %+v, want nil on last page", page3.Pagination.Next)
	}
}

func TestListFiltersAndSort(t *testing.T) {
	svc, _ := newService()
	prices := []float64{80, 120, 200}
	for i, price := range prices {
		params := createParams(fmt.Sprintf("Listing %d", i))
		params.PricePerNight = price
		if i == 2 {
			params.City = "Lisbon"
			params.Country = "Portugal"
		}
		if _, err := svc.Create(context.Background(), hostCaller("h-1"), params); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	result, err := svc.List(context.Background(), domainlisting.Query{
		Filters: []domainlisting.Filter{{Field: "pricePerNight", Op: domainlisting.OpLte, Values: []string{"120"}}},
		Sort:    []domainlisting.SortKey{{Field: "pricePerNight"}},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("count = %d, want 2", result.Count)
	}
	if result.Items[0].PricePerNight != 80 || result.Items[1].PricePerNight != 120 {
		t.Fatalf("order = %v, %v", result.Items[0].PricePerNight, result.Items[1].PricePerNight)
	}

	byCity, err := svc.List(context.Background(), domainlisting.Query{
		Filters: []domainlisting.Filter{{Field: "city", Op: domainlisting.OpEq, Values: []string{"Lisbon"}}},
	})
	if err != nil {
		t.Fatalf("List by city: %v", err)
	}
	if byCity.Count != 1 || byCity.Items[0].Country != "Portugal" {
		t.Fatalf("city filter result = %+v", byCity.Items)
	}
}

func TestAttachPhoto(t *testing.T) {
	svc, _ := newService()
	uploader := &fakeUploader{}
	svc.Photos = uploader

	view, err := svc.Create(context.Background(), hostCaller("h-1"), createParams("Loft"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := domainlisting.ListingID(view.ID)

	updated, err := svc.AttachPhoto(context.Background(), id, hostCaller("h-1"), "front.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("AttachPhoto: %v", err)
	}
	if len(updated.Images) != 1 || !strings.HasPrefix(updated.Images[0], "https://cdn.example.com/listings/") {
		t.Fatalf("images = %v", updated.Images)
	}
	if len(uploader.keys) != 1 || !strings.HasSuffix(uploader.keys[0], ".jpg") {
		t.Fatalf("uploaded keys = %v", uploader.keys)
	}

	_, err = svc.AttachPhoto(context.Background(), id, hostCaller("h-2"), "x.jpg", "image/jpeg", strings.NewReader("x"))
	var access domainlisting.AccessError
	if !errors.As(err, &access) {
		t.Fatalf("err = %v, want access error", err)
	}
}

func TestAttachPhotoWithoutStorage(t *testing.T) {
	svc, _ := newService()
	view, err := svc.Create(context.Background(), hostCaller("h-1"), createParams("Loft"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = svc.AttachPhoto(context.Background(), domainlisting.ListingID(view.ID), hostCaller("h-1"), "x.jpg", "image/jpeg", strings.NewReader("x"))
	if !errors.Is(err, ErrPhotoStorageUnavailable) {
		t.Fatalf("err = %v, want ErrPhotoStorageUnavailable", err)
	}
}
