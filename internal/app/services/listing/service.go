package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/app/dto"
	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
)

// ErrPhotoStorageUnavailable is returned when no object storage is
// configured for this deployment.
var ErrPhotoStorageUnavailable = errors.New("listing: photo storage unavailable")

type Caller struct {
	ID   domainuser.ID
	Role domainuser.Role
}

// Uploader stores binary content and returns a public URL. Satisfied by
// the S3/MinIO client under infra.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}

type Service struct {
	Listings domainlisting.Repository
	Users    domainuser.Repository
	Photos   Uploader
	Logger   *slog.Logger
	Clock    func() time.Time
	NewID    func() string
}

type ListResult struct {
	Items      []dto.ListingView
	Count      int
	Pagination dto.Pagination
}

// List is the public catalog: equality and gt/gte/lt/lte/in filters,
// comma sorts, page/limit paging with next/prev descriptors.
func (s *Service) List(ctx context.Context, query domainlisting.Query) (ListResult, error) {
	normalized := query.Normalized()
	result, err := s.Listings.List(ctx, normalized)
	if err != nil {
		return ListResult{}, err
	}
	hostCache := make(map[domainuser.ID]*domainuser.User)
	views := make([]dto.ListingView, 0, len(result.Items))
	for _, l := range result.Items {
		views = append(views, dto.MapListingView(l, s.loadHost(ctx, l.Host, hostCache)))
	}
	return ListResult{
		Items:      views,
		Count:      len(views),
		Pagination: dto.NewPagination(normalized.Page, normalized.Limit, result.Total),
	}, nil
}

func (s *Service) Get(ctx context.Context, id domainlisting.ListingID) (dto.ListingView, error) {
	l, err := s.Listings.ByID(ctx, id)
	if err != nil {
		return dto.ListingView{}, err
	}
	return dto.MapListingView(l, s.loadHost(ctx, l.Host, nil)), nil
}

type CreateParams struct {
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
}

// Create stamps the caller as host; the host reference is never
// client-supplied.
func (s *Service) Create(ctx context.Context, caller Caller, params CreateParams) (dto.ListingView, error) {
	l, err := domainlisting.NewListing(domainlisting.CreateParams{
		ID:            domainlisting.ListingID(s.newID()),
		Host:          caller.ID,
		Title:         params.Title,
		Description:   params.Description,
		Address:       params.Address,
		City:          params.City,
		Country:       params.Country,
		PricePerNight: params.PricePerNight,
		Guests:        params.Guests,
		Bedrooms:      params.Bedrooms,
		Bathrooms:     params.Bathrooms,
		Amenities:     params.Amenities,
		Images:        params.Images,
		CreatedAt:     s.now(),
	})
	if err != nil {
		return dto.ListingView{}, err
	}
	if err := s.Listings.Save(ctx, l); err != nil {
		return dto.ListingView{}, err
	}
	if s.Logger != nil {
		s.Logger.Info("listing created", "listing_id", l.ID, "host_id", l.Host, "city", l.City)
	}
	return dto.MapListingView(l, nil), nil
}

func (s *Service) Update(ctx context.Context, id domainlisting.ListingID, caller Caller, update domainlisting.Update) (dto.ListingView, error) {
	l, err := s.Listings.ByID(ctx, id)
	if err != nil {
		return dto.ListingView{}, err
	}
	if !l.CanBeManagedBy(caller.ID, caller.Role) {
		return dto.ListingView{}, domainlisting.AccessError{UserID: caller.ID, Action: "update"}
	}
	if err := l.Apply(update); err != nil {
		return dto.ListingView{}, err
	}
	if err := s.Listings.Save(ctx, l); err != nil {
		return dto.ListingView{}, err
	}
	return dto.MapListingView(l, nil), nil
}

func (s *Service) Delete(ctx context.Context, id domainlisting.ListingID, caller Caller) error {
	l, err := s.Listings.ByID(ctx, id)
	if err != nil {
		return err
	}
	if !l.CanBeManagedBy(caller.ID, caller.Role) {
		return domainlisting.AccessError{UserID: caller.ID, Action: "delete"}
	}
	if err := s.Listings.Delete(ctx, id); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("listing deleted", "listing_id", id, "user_id", caller.ID)
	}
	return nil
}

// AttachPhoto streams an upload into object storage and appends the
// returned URL to the listing's image sequence.
func (s *Service) AttachPhoto(ctx context.Context, id domainlisting.ListingID, caller Caller, filename, contentType string, content io.Reader) (dto.ListingView, error) {
	if s.Photos == nil {
		return dto.ListingView{}, ErrPhotoStorageUnavailable
	}
	l, err := s.Listings.ByID(ctx, id)
	if err != nil {
		return dto.ListingView{}, err
	}
	if !l.CanBeManagedBy(caller.ID, caller.Role) {
		return dto.ListingView{}, domainlisting.AccessError{UserID: caller.ID, Action: "update"}
	}
	key := fmt.Sprintf("listings/%s/%s%s", l.ID, s.newID(), path.Ext(filename))
	url, err := s.Photos.Upload(ctx, key, content, contentType)
	if err != nil {
		return dto.ListingView{}, err
	}
	if err := l.AttachImage(url); err != nil {
		return dto.ListingView{}, err
	}
	if err := s.Listings.Save(ctx, l); err != nil {
		return dto.ListingView{}, err
	}
	if s.Logger != nil {
		s.Logger.Info("listing photo attached", "listing_id", l.ID, "url", url)
	}
	return dto.MapListingView(l, nil), nil
}

func (s *Service) loadHost(ctx context.Context, id domainuser.ID, cache map[domainuser.ID]*domainuser.User) *domainuser.User {
	if cache != nil {
		if u, ok := cache[id]; ok {
			return u
		}
	}
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("host lookup failed", "user_id", id, "error", err)
		}
		u = nil
	}
	if cache != nil {
		cache[id] = u
	}
	return u
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
