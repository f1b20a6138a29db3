package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	bookingsvc "stayhub/internal/app/services/booking"
	domainbooking "stayhub/internal/domain/booking"
	domainuser "stayhub/internal/domain/user"
)

type BookingHandler struct {
	Service *bookingsvc.Service
	Logger  *slog.Logger
}

type createBookingRequest struct {
	Listing      string `json:"listing"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	Guests       int    `json:"guests"`
}

type updateBookingRequest struct {
	CheckInDate  *string `json:"checkInDate"`
	CheckOutDate *string `json:"checkOutDate"`
	Guests       *int    `json:"guests"`
}

// List returns the caller's bookings; admins see every booking.
func (h BookingHandler) List(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	views, err := h.Service.List(c.Request.Context(), bookingCaller(p))
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respondCollection(c, len(views), nil, views)
}

func (h BookingHandler) Get(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	view, err := h.Service.Get(c.Request.Context(), domainbooking.BookingID(c.Param("id")), bookingCaller(p))
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireRole(c, domainuser.RoleUser)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	checkIn, ok := parseWireDate(c, req.CheckInDate)
	if !ok {
		return
	}
	checkOut, ok := parseWireDate(c, req.CheckOutDate)
	if !ok {
		return
	}
	view, err := h.Service.Create(c.Request.Context(), bookingCaller(p), bookingsvc.CreateParams{
		ListingID: req.Listing,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    req.Guests,
	})
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusCreated, view)
}

func (h BookingHandler) Update(c *gin.Context) {
	p, ok := requireRole(c, domainuser.RoleUser, domainuser.RoleAdmin)
	if !ok {
		return
	}
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	var update domainbooking.Update
	if req.CheckInDate != nil {
		checkIn, ok := parseWireDate(c, *req.CheckInDate)
		if !ok {
			return
		}
		update.CheckInDate = &checkIn
	}
	if req.CheckOutDate != nil {
		checkOut, ok := parseWireDate(c, *req.CheckOutDate)
		if !ok {
			return
		}
		update.CheckOutDate = &checkOut
	}
	update.Guests = req.Guests
	view, err := h.Service.Update(c.Request.Context(), domainbooking.BookingID(c.Param("id")), bookingCaller(p), update)
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

func (h BookingHandler) Delete(c *gin.Context) {
	p, ok := requireRole(c, domainuser.RoleUser, domainuser.RoleAdmin)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), domainbooking.BookingID(c.Param("id")), bookingCaller(p)); err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{})
}

func bookingCaller(p principal) bookingsvc.Caller {
	return bookingsvc.Caller{ID: p.ID, Role: p.Role}
}

var wireDateLayouts = []string{time.RFC3339, "2006-01-02"}

// parseWireDate accepts RFC 3339 timestamps and plain calendar dates.
// Empty strings pass through as zero times so the presence check stays
// with the booking rules, not the transport.
func parseWireDate(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	for _, layout := range wireDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	respondError(c, http.StatusBadRequest, "Invalid date format: "+raw)
	return time.Time{}, false
}
