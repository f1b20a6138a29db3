package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	listingsvc "stayhub/internal/app/services/listing"
	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
)

// successEnvelope is the wire shape shared by every 2xx response:
// {"success": true, "count": ..., "pagination": ..., "data": ...} with
// count and pagination only present on collection responses.
type successEnvelope struct {
	Success    bool `json:"success"`
	Count      *int `json:"count,omitempty"`
	Pagination any  `json:"pagination,omitempty"`
	Data       any  `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, successEnvelope{Success: true, Data: data})
}

func respondCollection(c *gin.Context, count int, pagination any, data any) {
	c.JSON(http.StatusOK, successEnvelope{Success: true, Count: &count, Pagination: pagination, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorEnvelope{Success: false, Message: message})
}

var listingValidationErrors = []error{
	domainlisting.ErrTitleRequired,
	domainlisting.ErrTitleTooLong,
	domainlisting.ErrDescriptionRequired,
	domainlisting.ErrDescriptionTooLong,
	domainlisting.ErrAddressRequired,
	domainlisting.ErrCityRequired,
	domainlisting.ErrCountryRequired,
	domainlisting.ErrNegativePrice,
	domainlisting.ErrGuestsLimit,
	domainlisting.ErrNegativeBedrooms,
	domainlisting.ErrNegativeBathrooms,
	domainlisting.ErrImageURLRequired,
}

// respondServiceError maps service/domain failures onto the status
// contract: unknown resources 404, denied access 401, business-rule
// rejections 400, storage outage 503, everything else a generic 500.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error) {
	var (
		bookingNotFound domainbooking.NotFoundError
		listingNotFound domainlisting.NotFoundError
		bookingAccess   domainbooking.AccessError
		listingAccess   domainlisting.AccessError
		validation      domainbooking.ValidationError
	)
	switch {
	case errors.As(err, &bookingNotFound):
		respondError(c, http.StatusNotFound, bookingNotFound.Error())
	case errors.As(err, &listingNotFound):
		respondError(c, http.StatusNotFound, listingNotFound.Error())
	case errors.As(err, &bookingAccess):
		respondError(c, http.StatusUnauthorized, bookingAccess.Error())
	case errors.As(err, &listingAccess):
		respondError(c, http.StatusUnauthorized, listingAccess.Error())
	case errors.As(err, &validation):
		respondError(c, http.StatusBadRequest, validation.Error())
	case errors.Is(err, domainbooking.ErrInvalidGuests):
		respondError(c, http.StatusBadRequest, "Number of guests must be at least 1")
	case isListingValidation(err):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, listingsvc.ErrPhotoStorageUnavailable):
		respondError(c, http.StatusServiceUnavailable, "Photo storage is not available")
	default:
		if logger != nil {
			logger.Error("request failed", "error", err, "path", c.FullPath(), "request_id", c.GetString("request_id"))
		}
		respondError(c, http.StatusInternalServerError, "Server Error")
	}
}

func isListingValidation(err error) bool {
	for _, sentinel := range listingValidationErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
