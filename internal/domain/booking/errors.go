package booking

import (
	"fmt"

	"stayhub/internal/domain/user"
)

// NotFoundError carries the id the client asked for; the message is the
// one returned on the wire.
type NotFoundError struct {
	ID BookingID
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("Booking not found with id of %s", e.ID)
}

// AccessError is an authenticated-but-not-permitted failure naming the
// caller and the attempted action.
type AccessError struct {
	UserID user.ID
	Action string
}

func (e AccessError) Error() string {
	return fmt.Sprintf("User %s is not authorized to %s this booking", e.UserID, e.Action)
}

// ValidationError is a business-rule rejection with a client-facing
// message.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

const (
	MsgMissingFields       = "Please provide listing, check-in, check-out dates and guests"
	MsgCheckOutNotAfter    = "Check-out date must be after check-in date"
	capacityExceededFormat = "Number of guests exceeds listing's maximum capacity of %d"
)

func CapacityExceeded(max int) ValidationError {
	return ValidationError{Message: fmt.Sprintf(capacityExceededFormat, max)}
}
