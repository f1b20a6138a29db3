package listing

import (
	"fmt"

	"stayhub/internal/domain/user"
)

// AccessError mirrors the booking access failure, with the listing's
// host as the ownership field.
type AccessError struct {
	UserID user.ID
	Action string
}

func (e AccessError) Error() string {
	return fmt.Sprintf("User %s is not authorized to %s this listing", e.UserID, e.Action)
}

// CanBeManagedBy applies the owner-or-admin rule with the host as
// owner. Exhaustive over the role enum.
func (l *Listing) CanBeManagedBy(callerID user.ID, role user.Role) bool {
	if l.Host == callerID {
		return true
	}
	switch role {
	case user.RoleAdmin:
		return true
	case user.RoleUser, user.RoleHost:
		return false
	default:
		return false
	}
}
