package dto

import (
	"time"

	"stayhub/internal/domain/user"
)

type UserView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserProjection is the name/email slice attached to bookings and
// listings for admins and public host display.
type UserProjection struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func MapUserView(u *user.User) UserView {
	return UserView{
		ID:        string(u.ID),
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func MapUserProjection(u *user.User) *UserProjection {
	if u == nil {
		return nil
	}
	return &UserProjection{ID: string(u.ID), Name: u.Name, Email: u.Email}
}
