package user

import (
	"errors"
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		raw  string
		want Role
	}{
		{"user", RoleUser},
		{"HOST", RoleHost},
		{" admin ", RoleAdmin},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.raw)
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRole(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
	if _, err := ParseRole("superuser"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("err = %v, want ErrInvalidRole", err)
	}
}

func TestNewUserValidation(t *testing.T) {
	params := CreateParams{
		ID:           "u-1",
		Email:        "Guest@Example.com",
		Name:         "Guest",
		PasswordHash: "hash",
		Role:         RoleUser,
		CreatedAt:    time.Now(),
	}
	u, err := NewUser(params)
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if u.Email != "guest@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}

	bad := params
	bad.Role = "superuser"
	if _, err := NewUser(bad); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("err = %v, want ErrInvalidRole", err)
	}
	bad = params
	bad.PasswordHash = ""
	if _, err := NewUser(bad); !errors.Is(err, ErrPasswordHashMissing) {
		t.Fatalf("err = %v, want ErrPasswordHashMissing", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Guest@Example.COM "); got != "guest@example.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}
