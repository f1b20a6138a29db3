package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	domainauth "stayhub/internal/domain/auth"
	domainuser "stayhub/internal/domain/user"
	"stayhub/internal/infra/storage/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type sequenceTokens struct{ n int }

func (g *sequenceTokens) NewToken() (string, error) {
	g.n++
	return fmt.Sprintf("token-%d", g.n), nil
}

func newService() *Service {
	return &Service{
		Users:      memory.NewUserRepository(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  plainHasher{},
		Tokens:     &sequenceTokens{},
		SessionTTL: time.Hour,
	}
}

func TestRegisterDefaultsToUserRole(t *testing.T) {
	svc := newService()
	result, err := svc.Register(context.Background(), RegisterParams{
		Email:    "Guest@Example.com",
		Name:     "Guest",
		Password: "long-enough",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.User.Role != domainuser.RoleUser {
		t.Fatalf("role = %q, want user", result.User.Role)
	}
	if result.User.Email != "guest@example.com" {
		t.Fatalf("email = %q, want normalized", result.User.Email)
	}
	if result.Token == "" {
		t.Fatal("no session token issued")
	}
}

func TestRegisterHost(t *testing.T) {
	svc := newService()
	result, err := svc.Register(context.Background(), RegisterParams{
		Email:      "host@example.com",
		Name:       "Host",
		Password:   "long-enough",
		WantToHost: true,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.User.Role != domainuser.RoleHost {
		t.Fatalf("role = %q, want host", result.User.Role)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newService()
	_, err := svc.Register(context.Background(), RegisterParams{
		Email:    "guest@example.com",
		Name:     "Guest",
		Password: "short",
	})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("err = %v, want ErrPasswordTooShort", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newService()
	params := RegisterParams{Email: "guest@example.com", Name: "Guest", Password: "long-enough"}
	if _, err := svc.Register(context.Background(), params); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), params); !errors.Is(err, domainuser.ErrEmailAlreadyUsed) {
		t.Fatalf("err = %v, want ErrEmailAlreadyUsed", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newService()
	if _, err := svc.Register(context.Background(), RegisterParams{Email: "guest@example.com", Name: "Guest", Password: "long-enough"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := svc.Login(context.Background(), LoginParams{Email: "Guest@Example.com", Password: "long-enough"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" {
		t.Fatal("no token issued")
	}

	if _, err := svc.Login(context.Background(), LoginParams{Email: "guest@example.com", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(context.Background(), LoginParams{Email: "nobody@example.com", Password: "long-enough"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestResolveToken(t *testing.T) {
	svc := newService()
	registered, err := svc.Register(context.Background(), RegisterParams{Email: "guest@example.com", Name: "Guest", Password: "long-enough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resolved, err := svc.ResolveToken(context.Background(), registered.Token)
	if err != nil {
		t.Fatalf("ResolveToken: %v", err)
	}
	if resolved.User.ID != registered.User.ID {
		t.Fatalf("resolved user = %s, want %s", resolved.User.ID, registered.User.ID)
	}

	if _, err := svc.ResolveToken(context.Background(), "bogus"); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc := newService()
	registered, err := svc.Register(context.Background(), RegisterParams{Email: "guest@example.com", Name: "Guest", Password: "long-enough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.Logout(context.Background(), registered.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.ResolveToken(context.Background(), registered.Token); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Fatalf("token still valid after logout: %v", err)
	}
	// logging out twice is fine
	if err := svc.Logout(context.Background(), registered.Token); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
}

func TestExpiredSessionRejected(t *testing.T) {
	svc := newService()
	svc.SessionTTL = time.Nanosecond
	registered, err := svc.Register(context.Background(), RegisterParams{Email: "guest@example.com", Name: "Guest", Password: "long-enough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := svc.ResolveToken(context.Background(), registered.Token); !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}
