package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"stepladder/practice-app/internal/repository"
	"stepladder/practice-app/internal/repository/memory"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAuthService() AuthService {
	return NewAuthService(memory.NewUserRepository(), "test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Dr. Rivera", "rivera@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID.IsZero() {
		t.Error("user ID not assigned")
	}
	if user.PasswordHash != "" {
		t.Error("password hash leaked in returned user")
	}

	token, loggedIn, err := svc.Login(ctx, "rivera@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" || strings.Count(token, ".") != 2 {
		t.Errorf("token = %q, want a JWT", token)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("logged-in user = %v, want %v", loggedIn.ID, user.ID)
	}
}

func TestGetUser(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Dr. Osei", "osei@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := svc.GetUser(ctx, registered.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Name != "Dr. Osei" || user.Email != "osei@example.com" {
		t.Errorf("user = %+v", user)
	}
	if user.PasswordHash != "" {
		t.Error("password hash leaked from GetUser")
	}

	if _, err := svc.GetUser(ctx, primitive.NewObjectID()); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "First", "same@example.com", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "Second", "same@example.com", "password456"); !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("err = %v, want ErrUserAlreadyExists", err)
	}
}

func TestLoginFailures(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Dr. Chen", "chen@example.com", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Wrong password and unknown email fail identically.
	if _, _, err := svc.Login(ctx, "chen@example.com", "wrong"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("wrong password err = %v, want ErrAuthenticationFailed", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("unknown email err = %v, want ErrAuthenticationFailed", err)
	}
}
