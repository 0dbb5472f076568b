package services

import (
	"context"
	"errors"
	"testing"

	"github.com/taskforge/project-service/internal/models"
)

func TestRegister(t *testing.T) {
	env := newTestEnv()
	svc := env.authService()

	user, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "hunter22hunter22",
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if user.ID == 0 {
		t.Error("user was not persisted")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %s, want lowercased", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "hunter22hunter22" {
		t.Error("password stored without hashing")
	}

	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr error
	}{
		{
			"email taken",
			RegisterRequest{Username: "alice2", Email: "alice@example.com", Password: "hunter22hunter22"},
			ErrEmailTaken,
		},
		{
			"username taken",
			RegisterRequest{Username: "alice", Email: "other@example.com", Password: "hunter22hunter22"},
			ErrUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), &tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv()

	_, err := env.authService().Register(context.Background(), &RegisterRequest{
		Username: "al",
		Email:    "not-an-email",
		Password: "short",
	})

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Register() error = %v, want validation errors", err)
	}
	if len(verrs) != 3 {
		t.Errorf("field errors = %d, want 3", len(verrs))
	}
}

func TestLoginAndParseToken(t *testing.T) {
	env := newTestEnv()
	svc := env.authService()

	if _, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22hunter22",
	}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	resp, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter22hunter22",
	})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("no token issued")
	}

	claims, err := svc.ParseToken(resp.Token)
	if err != nil {
		t.Fatalf("ParseToken() error: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Errorf("token user id = %d, want %d", claims.UserID, resp.User.ID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("token email = %s", claims.Email)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv()
	svc := env.authService()

	if _, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22hunter22",
	}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{"wrong password", LoginRequest{Email: "alice@example.com", Password: "wrongwrongwrong"}},
		{"unknown email", LoginRequest{Email: "nobody@example.com", Password: "hunter22hunter22"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(context.Background(), &tt.req); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	env := newTestEnv()
	svc := env.authService()

	if _, err := svc.ParseToken("not.a.token"); err == nil {
		t.Error("ParseToken() accepted garbage")
	}

	// A token signed with a different secret must not verify
	other := NewAuthService(env.repo, nil, env.logger, env.validator, "other-secret")
	env.repo.users[1] = &models.User{ID: 1, Email: "alice@example.com"}
	foreign, err := other.(*authService).issueToken(env.repo.users[1])
	if err != nil {
		t.Fatalf("issueToken() error: %v", err)
	}
	if _, err := svc.ParseToken(foreign); err == nil {
		t.Error("ParseToken() accepted a token signed with another secret")
	}
}
