package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/config"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/dto"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/jwt"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/skylink"
)

// ── helpers ──

func setupTestAuthService(t *testing.T) (AuthService, *mockStore, *mockUpstream, *mockCache, *jwt.Manager) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret-key-for-unit-tests",
			AccessTokenTTL:   time.Hour,
			LocalEmailDomain: "sab.id",
			LocalUsers: []config.LocalUser{
				{Username: "admin", PasswordHash: string(hash), Name: "Admin SAB", Role: model.RoleAdmin},
			},
		},
	}
	store := newMockStore()
	up := &mockUpstream{}
	cache := newMockCache()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, store.repository(), up, jwtMgr, cache, zap.NewNop())
	return svc, store, up, cache, jwtMgr
}

// ── Login ──

func TestAuthService_Login_Skylink(t *testing.T) {
	svc, store, up, _, jwtMgr := setupTestAuthService(t)
	up.loginRes = &skylink.LoginResult{
		AccessToken: "sky-token",
		CSRFToken:   "csrf-token",
		User:        &skylink.Profile{ID: "42", Name: "Reviewer Satu", Email: "Reviewer@Sab.id"},
	}

	res, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "reviewer", Password: "pw"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.SkylinkToken != "sky-token" || res.CSRFToken != "csrf-token" {
		t.Errorf("expected upstream tokens to be passed on, got %q %q", res.SkylinkToken, res.CSRFToken)
	}
	if res.Response.Source != jwt.SourceSkylink || res.Response.User.Email != "reviewer@sab.id" {
		t.Errorf("unexpected response %+v", res.Response)
	}

	claims, err := jwtMgr.ParseToken(res.Response.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Source != jwt.SourceSkylink || claims.UserID != res.Response.User.ID {
		t.Errorf("unexpected claims %+v", claims)
	}
	if len(store.users) != 1 {
		t.Errorf("expected the user to be upserted, got %d rows", len(store.users))
	}
}

func TestAuthService_Login_SkylinkProfileFromMe(t *testing.T) {
	svc, _, up, _, _ := setupTestAuthService(t)
	up.loginRes = &skylink.LoginResult{AccessToken: "sky-token"}
	up.me = &skylink.Profile{Name: "Dari Me", Email: "me@sab.id"}

	res, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "x", Password: "pw"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.Response.User.Email != "me@sab.id" || res.Response.User.Name != "Dari Me" {
		t.Errorf("expected profile from /auth/me, got %+v", res.Response.User)
	}
}

func TestAuthService_Login_RejectedUpstream(t *testing.T) {
	svc, store, up, _, _ := setupTestAuthService(t)
	up.loginErr = &skylink.APIError{StatusCode: 401, Body: "bad credentials"}

	// local accounts are not consulted when Skylink answered
	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "rahasia123"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(store.users) != 0 {
		t.Error("no user must be created on a failed login")
	}
}

func TestAuthService_Login_LocalFallback(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unreachable", skylink.ErrUnavailable},
		{"server error", &skylink.APIError{StatusCode: 502}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, up, _, jwtMgr := setupTestAuthService(t)
			up.loginErr = tt.err

			res, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "Admin", Password: "rahasia123"})
			if err != nil {
				t.Fatalf("Login failed: %v", err)
			}
			if res.Response.Source != jwt.SourceLocal || res.SkylinkToken != "" {
				t.Errorf("expected a local session without upstream token, got %+v", res)
			}
			if res.Response.User.Email != "admin@sab.id" {
				t.Errorf("unexpected email %s", res.Response.User.Email)
			}
			claims, err := jwtMgr.ParseToken(res.Response.AccessToken)
			if err != nil || claims.Source != jwt.SourceLocal {
				t.Errorf("unexpected claims %+v %v", claims, err)
			}
		})
	}
}

func TestAuthService_Login_LocalFallbackFailures(t *testing.T) {
	svc, _, up, _, _ := setupTestAuthService(t)
	up.loginErr = skylink.ErrUnavailable

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "salah"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}

	_, err = svc.Login(context.Background(), &dto.LoginRequest{Username: "tidak-ada", Password: "pw"})
	if !errors.Is(err, ErrAuthUnavailable) {
		t.Errorf("unknown account: expected ErrAuthUnavailable, got %v", err)
	}
}

func TestAuthService_Login_EmptyInput(t *testing.T) {
	svc, _, _, _, _ := setupTestAuthService(t)
	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "  ", Password: "pw"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

// ── Me / Logout ──

func TestAuthService_MeAndLogout(t *testing.T) {
	svc, _, up, cache, jwtMgr := setupTestAuthService(t)
	up.loginErr = skylink.ErrUnavailable

	res, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "rahasia123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	claims, err := jwtMgr.ParseToken(res.Response.AccessToken)
	if err != nil {
		t.Fatal(err)
	}

	me, err := svc.Me(context.Background(), claims)
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if me.Source != jwt.SourceLocal || me.LocalUserID != claims.UserID {
		t.Errorf("unexpected me %+v", me)
	}

	if err := svc.Logout(context.Background(), claims); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	ttl, ok := cache.blacklisted[claims.ID]
	if !ok || ttl <= 0 || ttl > time.Hour {
		t.Errorf("expected jti blacklisted for the remaining lifetime, got %v %v", ttl, ok)
	}
}

func TestAuthService_Me_UnknownUser(t *testing.T) {
	svc, _, _, _, _ := setupTestAuthService(t)
	_, err := svc.Me(context.Background(), &jwt.Claims{UserID: 99})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLocalEmail(t *testing.T) {
	tests := []struct{ in, domain, want string }{
		{"Budi", "sab.id", "budi@sab.id"},
		{"budi@Other.ID", "sab.id", "budi@other.id"},
		{"budi", "", "budi@sab.id"},
	}
	for _, tt := range tests {
		if got := LocalEmail(tt.in, tt.domain); got != tt.want {
			t.Errorf("LocalEmail(%q, %q) = %q, want %q", tt.in, tt.domain, got, tt.want)
		}
	}
}
