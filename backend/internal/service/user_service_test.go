package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/config"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
)

func TestUserService_SeedLocalUsers(t *testing.T) {
	store := newMockStore()
	store.addUser("budi@sab.id", "Budi", model.RoleUser)
	svc := NewUserService(store.repository(), zap.NewNop())

	auth := &config.AuthConfig{
		LocalEmailDomain: "sab.id",
		LocalUsers: []config.LocalUser{
			{Username: "budi", PasswordHash: "x"},
			{Username: "admin", PasswordHash: "x", Role: model.RoleAdmin},
			{Username: "siti", PasswordHash: "x", Name: "Siti"},
		},
	}

	created, err := svc.SeedLocalUsers(context.Background(), auth)
	if err != nil {
		t.Fatalf("SeedLocalUsers failed: %v", err)
	}
	if created != 2 {
		t.Errorf("expected 2 new users, got %d", created)
	}

	// running again is a no-op
	created, err = svc.SeedLocalUsers(context.Background(), auth)
	if err != nil || created != 0 {
		t.Errorf("expected no new users on re-seed, got %d %v", created, err)
	}

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 users, got %d", len(list))
	}
	byEmail := make(map[string]string)
	for _, u := range list {
		byEmail[u.Email] = u.Role + "/" + u.Name
	}
	if byEmail["admin@sab.id"] != "admin/admin" {
		t.Errorf("unexpected admin row %q", byEmail["admin@sab.id"])
	}
	if byEmail["siti@sab.id"] != "user/Siti" {
		t.Errorf("unexpected siti row %q", byEmail["siti@sab.id"])
	}
}
