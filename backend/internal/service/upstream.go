package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/skylink"
)

// Upstream is the part of the Skylink API the services use. *skylink.Client implements it.
type Upstream interface {
	Login(ctx context.Context, email, password string) (*skylink.LoginResult, error)
	Me(ctx context.Context, token string) (*skylink.Profile, error)
	ListShipments(ctx context.Context, token, status string, limit, offset int) ([]skylink.Shipment, error)
	GetShipment(ctx context.Context, token string, id uint) (json.RawMessage, error)
	ListEvidences(ctx context.Context, token string, shipmentID uint) (json.RawMessage, error)
	UpdateShipmentStatus(ctx context.Context, token, csrf string, id uint, update skylink.StatusUpdate) (json.RawMessage, error)
	FetchStatic(ctx context.Context, path string) (*skylink.StaticFile, error)
}

// Cache is the byte cache the cluster taxonomy is kept in. *redis.Client implements it.
type Cache interface {
	GetCache(ctx context.Context, key string) ([]byte, error)
	SetCache(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// TokenBlacklist revokes session tokens. *redis.Client implements it.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}
