package service

import (
	"go.uber.org/zap"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/config"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/repository"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/jwt"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/redis"
)

// Service aggregates every service.
type Service struct {
	Auth         AuthService
	User         UserService
	Cutoff       CutoffService
	Cluster      ClusterService
	Verification VerificationService
	Dashboard    DashboardService
	Shipment     ShipmentService
	Export       ExportService
}

// NewService wires the services. rdb may be nil; caching and token revocation are then disabled.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	upstream Upstream,
	rdb *redis.Client,
	jwtMgr *jwt.Manager,
	logger *zap.Logger,
) *Service {
	var (
		cache     Cache
		blacklist TokenBlacklist
	)
	if rdb != nil {
		cache = rdb
		blacklist = rdb
	}

	cluster := NewClusterService(repo, cache, cfg.Cache.ClusterTTL, logger)

	return &Service{
		Auth:         NewAuthService(cfg, repo, upstream, jwtMgr, blacklist, logger),
		User:         NewUserService(repo, logger),
		Cutoff:       NewCutoffService(&cfg.Skylink, repo, upstream, logger),
		Cluster:      cluster,
		Verification: NewVerificationService(&cfg.Verification, repo, cluster, upstream, logger),
		Dashboard:    NewDashboardService(repo, logger),
		Shipment:     NewShipmentService(&cfg.Skylink, upstream, logger),
		Export:       NewExportService(repo, cluster, logger),
	}
}
