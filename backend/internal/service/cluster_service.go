package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/dto"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/repository"
)

const clusterCacheKey = "clusters:v1"

// ClusterService serves the rejection taxonomy.
type ClusterService interface {
	List(ctx context.Context) ([]model.Cluster, error)
	ListResponses(ctx context.Context) ([]dto.ClusterResponse, error)
}

type clusterService struct {
	repo   *repository.Repository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewClusterService creates a ClusterService. cache may be nil.
func NewClusterService(repo *repository.Repository, cache Cache, ttl time.Duration, logger *zap.Logger) ClusterService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &clusterService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// List returns the taxonomy, from cache when possible. Cache failures fall through to MySQL.
func (s *clusterService) List(ctx context.Context) ([]model.Cluster, error) {
	if s.cache != nil {
		if raw, err := s.cache.GetCache(ctx, clusterCacheKey); err == nil {
			var clusters []model.Cluster
			if err := json.Unmarshal(raw, &clusters); err == nil {
				return clusters, nil
			}
		}
	}

	clusters, err := s.repo.Cluster.List(ctx)
	if err != nil {
		s.logger.Error("list clusters failed", zap.Error(err))
		return nil, err
	}

	if s.cache != nil && len(clusters) > 0 {
		if raw, err := json.Marshal(clusters); err == nil {
			if err := s.cache.SetCache(ctx, clusterCacheKey, raw, s.ttl); err != nil {
				s.logger.Warn("cache clusters failed", zap.Error(err))
			}
		}
	}
	return clusters, nil
}

func (s *clusterService) ListResponses(ctx context.Context) ([]dto.ClusterResponse, error) {
	clusters, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]dto.ClusterResponse, len(clusters))
	for i, c := range clusters {
		list[i] = dto.ClusterResponse{
			ID:          c.ID,
			MainCluster: c.MainCluster,
			SubCluster:  c.SubCluster,
			NamaOpsi:    c.NamaOpsi,
		}
	}
	return list, nil
}
