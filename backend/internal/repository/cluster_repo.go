package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
)

// ClusterRepository taxonomy access. The table is seeded by migration and read-only here.
type ClusterRepository interface {
	List(ctx context.Context) ([]model.Cluster, error)
}

type clusterRepo struct {
	db *gorm.DB
}

// NewClusterRepo creates a ClusterRepository.
func NewClusterRepo(db *gorm.DB) ClusterRepository {
	return &clusterRepo{db: db}
}

func (r *clusterRepo) List(ctx context.Context) ([]model.Cluster, error) {
	var clusters []model.Cluster
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&clusters).Error
	return clusters, err
}
