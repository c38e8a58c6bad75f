package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
)

// CutoffHistoryRepository append-only audit of distribution runs.
type CutoffHistoryRepository interface {
	Create(ctx context.Context, h *model.CutoffHistoryLog) error
	List(ctx context.Context, offset, limit int) ([]model.CutoffHistoryLog, int64, error)
}

type cutoffHistoryRepo struct {
	db *gorm.DB
}

// NewCutoffHistoryRepo creates a CutoffHistoryRepository.
func NewCutoffHistoryRepo(db *gorm.DB) CutoffHistoryRepository {
	return &cutoffHistoryRepo{db: db}
}

func (r *cutoffHistoryRepo) Create(ctx context.Context, h *model.CutoffHistoryLog) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *cutoffHistoryRepo) List(ctx context.Context, offset, limit int) ([]model.CutoffHistoryLog, int64, error) {
	var rows []model.CutoffHistoryLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.CutoffHistoryLog{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
