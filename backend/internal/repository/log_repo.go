package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
	pkgerrors "github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/errors"
)

// LogRepository verification log access. Logs are never updated.
type LogRepository interface {
	GetByCutoffID(ctx context.Context, cutoffID uint) (*model.VerificationLog, error)
	// Create inserts log. A second log for the same cutoff yields pkgerrors.ErrDuplicateKey.
	Create(ctx context.Context, log *model.VerificationLog) error
}

type logRepo struct {
	db *gorm.DB
}

// NewLogRepo creates a LogRepository.
func NewLogRepo(db *gorm.DB) LogRepository {
	return &logRepo{db: db}
}

func (r *logRepo) GetByCutoffID(ctx context.Context, cutoffID uint) (*model.VerificationLog, error) {
	var log model.VerificationLog
	err := r.db.WithContext(ctx).
		Where("cutoff_id = ?", cutoffID).
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *logRepo) Create(ctx context.Context, log *model.VerificationLog) error {
	err := r.db.WithContext(ctx).Create(log).Error
	if pkgerrors.IsDuplicateKey(err) {
		return pkgerrors.ErrDuplicateKey
	}
	return err
}
