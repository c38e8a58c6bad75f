package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
	pkgerrors "github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/errors"
)

const (
	resiLookupChunk = 1000
	insertBatchSize = 500
)

// CutoffWithLog is a cutoff row joined with its log, if any.
type CutoffWithLog struct {
	ID           uint
	ShipmentID   uint
	SchoolName   string
	NPSN         string `gorm:"column:npsn"`
	ResiNumber   string
	BappNumber   string
	StarlinkID   string
	ReceivedDate *time.Time
	UserID       uint
	CreatedAt    time.Time
	LogID        *uint
	LogStatus    *string
}

// CutoffRepository cutoff item data access.
type CutoffRepository interface {
	// FindExistingResi returns the subset of resiNumbers that block a new import:
	// rows whose log is VERIFIED or that have no log yet.
	FindExistingResi(ctx context.Context, resiNumbers []string) (map[string]struct{}, error)
	// BulkCreate inserts items in batches. A unique-key clash yields pkgerrors.ErrDuplicateKey.
	BulkCreate(ctx context.Context, items []model.Cutoff) error
	GetByID(ctx context.Context, id uint) (*model.Cutoff, error)
	// ListWithStatus pages cutoff rows; userID 0 lists every user.
	ListWithStatus(ctx context.Context, userID uint, offset, limit int) ([]CutoffWithLog, int64, error)
	// ListUnlogged returns the user's items without a log, oldest first.
	ListUnlogged(ctx context.Context, userID uint) ([]model.Cutoff, error)
	// ListForExport returns cutoff rows with their reviewer and log preloaded; userID 0 means all.
	ListForExport(ctx context.Context, userID uint) ([]model.Cutoff, error)
	ClearResiLock(ctx context.Context, id uint) error
}

type cutoffRepo struct {
	db *gorm.DB
}

// NewCutoffRepo creates a CutoffRepository.
func NewCutoffRepo(db *gorm.DB) CutoffRepository {
	return &cutoffRepo{db: db}
}

func (r *cutoffRepo) FindExistingResi(ctx context.Context, resiNumbers []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})

	for start := 0; start < len(resiNumbers); start += resiLookupChunk {
		end := start + resiLookupChunk
		if end > len(resiNumbers) {
			end = len(resiNumbers)
		}

		var found []string
		err := r.db.WithContext(ctx).
			Table("cutoff").
			Distinct("cutoff.resi_number").
			Joins("LEFT JOIN logs ON logs.cutoff_id = cutoff.id").
			Where("cutoff.resi_number IN ?", resiNumbers[start:end]).
			Where("logs.id IS NULL OR logs.status = ?", model.StatusVerified).
			Pluck("cutoff.resi_number", &found).Error
		if err != nil {
			return nil, err
		}
		for _, resi := range found {
			existing[resi] = struct{}{}
		}
	}

	return existing, nil
}

func (r *cutoffRepo) BulkCreate(ctx context.Context, items []model.Cutoff) error {
	if len(items) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Omit("User", "Log").
		CreateInBatches(&items, insertBatchSize).Error
	if pkgerrors.IsDuplicateKey(err) {
		return pkgerrors.ErrDuplicateKey
	}
	return err
}

func (r *cutoffRepo) GetByID(ctx context.Context, id uint) (*model.Cutoff, error) {
	var item model.Cutoff
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cutoffRepo) ListWithStatus(ctx context.Context, userID uint, offset, limit int) ([]CutoffWithLog, int64, error) {
	var rows []CutoffWithLog
	var total int64

	base := r.db.WithContext(ctx).Table("cutoff")
	if userID != 0 {
		base = base.Where("cutoff.user_id = ?", userID)
	}

	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Select("cutoff.id, cutoff.shipment_id, cutoff.school_name, cutoff.npsn, cutoff.resi_number, " +
			"cutoff.bapp_number, cutoff.starlink_id, cutoff.received_date, cutoff.user_id, cutoff.created_at, " +
			"logs.id AS log_id, logs.status AS log_status").
		Joins("LEFT JOIN logs ON logs.cutoff_id = cutoff.id").
		Order("cutoff.id ASC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r *cutoffRepo) ListUnlogged(ctx context.Context, userID uint) ([]model.Cutoff, error) {
	var items []model.Cutoff
	err := r.db.WithContext(ctx).
		Joins("LEFT JOIN logs ON logs.cutoff_id = cutoff.id").
		Where("cutoff.user_id = ? AND logs.id IS NULL", userID).
		Order("cutoff.id ASC").
		Find(&items).Error
	return items, err
}

func (r *cutoffRepo) ListForExport(ctx context.Context, userID uint) ([]model.Cutoff, error) {
	var items []model.Cutoff
	db := r.db.WithContext(ctx).Preload("User").Preload("Log")
	if userID != 0 {
		db = db.Where("user_id = ?", userID)
	}
	err := db.Order("user_id ASC, id ASC").Find(&items).Error
	return items, err
}

func (r *cutoffRepo) ClearResiLock(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&model.Cutoff{}).
		Where("id = ?", id).
		Update("resi_lock", nil).Error
}
