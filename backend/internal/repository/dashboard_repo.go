package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
)

// DashboardCounts the four headline counters.
type DashboardCounts struct {
	TotalData           int64
	PendingVerification int64
	VerifikasiSelesai   int64
	VerifikasiDitolak   int64
}

// UserKPIRow per-reviewer counters.
type UserKPIRow struct {
	ID                  uint
	Name                string
	TotalData           int64
	PendingVerification int64
	VerifikasiSelesai   int64
	VerifikasiDitolak   int64
}

// DashboardRepository aggregate queries for the dashboard.
type DashboardRepository interface {
	// Counts computes the counters; userID 0 computes them globally.
	Counts(ctx context.Context, userID uint) (*DashboardCounts, error)
	CountUsers(ctx context.Context) (int64, error)
	UserKPIs(ctx context.Context) ([]UserKPIRow, error)
}

type dashboardRepo struct {
	db *gorm.DB
}

// NewDashboardRepo creates a DashboardRepository.
func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db: db}
}

func (r *dashboardRepo) Counts(ctx context.Context, userID uint) (*DashboardCounts, error) {
	var out DashboardCounts
	db := r.db.WithContext(ctx)

	total := db.Table("cutoff")
	pending := db.Table("cutoff").
		Joins("LEFT JOIN logs ON logs.cutoff_id = cutoff.id").
		Where("logs.id IS NULL")
	verified := db.Table("logs").Where("status = ?", model.StatusVerified)
	rejected := db.Table("logs").Where("status = ?", model.StatusRejected)

	if userID != 0 {
		total = total.Where("user_id = ?", userID)
		pending = pending.Where("cutoff.user_id = ?", userID)
		verified = verified.Where("user_id = ?", userID)
		rejected = rejected.Where("user_id = ?", userID)
	}

	if err := total.Count(&out.TotalData).Error; err != nil {
		return nil, err
	}
	if err := pending.Count(&out.PendingVerification).Error; err != nil {
		return nil, err
	}
	if err := verified.Count(&out.VerifikasiSelesai).Error; err != nil {
		return nil, err
	}
	if err := rejected.Count(&out.VerifikasiDitolak).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *dashboardRepo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}

const userKPIQuery = `
SELECT
    u.id,
    COALESCE(u.name, u.email) AS name,
    COUNT(DISTINCT c.id) AS total_data,
    COUNT(DISTINCT CASE WHEN l.id IS NULL THEN c.id END) AS pending_verification,
    COUNT(DISTINCT CASE WHEN l.status = 'VERIFIED' THEN l.id END) AS verifikasi_selesai,
    COUNT(DISTINCT CASE WHEN l.status = 'REJECTED' THEN l.id END) AS verifikasi_ditolak
FROM users u
LEFT JOIN cutoff c ON u.id = c.user_id
LEFT JOIN logs l ON c.id = l.cutoff_id
WHERE u.role = ?
GROUP BY u.id, u.name, u.email
ORDER BY u.name ASC`

func (r *dashboardRepo) UserKPIs(ctx context.Context) ([]UserKPIRow, error) {
	var rows []UserKPIRow
	err := r.db.WithContext(ctx).Raw(userKPIQuery, model.RoleUser).Scan(&rows).Error
	return rows, err
}
