package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/dto"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/repository"
)

// DashboardService aggregate counters.
type DashboardService interface {
	// Get returns global counters and per-user KPIs for admins, own counters otherwise.
	Get(ctx context.Context, userID uint, isAdmin bool) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

func (s *dashboardService) Get(ctx context.Context, userID uint, isAdmin bool) (*dto.DashboardResponse, error) {
	scope := userID
	if isAdmin {
		scope = 0
	}

	counts, err := s.repo.Dashboard.Counts(ctx, scope)
	if err != nil {
		s.logger.Error("dashboard counts failed", zap.Error(err))
		return nil, err
	}

	resp := &dto.DashboardResponse{
		TotalData:           counts.TotalData,
		PendingVerification: counts.PendingVerification,
		VerifikasiSelesai:   counts.VerifikasiSelesai,
		VerifikasiDitolak:   counts.VerifikasiDitolak,
	}
	if !isAdmin {
		return resp, nil
	}

	totalUsers, err := s.repo.Dashboard.CountUsers(ctx)
	if err != nil {
		s.logger.Error("dashboard user count failed", zap.Error(err))
		return nil, err
	}
	rows, err := s.repo.Dashboard.UserKPIs(ctx)
	if err != nil {
		s.logger.Error("dashboard user kpis failed", zap.Error(err))
		return nil, err
	}

	resp.TotalUsers = &totalUsers
	resp.UserKPIs = make([]dto.UserKPI, len(rows))
	for i, r := range rows {
		resp.UserKPIs[i] = dto.UserKPI{
			ID:                  r.ID,
			Name:                r.Name,
			TotalData:           r.TotalData,
			PendingVerification: r.PendingVerification,
			VerifikasiSelesai:   r.VerifikasiSelesai,
			VerifikasiDitolak:   r.VerifikasiDitolak,
		}
	}
	return resp, nil
}
