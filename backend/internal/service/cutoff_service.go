package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/config"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/dto"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/repository"
	pkgerrors "github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/errors"
)

// ── cutoff errors ──

var (
	ErrCutoffNoUsers     = errors.New("userIds array is required")
	ErrCutoffNoToken     = errors.New("token is required")
	ErrCutoffUnknownUser = errors.New("userIds contains unknown users")
	ErrCutoffConflict    = errors.New("shipments were imported by a concurrent distribution run")
)

const (
	msgNoSourceData = "No data found from source"
	msgNoNewData    = "No new data to distribute"
)

// CutoffService distributes pending shipments and serves the review queues.
type CutoffService interface {
	// Distribute imports new pending shipments and splits them across req.UserIDs.
	Distribute(ctx context.Context, req *dto.DistributeRequest, callerID uint) (*dto.DistributeResponse, error)
	// List pages cutoff items with their verification status; userID 0 lists all.
	List(ctx context.Context, userID uint, page *dto.PaginationRequest) ([]dto.CutoffItemResponse, int64, error)
	// Queue returns the user's unlogged items, oldest first.
	Queue(ctx context.Context, userID uint) ([]dto.CutoffItemResponse, error)
	History(ctx context.Context, page *dto.PaginationRequest) ([]dto.CutoffHistoryResponse, int64, error)
}

type cutoffService struct {
	cfg      *config.SkylinkConfig
	repo     *repository.Repository
	upstream Upstream
	logger   *zap.Logger
}

// NewCutoffService creates a CutoffService.
func NewCutoffService(cfg *config.SkylinkConfig, repo *repository.Repository, upstream Upstream, logger *zap.Logger) CutoffService {
	return &cutoffService{cfg: cfg, repo: repo, upstream: upstream, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// Distribute
// ═══════════════════════════════════════════════════════════
//
//  1. validate users and token
//  2. fetch pending shipments from Skylink
//  3. in one transaction: dedup against cutoff/logs, partition, bulk insert, audit row

func (s *cutoffService) Distribute(ctx context.Context, req *dto.DistributeRequest, callerID uint) (*dto.DistributeResponse, error) {
	if len(req.UserIDs) == 0 {
		return nil, ErrCutoffNoUsers
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return nil, ErrCutoffNoToken
	}

	userIDs := dedupeIDs(req.UserIDs)
	users, err := s.repo.User.ListByIDs(ctx, userIDs)
	if err != nil {
		s.logger.Error("load distribution users failed", zap.Error(err))
		return nil, err
	}
	if len(users) != len(userIDs) {
		return nil, ErrCutoffUnknownUser
	}

	shipments, err := s.upstream.ListShipments(ctx, token, s.cfg.PendingStatus, s.cfg.ShipmentLimit, 0)
	if err != nil {
		s.logger.Warn("fetch pending shipments failed", zap.Error(err))
		return nil, err
	}
	if len(shipments) == 0 {
		return &dto.DistributeResponse{Message: msgNoSourceData}, nil
	}

	summary := &dto.DistributionSummary{
		Users:       len(userIDs),
		SourceTotal: len(shipments),
	}

	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		existing, err := tx.Cutoff.FindExistingResi(ctx, resiNumbers(shipments))
		if err != nil {
			return fmt.Errorf("find existing resi: %w", err)
		}

		fresh, skipped := filterNew(shipments, existing)
		summary.Skipped = len(skipped)
		if len(fresh) == 0 {
			return nil
		}

		counts := Partition(len(fresh), len(userIDs))
		items := assign(fresh, userIDs, counts)

		summary.TotalNewItems = len(items)
		summary.BasePerUser = len(items) / len(userIDs)
		summary.Remainder = len(items) % len(userIDs)
		summary.FirstUserGot = counts[0]
		summary.Assignments = make([]dto.AssignmentResult, len(userIDs))
		details := model.CutoffHistoryDetails{
			SourceTotal: len(shipments),
			Assignments: make([]model.UserAssignment, len(userIDs)),
			SkippedResi: skipped,
		}
		for i, id := range userIDs {
			summary.Assignments[i] = dto.AssignmentResult{UserID: id, Count: counts[i]}
			details.Assignments[i] = model.UserAssignment{UserID: id, Count: counts[i]}
		}

		if err := tx.Cutoff.BulkCreate(ctx, items); err != nil {
			return err
		}

		raw, err := json.Marshal(details)
		if err != nil {
			return err
		}
		executedBy := &callerID
		if callerID == 0 {
			executedBy = nil
		}
		return tx.CutoffHistory.Create(ctx, &model.CutoffHistoryLog{
			TotalNewItems: summary.TotalNewItems,
			UsersCount:    summary.Users,
			BasePerUser:   summary.BasePerUser,
			Remainder:     summary.Remainder,
			SkippedCount:  summary.Skipped,
			ExecutedBy:    executedBy,
			Details:       datatypes.JSON(raw),
		})
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrCutoffConflict
		}
		s.logger.Error("distribution failed", zap.Error(err))
		return nil, err
	}

	if summary.TotalNewItems == 0 {
		return &dto.DistributeResponse{Message: msgNoNewData, Distribution: summary}, nil
	}

	s.logger.Info("distribution completed",
		zap.Int("source_total", summary.SourceTotal),
		zap.Int("new_items", summary.TotalNewItems),
		zap.Int("users", summary.Users),
		zap.Int("skipped", summary.Skipped),
		zap.Uint("executed_by", callerID),
	)

	return &dto.DistributeResponse{
		Message:      fmt.Sprintf("Processed %d items.", summary.TotalNewItems),
		Distribution: summary,
	}, nil
}

// ═══════════════════════════════════════════════════════════
// Listing
// ═══════════════════════════════════════════════════════════

func (s *cutoffService) List(ctx context.Context, userID uint, page *dto.PaginationRequest) ([]dto.CutoffItemResponse, int64, error) {
	rows, total, err := s.repo.Cutoff.ListWithStatus(ctx, userID, page.GetOffset(), page.GetLimit())
	if err != nil {
		s.logger.Error("list cutoff failed", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.CutoffItemResponse, len(rows))
	for i, r := range rows {
		status := model.StatusPending
		if r.LogStatus != nil {
			status = *r.LogStatus
		}
		list[i] = dto.CutoffItemResponse{
			ID:                 r.ID,
			ShipmentID:         r.ShipmentID,
			SchoolName:         r.SchoolName,
			NPSN:               r.NPSN,
			ResiNumber:         r.ResiNumber,
			BappNumber:         r.BappNumber,
			StarlinkID:         r.StarlinkID,
			ReceivedDate:       r.ReceivedDate,
			UserID:             r.UserID,
			CreatedAt:          r.CreatedAt,
			VerificationStatus: status,
			LogID:              r.LogID,
		}
	}
	return list, total, nil
}

func (s *cutoffService) Queue(ctx context.Context, userID uint) ([]dto.CutoffItemResponse, error) {
	items, err := s.repo.Cutoff.ListUnlogged(ctx, userID)
	if err != nil {
		s.logger.Error("list review queue failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}

	list := make([]dto.CutoffItemResponse, len(items))
	for i, c := range items {
		list[i] = toCutoffItemResponse(&c)
	}
	return list, nil
}

func (s *cutoffService) History(ctx context.Context, page *dto.PaginationRequest) ([]dto.CutoffHistoryResponse, int64, error) {
	rows, total, err := s.repo.CutoffHistory.List(ctx, page.GetOffset(), page.GetLimit())
	if err != nil {
		s.logger.Error("list cutoff history failed", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.CutoffHistoryResponse, len(rows))
	for i, h := range rows {
		item := dto.CutoffHistoryResponse{
			ID:            h.ID,
			TotalNewItems: h.TotalNewItems,
			UsersCount:    h.UsersCount,
			BasePerUser:   h.BasePerUser,
			Remainder:     h.Remainder,
			SkippedCount:  h.SkippedCount,
			ExecutedBy:    h.ExecutedBy,
			CreatedAt:     h.CreatedAt,
		}
		if len(h.Details) > 0 {
			var details model.CutoffHistoryDetails
			if err := json.Unmarshal(h.Details, &details); err != nil {
				s.logger.Warn("malformed cutoff history details", zap.Uint("id", h.ID), zap.Error(err))
			} else {
				item.SourceTotal = details.SourceTotal
				for _, a := range details.Assignments {
					item.Assignments = append(item.Assignments, dto.AssignmentResult{UserID: a.UserID, Count: a.Count})
				}
			}
		}
		list[i] = item
	}
	return list, total, nil
}

func toCutoffItemResponse(c *model.Cutoff) dto.CutoffItemResponse {
	resp := dto.CutoffItemResponse{
		ID:                 c.ID,
		ShipmentID:         c.ShipmentID,
		SchoolName:         c.SchoolName,
		NPSN:               c.NPSN,
		ResiNumber:         c.ResiNumber,
		BappNumber:         c.BappNumber,
		StarlinkID:         c.StarlinkID,
		ReceivedDate:       c.ReceivedDate,
		UserID:             c.UserID,
		CreatedAt:          c.CreatedAt,
		VerificationStatus: model.StatusPending,
	}
	if c.Log != nil {
		resp.VerificationStatus = c.Log.Status
		id := c.Log.ID
		resp.LogID = &id
	}
	return resp
}
