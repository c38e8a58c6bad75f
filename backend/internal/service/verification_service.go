package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/config"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/dto"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/repository"
	pkgerrors "github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/errors"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/skylink"
)

// ── verification errors ──

var (
	ErrLogMissingFields      = errors.New("cutoff_id, serial_number and user_id are required")
	ErrLogInvalidDate        = errors.New("tanggal_bapp must be formatted YYYY-MM-DD")
	ErrLogCutoffNotFound     = errors.New("cutoff item not found")
	ErrLogUnresolvedClusters = errors.New("rejections reference unknown clusters")
	ErrVerifyMissingTokens   = errors.New("missing authentication tokens (auth_token, csrf_token)")
	ErrVerifyMissingShipment = errors.New("shipment_id is required")
	ErrLogNotAssigned        = errors.New("cutoff item is assigned to another reviewer")
)

// UnresolvedClustersError carries the entries a strict-mode submission could not map.
type UnresolvedClustersError struct {
	Unresolved []dto.ClusterResolution
}

func (e *UnresolvedClustersError) Error() string {
	parts := make([]string, len(e.Unresolved))
	for i, r := range e.Unresolved {
		parts[i] = r.MainCluster + ": " + r.SubCluster
	}
	return fmt.Sprintf("%s (%s)", ErrLogUnresolvedClusters, strings.Join(parts, "; "))
}

func (e *UnresolvedClustersError) Unwrap() error { return ErrLogUnresolvedClusters }

// VerificationService records reviewer decisions.
type VerificationService interface {
	// InsertLog records the decision for a cutoff item once; later calls return the first log.
	// Unless callerRole is admin, the item must be assigned to req.UserID.
	InsertLog(ctx context.Context, req *dto.InsertLogRequest, callerRole string) (*dto.InsertLogResponse, error)
	// Verify pushes the decision to Skylink and then records it locally.
	Verify(ctx context.Context, req *dto.VerifyRequest, userID uint, callerRole string) (*dto.VerifyResponse, error)
}

type verificationService struct {
	cfg      *config.VerificationConfig
	repo     *repository.Repository
	clusters ClusterService
	upstream Upstream
	logger   *zap.Logger
}

// NewVerificationService creates a VerificationService.
func NewVerificationService(
	cfg *config.VerificationConfig,
	repo *repository.Repository,
	clusters ClusterService,
	upstream Upstream,
	logger *zap.Logger,
) VerificationService {
	return &verificationService{cfg: cfg, repo: repo, clusters: clusters, upstream: upstream, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ResolveRejections
// ═══════════════════════════════════════════════════════════

// ResolveRejections maps category → sub_cluster pairs onto cluster ids by exact
// (main_cluster, sub_cluster) match. Empty labels mean "no defect" and are dropped.
// Known categories come back in checklist order, unknown ones sorted by name.
func ResolveRejections(rejections map[string]string, clusters []model.Cluster, strict bool) []dto.ClusterResolution {
	index := make(map[[2]string]uint, len(clusters))
	for _, c := range clusters {
		index[[2]string{c.MainCluster, c.SubCluster}] = c.ID
	}

	unresolved := dto.ResolutionUnresolvedIgnored
	if strict {
		unresolved = dto.ResolutionUnresolvedRejected
	}

	var out []dto.ClusterResolution
	handled := make(map[string]bool, len(rejections))
	for _, cat := range model.ClusterCategories {
		label, ok := rejections[cat.MainCluster]
		handled[cat.MainCluster] = true
		if !ok || label == "" {
			continue
		}
		res := dto.ClusterResolution{MainCluster: cat.MainCluster, SubCluster: label, Column: cat.Column, Outcome: unresolved}
		if id, found := index[[2]string{cat.MainCluster, label}]; found {
			clusterID := id
			res.ClusterID = &clusterID
			res.Outcome = dto.ResolutionResolved
		}
		out = append(out, res)
	}

	var unknown []string
	for name, label := range rejections {
		if !handled[name] && label != "" {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		out = append(out, dto.ClusterResolution{
			MainCluster: name,
			SubCluster:  rejections[name],
			Outcome:     unresolved,
		})
	}
	return out
}

func unresolvedOf(resolutions []dto.ClusterResolution) []dto.ClusterResolution {
	var out []dto.ClusterResolution
	for _, r := range resolutions {
		if r.Outcome != dto.ResolutionResolved {
			out = append(out, r)
		}
	}
	return out
}

// resolve loads the taxonomy and maps rejections, failing in strict mode.
func (s *verificationService) resolve(ctx context.Context, cutoffID uint, rejections map[string]string) ([]dto.ClusterResolution, error) {
	if len(rejections) == 0 {
		return []dto.ClusterResolution{}, nil
	}
	clusters, err := s.clusters.List(ctx)
	if err != nil {
		return nil, err
	}

	resolutions := ResolveRejections(rejections, clusters, s.cfg.StrictClusterMatch)
	if bad := unresolvedOf(resolutions); len(bad) > 0 {
		if s.cfg.StrictClusterMatch {
			return nil, &UnresolvedClustersError{Unresolved: bad}
		}
		for _, r := range bad {
			s.logger.Warn("cluster not found, category left empty",
				zap.Uint("cutoff_id", cutoffID),
				zap.String("main_cluster", r.MainCluster),
				zap.String("sub_cluster", r.SubCluster),
			)
		}
	}
	if resolutions == nil {
		resolutions = []dto.ClusterResolution{}
	}
	return resolutions, nil
}

func parseTanggal(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		// accept full timestamps from date pickers
		if t2, err2 := time.Parse(time.RFC3339, v); err2 == nil {
			d := time.Date(t2.Year(), t2.Month(), t2.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
		return nil, ErrLogInvalidDate
	}
	return &t, nil
}

// ═══════════════════════════════════════════════════════════
// InsertLog
// ═══════════════════════════════════════════════════════════

func (s *verificationService) InsertLog(ctx context.Context, req *dto.InsertLogRequest, callerRole string) (*dto.InsertLogResponse, error) {
	serial := strings.TrimSpace(req.SerialNumber)
	if req.CutoffID == 0 || serial == "" || req.UserID == 0 {
		return nil, ErrLogMissingFields
	}
	tanggal, err := parseTanggal(req.TanggalBAPP)
	if err != nil {
		return nil, err
	}

	if _, err := s.assignedCutoff(ctx, req.CutoffID, req.UserID, callerRole); err != nil {
		return nil, err
	}

	if existing, err := s.existingLog(ctx, req.CutoffID); err != nil || existing != nil {
		return existing, err
	}

	resolutions, err := s.resolve(ctx, req.CutoffID, req.Rejections)
	if err != nil {
		return nil, err
	}

	log := &model.VerificationLog{
		CutoffID:     req.CutoffID,
		SerialNumber: serial,
		UserID:       req.UserID,
		TanggalBAPP:  tanggal,
	}
	for _, r := range resolutions {
		if r.ClusterID != nil {
			log.SetClusterRef(r.Column, *r.ClusterID)
		}
	}
	log.DeriveStatus()

	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Log.Create(ctx, log); err != nil {
			return err
		}
		if log.Status == model.StatusRejected {
			// a rejected shipment may come back from Skylink and must be importable again
			return tx.Cutoff.ClearResiLock(ctx, log.CutoffID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			// lost the race against a concurrent submission; the first writer wins
			existing, lookupErr := s.existingLog(ctx, req.CutoffID)
			if lookupErr == nil && existing != nil {
				return existing, nil
			}
		}
		if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			s.logger.Error("insert log failed", zap.Uint("cutoff_id", req.CutoffID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("verification logged",
		zap.Uint("log_id", log.ID),
		zap.Uint("cutoff_id", log.CutoffID),
		zap.Uint("user_id", log.UserID),
		zap.String("status", log.Status),
	)

	return &dto.InsertLogResponse{
		LogID:       log.ID,
		Status:      log.Status,
		Created:     true,
		Resolutions: resolutions,
	}, nil
}

// assignedCutoff loads the cutoff item and checks it belongs to userID. Admins may
// act on any item.
func (s *verificationService) assignedCutoff(ctx context.Context, cutoffID, userID uint, callerRole string) (*model.Cutoff, error) {
	cutoff, err := s.repo.Cutoff.GetByID(ctx, cutoffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLogCutoffNotFound
		}
		s.logger.Error("load cutoff failed", zap.Uint("cutoff_id", cutoffID), zap.Error(err))
		return nil, err
	}
	if callerRole != model.RoleAdmin && cutoff.UserID != userID {
		s.logger.Warn("decision on another reviewer's item refused",
			zap.Uint("cutoff_id", cutoffID), zap.Uint("user_id", userID), zap.Uint("assigned_to", cutoff.UserID))
		return nil, ErrLogNotAssigned
	}
	return cutoff, nil
}

// existingLog returns the stored decision for cutoffID, or nil when there is none.
func (s *verificationService) existingLog(ctx context.Context, cutoffID uint) (*dto.InsertLogResponse, error) {
	existing, err := s.repo.Log.GetByCutoffID(ctx, cutoffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("load existing log failed", zap.Uint("cutoff_id", cutoffID), zap.Error(err))
		return nil, err
	}
	return &dto.InsertLogResponse{
		LogID:       existing.ID,
		Status:      existing.Status,
		Created:     false,
		Resolutions: []dto.ClusterResolution{},
	}, nil
}

// ═══════════════════════════════════════════════════════════
// Verify
// ═══════════════════════════════════════════════════════════
//
// The upstream update is not rolled back when logging fails; the caller gets
// Logged=false and retries the log insert on its own.

func (s *verificationService) Verify(ctx context.Context, req *dto.VerifyRequest, userID uint, callerRole string) (*dto.VerifyResponse, error) {
	serial := strings.TrimSpace(req.SerialNumber)
	if req.CutoffID == 0 || serial == "" || userID == 0 {
		return nil, ErrLogMissingFields
	}
	if req.AuthToken == "" || req.CSRFToken == "" {
		return nil, ErrVerifyMissingTokens
	}
	if _, err := parseTanggal(req.TanggalBAPP); err != nil {
		return nil, err
	}

	cutoff, err := s.assignedCutoff(ctx, req.CutoffID, userID, callerRole)
	if err != nil {
		return nil, err
	}

	if existing, err := s.existingLog(ctx, req.CutoffID); err != nil {
		return nil, err
	} else if existing != nil {
		return &dto.VerifyResponse{Logged: true, Status: existing.Status, Log: existing}, nil
	}
	shipmentID := req.ShipmentID
	if shipmentID == 0 {
		shipmentID = cutoff.ShipmentID
	}
	if shipmentID == 0 {
		return nil, ErrVerifyMissingShipment
	}

	resolutions, err := s.resolve(ctx, req.CutoffID, req.Rejections)
	if err != nil {
		return nil, err
	}
	status := model.StatusVerified
	for _, r := range resolutions {
		if r.Outcome == dto.ResolutionResolved {
			status = model.StatusRejected
			break
		}
	}

	update := skylink.StatusUpdate{Status: status}
	if status == model.StatusRejected {
		update.ClientRejectReason = req.ClientRejectReason
		update.EvidenceIDs = req.EvidenceIDs
	}
	if _, err := s.upstream.UpdateShipmentStatus(ctx, req.AuthToken, req.CSRFToken, shipmentID, update); err != nil {
		s.logger.Warn("upstream status update failed",
			zap.Uint("shipment_id", shipmentID), zap.String("status", status), zap.Error(err))
		return nil, err
	}

	resp := &dto.VerifyResponse{UpstreamUpdated: true, Status: status}

	logCtx, cancel := context.WithTimeout(ctx, LogTimeout(s.cfg))
	defer cancel()
	logged, err := s.InsertLog(logCtx, &dto.InsertLogRequest{
		CutoffID:     req.CutoffID,
		SerialNumber: serial,
		UserID:       userID,
		Rejections:   req.Rejections,
		TanggalBAPP:  req.TanggalBAPP,
	}, callerRole)
	if err != nil {
		s.logger.Error("failed to log after upstream update",
			zap.Uint("cutoff_id", req.CutoffID), zap.Uint("shipment_id", shipmentID), zap.Error(err))
		resp.LogError = err.Error()
		return resp, nil
	}

	resp.Logged = true
	resp.Log = logged
	return resp, nil
}

// LogTimeout is the bound applied to a single log insert.
func LogTimeout(cfg *config.VerificationConfig) time.Duration {
	if cfg.LogInsertTimeout > 0 {
		return cfg.LogInsertTimeout
	}
	return 3 * time.Second
}
