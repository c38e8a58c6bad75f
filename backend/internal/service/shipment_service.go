package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/config"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/dto"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/skylink"
)

// ── shipment proxy errors ──

var (
	ErrShipmentMissingID     = errors.New("shipment ID is required")
	ErrShipmentMissingStatus = errors.New("missing shipment_id or status")
	ErrShipmentBadStatus     = errors.New("status must be VERIFIED or REJECTED")
	ErrShipmentMissingTokens = errors.New("missing authentication tokens (auth_token, csrf_token)")
	ErrProxyMissingPath      = errors.New("missing path parameter")
)

const (
	previewJPEGQuality      = 85
	defaultPreviewMaxPixels = 40_000_000
)

// errPreviewTooLarge is returned by renderPreview for images above the pixel budget.
var errPreviewTooLarge = errors.New("image dimensions exceed preview budget")

// ShipmentService proxies shipment reads and writes to Skylink.
type ShipmentService interface {
	// FetchData loads the shipment and its evidences concurrently.
	FetchData(ctx context.Context, token string, id uint) (*dto.FetchDataResponse, error)
	UpdateStatus(ctx context.Context, req *dto.UpdateStatusRequest) (*dto.UpdateStatusResponse, error)
	// ProxyFile downloads an evidence file, optionally as a resized or rotated image preview.
	ProxyFile(ctx context.Context, req *dto.ProxyFileRequest) (*skylink.StaticFile, error)
}

type shipmentService struct {
	upstream  Upstream
	maxPixels int
	logger    *zap.Logger
}

// NewShipmentService creates a ShipmentService.
func NewShipmentService(cfg *config.SkylinkConfig, upstream Upstream, logger *zap.Logger) ShipmentService {
	maxPixels := cfg.PreviewMaxPixels
	if maxPixels <= 0 {
		maxPixels = defaultPreviewMaxPixels
	}
	return &shipmentService{upstream: upstream, maxPixels: maxPixels, logger: logger}
}

func (s *shipmentService) FetchData(ctx context.Context, token string, id uint) (*dto.FetchDataResponse, error) {
	if id == 0 {
		return nil, ErrShipmentMissingID
	}

	var resp dto.FetchDataResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := s.upstream.GetShipment(gctx, token, id)
		if err != nil {
			return err
		}
		resp.Shipment = data
		return nil
	})
	g.Go(func() error {
		data, err := s.upstream.ListEvidences(gctx, token, id)
		if err != nil {
			return err
		}
		resp.Evidences = data
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("fetch shipment data failed", zap.Uint("shipment_id", id), zap.Error(err))
		return nil, err
	}
	return &resp, nil
}

func (s *shipmentService) UpdateStatus(ctx context.Context, req *dto.UpdateStatusRequest) (*dto.UpdateStatusResponse, error) {
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if req.ShipmentID == 0 || status == "" {
		return nil, ErrShipmentMissingStatus
	}
	if !model.IsValidDecision(status) {
		return nil, ErrShipmentBadStatus
	}
	if req.AuthToken == "" || req.CSRFToken == "" {
		return nil, ErrShipmentMissingTokens
	}

	data, err := s.upstream.UpdateShipmentStatus(ctx, req.AuthToken, req.CSRFToken, req.ShipmentID, skylink.StatusUpdate{
		Status:             status,
		ClientRejectReason: req.ClientRejectReason,
		EvidenceIDs:        req.EvidenceIDs,
	})
	if err != nil {
		s.logger.Warn("skylink status update failed", zap.Uint("shipment_id", req.ShipmentID), zap.Error(err))
		return nil, err
	}
	return &dto.UpdateStatusResponse{Success: true, Data: json.RawMessage(data)}, nil
}

func (s *shipmentService) ProxyFile(ctx context.Context, req *dto.ProxyFileRequest) (*skylink.StaticFile, error) {
	if strings.TrimSpace(req.Path) == "" {
		return nil, ErrProxyMissingPath
	}

	file, err := s.upstream.FetchStatic(ctx, req.Path)
	if err != nil {
		return nil, err
	}

	if (req.Width <= 0 && req.Rotate == 0) || !previewable(file.ContentType) {
		return file, nil
	}

	preview, err := renderPreview(file, req.Width, req.Rotate, s.maxPixels)
	if err != nil {
		// serve the original rather than failing the viewer
		s.logger.Warn("evidence preview failed", zap.String("path", req.Path), zap.Error(err))
		return file, nil
	}
	return preview, nil
}

func previewable(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "image/jpeg") ||
		strings.HasPrefix(ct, "image/jpg") ||
		strings.HasPrefix(ct, "image/png") ||
		strings.HasPrefix(ct, "image/gif")
}

// renderPreview scales the image down to maxWidth and rotates it clockwise by rotate degrees.
// The header is checked first so images above maxPixels are never decoded.
func renderPreview(file *skylink.StaticFile, maxWidth, rotate, maxPixels int) (*skylink.StaticFile, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(file.Body))
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d", errPreviewTooLarge, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(file.Body), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}
	img = rotateClockwise(img, rotate)

	format, contentType := imaging.JPEG, "image/jpeg"
	if strings.HasPrefix(strings.ToLower(file.ContentType), "image/png") {
		format, contentType = imaging.PNG, "image/png"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(previewJPEGQuality)); err != nil {
		return nil, err
	}
	return &skylink.StaticFile{ContentType: contentType, Body: buf.Bytes()}, nil
}

// rotateClockwise maps clockwise degrees onto imaging's counter-clockwise helpers.
func rotateClockwise(img image.Image, degrees int) image.Image {
	switch ((degrees % 360) + 360) % 360 {
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	}
	return img
}
