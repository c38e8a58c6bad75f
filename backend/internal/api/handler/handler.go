package handler

import (
	"github.com/One-Window-Operations-OwO/owo-internet/backend/config"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/service"
)

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Cutoff       *CutoffHandler
	Verification *VerificationHandler
	Cluster      *ClusterHandler
	Dashboard    *DashboardHandler
	Shipment     *ShipmentHandler
	Export       *ExportHandler
}

// NewHandler creates the Handler aggregate.
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth, &cfg.Auth.Cookie),
		User:         NewUserHandler(svc.User),
		Cutoff:       NewCutoffHandler(svc.Cutoff),
		Verification: NewVerificationHandler(svc.Verification, service.LogTimeout(&cfg.Verification)),
		Cluster:      NewClusterHandler(svc.Cluster),
		Dashboard:    NewDashboardHandler(svc.Dashboard),
		Shipment:     NewShipmentHandler(svc.Shipment),
		Export:       NewExportHandler(svc.Export),
	}
}
