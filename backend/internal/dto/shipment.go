package dto

import "encoding/json"

// FetchDataRequest GET /api/fetch-data.
type FetchDataRequest struct {
	ID uint `form:"id" binding:"required"`
}

// FetchDataResponse shipment document plus its evidences, both passed through from Skylink.
type FetchDataResponse struct {
	Shipment  json.RawMessage `json:"shipment"`
	Evidences json.RawMessage `json:"evidences"`
}

// UpdateStatusRequest POST /api/update-status. Tokens default to the session cookies.
type UpdateStatusRequest struct {
	ShipmentID         uint   `json:"shipment_id"`
	Status             string `json:"status"`
	ClientRejectReason string `json:"client_reject_reason"`
	EvidenceIDs        []uint `json:"evidence_ids"`
	AuthToken          string `json:"auth_token"`
	CSRFToken          string `json:"csrf_token"`
}

// UpdateStatusResponse upstream answer, when it had a body.
type UpdateStatusResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ProxyFileRequest GET /api/proxy-file.
type ProxyFileRequest struct {
	Path   string `form:"path"`
	Width  int    `form:"w"      binding:"omitempty,min=1,max=4096"`
	Rotate int    `form:"rotate" binding:"omitempty,oneof=-270 -180 -90 90 180 270"`
}

// ExportLogsRequest GET /api/export/logs.
type ExportLogsRequest struct {
	UserID uint `form:"user_id"`
}
