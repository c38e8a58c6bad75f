package dto

// ── verification log ──

// InsertLogRequest POST /api/insert-log.
// Rejections maps a category (main_cluster) to the chosen defect (sub_cluster).
type InsertLogRequest struct {
	CutoffID     uint              `json:"cutoff_id"`
	SerialNumber string            `json:"serial_number"`
	UserID       uint              `json:"user_id"`
	Rejections   map[string]string `json:"rejections"`
	TanggalBAPP  string            `json:"tanggal_bapp"` // YYYY-MM-DD, optional
}

// ClusterResolution outcome values.
const (
	ResolutionResolved           = "resolved"
	ResolutionUnresolvedIgnored  = "unresolved_ignored"
	ResolutionUnresolvedRejected = "unresolved_rejected"
)

// ClusterResolution is how one submitted category was mapped.
type ClusterResolution struct {
	MainCluster string `json:"main_cluster"`
	SubCluster  string `json:"sub_cluster"`
	Column      string `json:"column,omitempty"`
	ClusterID   *uint  `json:"cluster_id,omitempty"`
	Outcome     string `json:"outcome"`
}

// InsertLogResponse result of a log insert.
type InsertLogResponse struct {
	LogID       uint                `json:"log_id"`
	Status      string              `json:"status"`
	Created     bool                `json:"created"`
	Resolutions []ClusterResolution `json:"resolutions"`
}

// VerifyRequest POST /api/verify: upstream status update followed by the local log.
type VerifyRequest struct {
	ShipmentID         uint              `json:"shipment_id"`
	CutoffID           uint              `json:"cutoff_id"`
	SerialNumber       string            `json:"serial_number"`
	Rejections         map[string]string `json:"rejections"`
	TanggalBAPP        string            `json:"tanggal_bapp"`
	ClientRejectReason string            `json:"client_reject_reason"`
	EvidenceIDs        []uint            `json:"evidence_ids"`
	AuthToken          string            `json:"auth_token"`
	CSRFToken          string            `json:"csrf_token"`
}

// VerifyResponse reports both halves of a verify call.
type VerifyResponse struct {
	UpstreamUpdated bool               `json:"upstream_updated"`
	Logged          bool               `json:"logged"`
	Status          string             `json:"status"`
	Log             *InsertLogResponse `json:"log,omitempty"`
	LogError        string             `json:"log_error,omitempty"`
}
