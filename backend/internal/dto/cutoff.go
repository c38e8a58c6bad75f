package dto

import "time"

// ── distribution ──

// DistributeRequest POST /api/cutoff. Token falls back to the caller's skylink_token cookie.
type DistributeRequest struct {
	UserIDs []uint `json:"userIds"`
	Token   string `json:"token"`
}

// DistributionSummary describes one distribution run.
type DistributionSummary struct {
	TotalNewItems int                `json:"totalNewItems"`
	Users         int                `json:"users"`
	BasePerUser   int                `json:"basePerUser"`
	Remainder     int                `json:"remainder"`
	Skipped       int                `json:"skipped"`
	FirstUserGot  int                `json:"firstUserGot"`
	SourceTotal   int                `json:"sourceTotal"`
	Assignments   []AssignmentResult `json:"assignments"`
}

// AssignmentResult items given to one user.
type AssignmentResult struct {
	UserID uint `json:"user_id"`
	Count  int  `json:"count"`
}

// DistributeResponse POST /api/cutoff result.
type DistributeResponse struct {
	Message      string               `json:"message"`
	Distribution *DistributionSummary `json:"distribution,omitempty"`
}

// ── listing ──

// CutoffListRequest GET /api/cutoff.
type CutoffListRequest struct {
	UserID uint `form:"user_id"`
	PaginationRequest
}

// CutoffItemResponse one cutoff row with its verification state.
type CutoffItemResponse struct {
	ID                 uint       `json:"id"`
	ShipmentID         uint       `json:"shipment_id"`
	SchoolName         string     `json:"school_name"`
	NPSN               string     `json:"npsn"`
	ResiNumber         string     `json:"resi_number"`
	BappNumber         string     `json:"bapp_number"`
	StarlinkID         string     `json:"starlink_id"`
	ReceivedDate       *time.Time `json:"received_date,omitempty"`
	UserID             uint       `json:"user_id"`
	CreatedAt          time.Time  `json:"created_at"`
	VerificationStatus string     `json:"verification_status"`
	LogID              *uint      `json:"log_id,omitempty"`
}

// QueueRequest GET /api/fetch-bapp-list.
type QueueRequest struct {
	UserID uint `form:"user_id"`
}

// CutoffHistoryResponse one audit row of a distribution run.
type CutoffHistoryResponse struct {
	ID            uint               `json:"id"`
	TotalNewItems int                `json:"total_new_items"`
	UsersCount    int                `json:"users_count"`
	BasePerUser   int                `json:"base_per_user"`
	Remainder     int                `json:"remainder"`
	SkippedCount  int                `json:"skipped_count"`
	ExecutedBy    *uint              `json:"executed_by,omitempty"`
	SourceTotal   int                `json:"source_total"`
	Assignments   []AssignmentResult `json:"assignments"`
	CreatedAt     time.Time          `json:"created_at"`
}
