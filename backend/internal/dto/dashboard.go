package dto

// DashboardResponse GET /api/dashboard. TotalUsers and UserKPIs are admin only.
type DashboardResponse struct {
	TotalData           int64     `json:"total_data"`
	PendingVerification int64     `json:"pending_verification"`
	VerifikasiSelesai   int64     `json:"verifikasi_selesai"`
	VerifikasiDitolak   int64     `json:"verifikasi_ditolak"`
	TotalUsers          *int64    `json:"total_users,omitempty"`
	UserKPIs            []UserKPI `json:"user_kpis,omitempty"`
}

// UserKPI per-reviewer counters.
type UserKPI struct {
	ID                  uint   `json:"id"`
	Name                string `json:"name"`
	TotalData           int64  `json:"total_data"`
	PendingVerification int64  `json:"pending_verification"`
	VerifikasiSelesai   int64  `json:"verifikasi_selesai"`
	VerifikasiDitolak   int64  `json:"verifikasi_ditolak"`
}
