package model

// ── roles ──

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ── verification status ──

const (
	StatusVerified = "VERIFIED"
	StatusRejected = "REJECTED"
	// StatusPending is never stored; it marks cutoff items without a log row.
	StatusPending = "PENDING"
)

// IsValidDecision reports whether s is a status a reviewer can submit.
func IsValidDecision(s string) bool {
	return s == StatusVerified || s == StatusRejected
}
