package dto

// ── auth ──

// LoginRequest username may be a full email or a bare local username.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned next to the session cookies.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	CSRFToken   string       `json:"csrf_token,omitempty"`
	ExpiresIn   int          `json:"expires_in"` // seconds
	Source      string       `json:"source"`
	User        UserResponse `json:"user"`
}

// MeResponse GET /api/auth/me.
type MeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Source      string `json:"source"`
	LocalUserID uint   `json:"local_user_id"`
	LocalRole   string `json:"local_role"`
}

// ── users ──

// UserResponse local user row.
type UserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
