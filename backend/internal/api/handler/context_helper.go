package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/jwt"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/response"
)

// MustGetUserID reads the user id the auth middleware stored on the context.
// It writes a 401 and returns false when it is missing; callers return immediately.
func MustGetUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "unauthenticated")
		return 0, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		response.Unauthorized(c, 10002, "unauthenticated")
		return 0, false
	}
	return id, true
}

// MustGetClaims reads the session claims stored by the auth middleware.
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "unauthenticated")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "unauthenticated")
		return nil, false
	}
	return claims, true
}

// IsAdmin reports whether the caller has the admin role.
func IsAdmin(c *gin.Context) bool {
	return c.GetString("role") == model.RoleAdmin
}

// scopeUserID decides whose rows the caller may read. Admins get requested as is
// (0 means everyone); other users only ever get their own id.
func scopeUserID(c *gin.Context, requested uint) (uint, bool) {
	self, ok := MustGetUserID(c)
	if !ok {
		return 0, false
	}
	if IsAdmin(c) {
		return requested, true
	}
	if requested != 0 && requested != self {
		response.Forbidden(c, 10003, "cannot read another user's items")
		return 0, false
	}
	return self, true
}
