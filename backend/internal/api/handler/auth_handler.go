package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/config"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/dto"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/service"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/jwt"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/response"
)

// AuthHandler session endpoints.
type AuthHandler struct {
	authSvc service.AuthService
	cookie  *config.CookieConfig
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc service.AuthService, cookie *config.CookieConfig) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, cookie: cookie}
}

// Login authenticates and sets the session cookies.
// POST /api/auth
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "username and password are required")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, 11001, "invalid username or password")
		case errors.Is(err, service.ErrAuthUnavailable):
			response.Error(c, http.StatusServiceUnavailable, 11002, "authentication service unavailable")
		case errors.Is(err, context.DeadlineExceeded):
			response.Error(c, http.StatusGatewayTimeout, 11004, "authentication timed out")
		default:
			response.InternalError(c)
		}
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	h.setCookie(c, jwt.CookieName, result.Response.AccessToken, maxAge)
	if result.SkylinkToken != "" {
		h.setCookie(c, skylinkTokenCookie, result.SkylinkToken, maxAge)
	}
	if result.CSRFToken != "" {
		h.setCookie(c, csrfTokenCookie, result.CSRFToken, maxAge)
	}

	response.OK(c, result.Response)
}

// Logout revokes the session token and clears the cookies.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims); err != nil {
		// the cookies are cleared regardless; the token still expires on its own
		_ = c.Error(err)
	}

	for _, name := range []string{jwt.CookieName, skylinkTokenCookie, csrfTokenCookie} {
		h.setCookie(c, name, "", -1)
	}
	response.OK(c, nil)
}

// Me returns the current user.
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	me, err := h.authSvc.Me(c.Request.Context(), claims)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 11003, "user not found")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, me)
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(sameSite(h.cookie.SameSite))
	c.SetCookie(name, value, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func sameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
