package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/response"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/skylink"
)

// Cookies carrying the Skylink credentials of a session.
const (
	skylinkTokenCookie = "skylink_token"
	csrfTokenCookie    = "csrf_token"
)

// upstreamTokens returns the Skylink bearer and CSRF token, preferring the
// request body and falling back to the session cookies.
func upstreamTokens(c *gin.Context, authToken, csrfToken string) (string, string) {
	if authToken == "" {
		authToken, _ = c.Cookie(skylinkTokenCookie)
	}
	if csrfToken == "" {
		csrfToken, _ = c.Cookie(csrfTokenCookie)
	}
	return authToken, csrfToken
}

// handleUpstreamError writes the response for a failed Skylink call and reports
// whether err was one. Upstream rejections keep their status code and body.
func handleUpstreamError(c *gin.Context, err error) bool {
	if apiErr, ok := skylink.AsAPIError(err); ok {
		response.ErrorWithDetails(c, apiErr.StatusCode, 14000, "upstream request failed", apiErr.Body)
		return true
	}
	switch {
	case errors.Is(err, skylink.ErrUnavailable):
		response.ErrorWithDetails(c, http.StatusBadGateway, 14007, "skylink is unavailable", err.Error())
	case errors.Is(err, skylink.ErrBadPath):
		response.BadRequest(c, 14006, "invalid file path")
	case errors.Is(err, skylink.ErrFileTooLarge):
		response.Error(c, http.StatusBadGateway, 14009, "evidence file too large")
	case errors.Is(err, context.DeadlineExceeded):
		response.Error(c, http.StatusGatewayTimeout, 14008, "skylink did not answer in time")
	default:
		return false
	}
	return true
}
