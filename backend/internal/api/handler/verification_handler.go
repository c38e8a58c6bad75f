package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/dto"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/service"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/response"
)

// VerificationHandler reviewer decision endpoints.
type VerificationHandler struct {
	verifySvc  service.VerificationService
	logTimeout time.Duration
}

// NewVerificationHandler creates a VerificationHandler. logTimeout bounds a single log insert.
func NewVerificationHandler(verifySvc service.VerificationService, logTimeout time.Duration) *VerificationHandler {
	return &VerificationHandler{verifySvc: verifySvc, logTimeout: logTimeout}
}

// InsertLog records the decision for a cutoff item.
// POST /api/insert-log
func (h *VerificationHandler) InsertLog(c *gin.Context) {
	var req dto.InsertLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	self, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if req.UserID == 0 {
		req.UserID = self
	} else if req.UserID != self && !IsAdmin(c) {
		response.Forbidden(c, 10003, "cannot log on behalf of another user")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.logTimeout)
	defer cancel()

	result, err := h.verifySvc.InsertLog(ctx, &req, c.GetString("role"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	if result.Created {
		response.Created(c, result)
		return
	}
	response.OK(c, result)
}

// Verify pushes the decision to Skylink and logs it.
// POST /api/verify
func (h *VerificationHandler) Verify(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	req.AuthToken, req.CSRFToken = upstreamTokens(c, req.AuthToken, req.CSRFToken)

	result, err := h.verifySvc.Verify(c.Request.Context(), &req, userID, c.GetString("role"))
	if err != nil {
		if handleUpstreamError(c, err) {
			return
		}
		h.handleError(c, err)
		return
	}
	if result.UpstreamUpdated && !result.Logged {
		response.Accepted(c, 13008, "status updated but failed to log, retry", result)
		return
	}
	response.OK(c, result)
}

func (h *VerificationHandler) handleError(c *gin.Context, err error) {
	var unresolved *service.UnresolvedClustersError
	switch {
	case errors.As(err, &unresolved):
		response.ErrorWithData(c, http.StatusBadRequest, 13004, "rejections reference unknown clusters", unresolved.Unresolved)
	case errors.Is(err, service.ErrLogMissingFields):
		response.BadRequest(c, 13001, err.Error())
	case errors.Is(err, service.ErrLogInvalidDate):
		response.BadRequest(c, 13002, err.Error())
	case errors.Is(err, service.ErrLogCutoffNotFound):
		response.NotFound(c, 13003, err.Error())
	case errors.Is(err, service.ErrLogNotAssigned):
		response.Forbidden(c, 13009, err.Error())
	case errors.Is(err, service.ErrVerifyMissingTokens):
		response.Unauthorized(c, 13006, err.Error())
	case errors.Is(err, service.ErrVerifyMissingShipment):
		response.BadRequest(c, 13007, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		response.Error(c, http.StatusGatewayTimeout, 13005, "failed to log, retry")
	default:
		response.InternalError(c)
	}
}
