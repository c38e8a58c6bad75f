package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/dto"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/service"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/response"
)

// CutoffHandler distribution and review queue endpoints.
type CutoffHandler struct {
	cutoffSvc service.CutoffService
}

// NewCutoffHandler creates a CutoffHandler.
func NewCutoffHandler(cutoffSvc service.CutoffService) *CutoffHandler {
	return &CutoffHandler{cutoffSvc: cutoffSvc}
}

// Distribute imports pending shipments and splits them across users.
// POST /api/cutoff
func (h *CutoffHandler) Distribute(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	req.Token, _ = upstreamTokens(c, req.Token, "")

	result, err := h.cutoffSvc.Distribute(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, result)
}

// ListCutoff pages cutoff items with their verification status.
// GET /api/cutoff?user_id=&page=&limit=
func (h *CutoffHandler) ListCutoff(c *gin.Context) {
	var req dto.CutoffListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}
	userID, ok := scopeUserID(c, req.UserID)
	if !ok {
		return
	}

	list, total, err := h.cutoffSvc.List(c.Request.Context(), userID, &req.PaginationRequest)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetLimit())
}

// Queue lists the items a user still has to review.
// GET /api/fetch-bapp-list?user_id=
func (h *CutoffHandler) Queue(c *gin.Context) {
	var req dto.QueueRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}
	userID, ok := scopeUserID(c, req.UserID)
	if !ok {
		return
	}
	if userID == 0 {
		// an admin without user_id gets their own queue
		userID, _ = MustGetUserID(c)
	}

	list, err := h.cutoffSvc.Queue(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, list)
}

// History lists distribution runs (admin).
// GET /api/cutoff/history?page=&limit=
func (h *CutoffHandler) History(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	list, total, err := h.cutoffSvc.History(c.Request.Context(), &page)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, page.GetPage(), page.GetLimit())
}

func (h *CutoffHandler) handleError(c *gin.Context, err error) {
	if handleUpstreamError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrCutoffNoUsers):
		response.BadRequest(c, 12001, err.Error())
	case errors.Is(err, service.ErrCutoffNoToken):
		response.BadRequest(c, 12002, err.Error())
	case errors.Is(err, service.ErrCutoffUnknownUser):
		response.BadRequest(c, 12003, err.Error())
	case errors.Is(err, service.ErrCutoffConflict):
		response.Conflict(c, 12004, err.Error())
	default:
		response.InternalError(c)
	}
}
