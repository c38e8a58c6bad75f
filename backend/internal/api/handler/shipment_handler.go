package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/dto"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/service"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/response"
)

// ShipmentHandler Skylink proxy endpoints.
type ShipmentHandler struct {
	shipmentSvc service.ShipmentService
}

// NewShipmentHandler creates a ShipmentHandler.
func NewShipmentHandler(shipmentSvc service.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{shipmentSvc: shipmentSvc}
}

// FetchData returns a shipment with its evidences.
// GET /api/fetch-data?id=
func (h *ShipmentHandler) FetchData(c *gin.Context) {
	var req dto.FetchDataRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 14001, service.ErrShipmentMissingID.Error())
		return
	}
	token, _ := upstreamTokens(c, "", "")
	if token == "" {
		response.Unauthorized(c, 14004, "missing skylink session")
		return
	}

	resp, err := h.shipmentSvc.FetchData(c.Request.Context(), token, req.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, resp)
}

// UpdateStatus forwards a status change to Skylink.
// POST /api/update-status
func (h *ShipmentHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	req.AuthToken, req.CSRFToken = upstreamTokens(c, req.AuthToken, req.CSRFToken)

	resp, err := h.shipmentSvc.UpdateStatus(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, resp)
}

// ProxyFile streams an evidence file inline.
// GET /api/proxy-file?path=&w=&rotate=
func (h *ShipmentHandler) ProxyFile(c *gin.Context) {
	var req dto.ProxyFileRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	file, err := h.shipmentSvc.ProxyFile(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", "inline")
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, contentType, file.Body)
}

func (h *ShipmentHandler) handleError(c *gin.Context, err error) {
	if handleUpstreamError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrShipmentMissingID):
		response.BadRequest(c, 14001, err.Error())
	case errors.Is(err, service.ErrShipmentMissingStatus):
		response.BadRequest(c, 14002, err.Error())
	case errors.Is(err, service.ErrShipmentBadStatus):
		response.BadRequest(c, 14003, err.Error())
	case errors.Is(err, service.ErrShipmentMissingTokens):
		response.Unauthorized(c, 14004, err.Error())
	case errors.Is(err, service.ErrProxyMissingPath):
		response.BadRequest(c, 14005, err.Error())
	default:
		response.InternalError(c)
	}
}
