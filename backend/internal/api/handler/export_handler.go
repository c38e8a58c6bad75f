package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/dto"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/service"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler report downloads.
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportLogs downloads the verification report (admin).
// GET /api/export/logs?user_id=
func (h *ExportHandler) ExportLogs(c *gin.Context) {
	var req dto.ExportLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	buf, filename, err := h.exportSvc.ExportLogs(c.Request.Context(), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExportNoData):
			response.NotFound(c, 15001, err.Error())
		case errors.Is(err, service.ErrExportGenerateFail):
			response.Error(c, http.StatusInternalServerError, 15002, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
