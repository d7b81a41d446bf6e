package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/undarez/camper-splatchs-sub001/internal/dto"
	"github.com/undarez/camper-splatchs-sub001/internal/service"
	"github.com/undarez/camper-splatchs-sub001/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler export module HTTP handler
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportStations downloads the filtered station list as a spreadsheet
// GET /api/v1/admin/export/stations?type=&city=&status=
func (h *ExportHandler) ExportStations(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.StationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ExportStations(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoStations):
		response.NotFound(c, 15001, "no station matches the export filter")
	case errors.Is(err, service.ErrAdminRequired):
		response.Forbidden(c, 10003, "administrator privilege required")
	default:
		respondCategory(c, err)
	}
}
