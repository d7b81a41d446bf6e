package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/undarez/camper-splatchs-sub001/internal/dto"
	"github.com/undarez/camper-splatchs-sub001/internal/service"
	"github.com/undarez/camper-splatchs-sub001/pkg/response"
)

// AdminHandler station moderation HTTP handler
type AdminHandler struct {
	validationSvc service.ValidationService
}

// NewAdminHandler creates an AdminHandler
func NewAdminHandler(validationSvc service.ValidationService) *AdminHandler {
	return &AdminHandler{validationSvc: validationSvc}
}

// ListPending stations awaiting a decision, oldest first
// GET /api/v1/admin/stations/pending
func (h *AdminHandler) ListPending(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	items, total, err := h.validationSvc.ListPending(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// ValidateStation moves a station to ACTIVE or INACTIVE
// PUT /api/v1/admin/stations/:id/validate
func (h *AdminHandler) ValidateStation(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ValidateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	station, err := h.validationSvc.Validate(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	response.OK(c, station)
}

func (h *AdminHandler) handleValidationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAdminRequired):
		response.Forbidden(c, 10003, "administrator privilege required")
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, 13001, "status must be ACTIVE or INACTIVE")
	case errors.Is(err, service.ErrIllegalTransition):
		response.Conflict(c, 13002, "status transition not allowed")
	default:
		handleStationError(c, err)
	}
}
