package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/undarez/camper-splatchs-sub001/internal/dto"
	"github.com/undarez/camper-splatchs-sub001/internal/service"
	"github.com/undarez/camper-splatchs-sub001/pkg/response"
)

// StationHandler station module HTTP handler
type StationHandler struct {
	stationSvc service.StationService
}

// NewStationHandler creates a StationHandler
func NewStationHandler(stationSvc service.StationService) *StationHandler {
	return &StationHandler{stationSvc: stationSvc}
}

// ListStations lists stations; anonymous callers only see ACTIVE ones
// GET /api/v1/stations
func (h *StationHandler) ListStations(c *gin.Context) {
	var req dto.StationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	items, total, err := h.stationSvc.List(c.Request.Context(), &req, GetActor(c))
	if err != nil {
		handleStationError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// GetStation station detail
// GET /api/v1/stations/:id
func (h *StationHandler) GetStation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "station id is required")
		return
	}

	station, err := h.stationSvc.GetByID(c.Request.Context(), id, GetActor(c))
	if err != nil {
		handleStationError(c, err)
		return
	}

	response.OK(c, station)
}

// CreateStation submits a station for review
// POST /api/v1/stations
func (h *StationHandler) CreateStation(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	station, err := h.stationSvc.Create(c.Request.Context(), &req, actor)
	if err != nil {
		handleStationError(c, err)
		return
	}

	response.Created(c, station)
}

// DeleteStation removes a station with its reviews
// DELETE /api/v1/stations/:id
func (h *StationHandler) DeleteStation(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "station id is required")
		return
	}

	if err := h.stationSvc.Delete(c.Request.Context(), id, actor); err != nil {
		handleStationError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleStationError maps station errors; shared by the review and admin handlers
func handleStationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStationNotFound):
		response.NotFound(c, 12001, "station not found")
	case errors.Is(err, service.ErrStationForbidden):
		response.Forbidden(c, 12002, "only the author or an administrator may do this")
	case errors.Is(err, service.ErrInvalidStationType):
		response.BadRequest(c, 12003, "station type must be WASH_STATION or PARKING")
	case errors.Is(err, service.ErrInvalidCoordinates):
		response.BadRequest(c, 12004, "latitude or longitude out of range")
	case errors.Is(err, service.ErrAuthorNotFound):
		response.NotFound(c, 12005, "author not found")
	default:
		respondCategory(c, err)
	}
}
