package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/undarez/camper-splatchs-sub001/internal/dto"
	"github.com/undarez/camper-splatchs-sub001/internal/service"
	"github.com/undarez/camper-splatchs-sub001/pkg/response"
)

// ReviewHandler review module HTTP handler
type ReviewHandler struct {
	reviewSvc service.ReviewService
}

// NewReviewHandler creates a ReviewHandler
func NewReviewHandler(reviewSvc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

// SubmitReview POST /api/v1/stations/:id/reviews
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	review, err := h.reviewSvc.Submit(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.Created(c, review)
}

// ListReviews GET /api/v1/stations/:id/reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	var req dto.ReviewListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.reviewSvc.ListByStation(c.Request.Context(), c.Param("id"), &req, GetActor(c))
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ReviewHandler) handleReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReviewEmpty):
		response.BadRequest(c, 14001, "review content is empty")
	case errors.Is(err, service.ErrReviewTooLong):
		response.BadRequest(c, 14002, "review content is too long")
	case errors.Is(err, service.ErrReviewForbiddenWord):
		response.BadRequest(c, 14003, "review content contains a forbidden word")
	case errors.Is(err, service.ErrInvalidRating):
		response.BadRequest(c, 14004, "rating must be between 1 and 5")
	default:
		handleStationError(c, err)
	}
}
