package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/undarez/camper-splatchs-sub001/pkg/errors"
	"github.com/undarez/camper-splatchs-sub001/pkg/response"
)

// respondCategory maps an error that no module handler recognised onto its
// pkg/errors category. Uncategorised errors are internal.
func respondCategory(c *gin.Context, err error) {
	switch pkgerrors.Category(err) {
	case pkgerrors.ErrUnauthenticated:
		response.Unauthorized(c, 10002, err.Error())
	case pkgerrors.ErrForbidden:
		response.Forbidden(c, 10003, err.Error())
	case pkgerrors.ErrNotFound:
		response.NotFound(c, 10006, err.Error())
	case pkgerrors.ErrInvalid:
		response.BadRequest(c, 10001, err.Error())
	case pkgerrors.ErrConflict:
		response.Conflict(c, 10007, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// bindError 400 for a request that failed binding; oversized bodies get 413
func bindError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "invalid parameters", err.Error())
}
