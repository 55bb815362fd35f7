package handler

import (
	"errors"
	"net/http"

	"github.com/fixora/fixora-service/internal/errs"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrReportNotFound),
		errors.Is(err, errs.ErrFeedbackRequestNotFound),
		errors.Is(err, errs.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidRating),
		errors.Is(err, errs.ErrInvalidStatus),
		errors.Is(err, errs.ErrInvalidAssign),
		errors.Is(err, errs.ErrInvalidReport),
		errors.Is(err, errs.ErrEmptyImage),
		errors.Is(err, errs.ErrUnsupportedImageURI),
		errors.Is(err, errs.ErrBucketNotAllowed):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrProofRequired),
		errors.Is(err, errs.ErrReportNotResolved):
		return http.StatusConflict
	case errors.Is(err, errs.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errs.ErrImageFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// writeFailure renders the {success:false} shape used by the feedback workflow.
func writeFailure(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"success": false, "error": err.Error()})
}
