package handlers

import (
	"errors"
	"net/http"

	"servicehub/apperrors"
	"servicehub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var kindStatus = map[apperrors.Kind]int{
	apperrors.KindValidation:         http.StatusBadRequest,
	apperrors.KindInvalidCoordinates: http.StatusBadRequest,
	apperrors.KindNotFound:           http.StatusNotFound,
	apperrors.KindForbidden:          http.StatusForbidden,
	apperrors.KindInvalidTransition:  http.StatusConflict,
	apperrors.KindConflict:           http.StatusConflict,
}

var kindMessage = map[apperrors.Kind]string{
	apperrors.KindValidation:         "Invalid request",
	apperrors.KindInvalidCoordinates: "Invalid coordinates",
	apperrors.KindNotFound:           "Not found",
	apperrors.KindForbidden:          "Forbidden",
	apperrors.KindInvalidTransition:  "Invalid status transition",
	apperrors.KindConflict:           "Concurrent update, retry the request",
}

// respondError maps a core error onto the HTTP error envelope. Untyped errors are 500s.
// NoMatch and NoAvailableServiceman are outcomes, not failures; handlers that can
// produce them render their own 200 body before falling back here.
func respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		var ae *apperrors.Error
		if errors.As(err, &ae) {
			c.JSON(http.StatusOK, gin.H{"assigned": false, "reason": string(kind), "details": ae.Message})
			return
		}
		getLogger(c).Error("Unhandled error", zap.String("path", c.Request.URL.Path), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred. Please try again later.")
		return
	}
	utils.WriteError(c, status, utils.ErrorResponse{
		Message:   kindMessage[kind],
		Kind:      string(kind),
		Details:   err.Error(),
		Retryable: apperrors.Retryable(err),
	})
}

// isUnassigned reports whether err says nobody could take the booking.
func isUnassigned(err error) bool {
	return apperrors.Is(err, apperrors.KindNoMatch) || apperrors.Is(err, apperrors.KindNoAvailableServiceman)
}
