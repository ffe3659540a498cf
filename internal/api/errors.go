package api

import (
	"alcyxob/fitcoach/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// statusFor maps service sentinels to HTTP status codes. Unknown errors are
// internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidContentType),
		errors.Is(err, service.ErrInvalidObjectKey):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuthenticationFailed),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrClientNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrWorkoutNotFound),
		errors.Is(err, service.ErrWorkoutExerciseNotFound),
		errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, service.ErrWarmupNotFound),
		errors.Is(err, service.ErrLogNotFound),
		errors.Is(err, service.ErrUploadNotFound),
		errors.Is(err, service.ErrNoVideo):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrExerciseExists),
		errors.Is(err, service.ErrExerciseInUse),
		errors.Is(err, service.ErrUploadNotPending):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError aborts with the status matching err. Internal errors are logged
// and replaced by action so details never leak to the caller.
func respondError(c *gin.Context, err error, action string) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		log.Errorf("%s: %s", action, err)
		abortWithError(c, code, "Failed to "+action+".")
		return
	}
	abortWithError(c, code, err.Error())
}

// bindJSON binds and validates the request body, aborting with 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}
