package rest

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/sitepress/api"
	"github.com/dfryer1193/sitepress/blog/domain"
	"github.com/dfryer1193/sitepress/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// statusFor maps an error onto an HTTP status and the message shown to the caller.
// fallback is the message for failures whose details stay in the log.
func statusFor(err error, fallback string) (int, string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "Missing required fields"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Post not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "Post already exists or was changed by someone else"
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusInternalServerError, notConfiguredMessage(err)
	default:
		return http.StatusInternalServerError, fallback
	}
}

func notConfiguredMessage(err error) string {
	for unwrapped := err; unwrapped != nil; unwrapped = errors.Unwrap(unwrapped) {
		if errors.Unwrap(unwrapped) == domain.ErrNotConfigured {
			return unwrapped.Error()
		}
	}
	return err.Error()
}

func respondError(c *gin.Context, err error, fallback string) {
	status, message := statusFor(err, fallback)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Str("request_id", middleware.RequestID(c)).Msg(fallback)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, api.ErrorResponse{Error: message})
}
