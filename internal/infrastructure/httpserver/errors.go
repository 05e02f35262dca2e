package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sima-oba/auth-service/internal/core/domain/apperror"
)

// handleError converts service errors into HTTP responses. Domain error
// kinds carry the status; anything unrecognized becomes a 500 without
// leaking internals.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"

	var httpErr *echo.HTTPError
	var appErr *apperror.Error

	switch {
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	case errors.As(err, &appErr):
		code = statusForKind(appErr.Kind)
		message = appErr.Message
	}

	if code >= http.StatusInternalServerError {
		s.logger.WithFields(map[string]interface{}{
			"method": c.Request().Method,
			"path":   c.Request().URL.Path,
			"status": code,
		}).WithError(err).Error("request failed")
	}

	if jsonErr := c.JSON(code, map[string]string{"message": message}); jsonErr != nil {
		s.logger.WithError(jsonErr).Error("failed to write error response")
	}
}

func statusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindAuthentication, apperror.KindAuthorization:
		return http.StatusUnauthorized
	case apperror.KindUserNotFound:
		return http.StatusNotFound
	case apperror.KindAlreadyActive, apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindUser:
		return http.StatusUnprocessableEntity
	case apperror.KindUnexpected:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
