package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/quickgram/auth-service/internal/api/handler"
	"github.com/quickgram/auth-service/internal/core/domain"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgUserExists         = "User with this email already exists"
	msgInvalidToken       = "invalid token"
	msgInternal           = "internal server error"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"success": false, "message": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, handler.ErrorResponse{Success: false, Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUserNotFound):
		return http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, msgUserExists
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrMalformedToken),
		errors.Is(err, domain.ErrTokenRevoked):
		return http.StatusUnauthorized, msgInvalidToken
	}

	// Echo's own errors: bind failures, unknown routes, 429 from the limiter.
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		return he.Code, httpErrorMessage(he)
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, msgInternal
}

func httpErrorMessage(he *echo.HTTPError) string {
	msg := fmt.Sprintf("%v", he.Message)
	if strings.TrimSpace(msg) == "" {
		return http.StatusText(he.Code)
	}
	return msg
}
