package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickgram/auth-service/internal/core/domain"
)

func renderError(t *testing.T, log zerolog.Logger, err error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(log)(err, c)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHTTPErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", fmt.Errorf("%w: email is required", domain.ErrValidation), http.StatusBadRequest, "validation error: email is required"},
		{"wrong password", fmt.Errorf("login: %w", domain.ErrInvalidCredentials), http.StatusUnauthorized, msgInvalidCredentials},
		{"unknown user", domain.ErrUserNotFound, http.StatusUnauthorized, msgInvalidCredentials},
		{"duplicate", domain.ErrUserExists, http.StatusConflict, msgUserExists},
		{"missing token", domain.ErrUnauthorized, http.StatusUnauthorized, msgInvalidToken},
		{"expired token", fmt.Errorf("verify: %w", domain.ErrInvalidToken), http.StatusUnauthorized, msgInvalidToken},
		{"malformed token", domain.ErrMalformedToken, http.StatusUnauthorized, msgInvalidToken},
		{"revoked token", domain.ErrTokenRevoked, http.StatusUnauthorized, msgInvalidToken},
		{"rate limited", echo.NewHTTPError(http.StatusTooManyRequests, "too many requests"), http.StatusTooManyRequests, "too many requests"},
		{"not found", echo.ErrNotFound, http.StatusNotFound, "Not Found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := renderError(t, zerolog.Nop(), tc.err)
			assert.Equal(t, tc.code, code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.msg, body["message"])
		})
	}
}

func TestHTTPErrorHandler_InternalErrorsAreNotLeaked(t *testing.T) {
	var logs bytes.Buffer
	log := zerolog.New(&logs)

	code, body := renderError(t, log, errors.New("pq: connection refused to 10.0.0.5"))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, msgInternal, body["message"])
	assert.NotContains(t, fmt.Sprint(body), "10.0.0.5")
	assert.Contains(t, logs.String(), "connection refused")
}

func TestHTTPErrorHandler_Echo5xxIsGeneric(t *testing.T) {
	code, body := renderError(t, zerolog.Nop(), echo.NewHTTPError(http.StatusBadGateway, "upstream 10.0.0.9 down"))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, msgInternal, body["message"])
}

func TestHTTPErrorHandler_CommittedResponseIsLeftAlone(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, c.String(http.StatusOK, "done"))

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrUserExists, c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}
