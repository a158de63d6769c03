package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/quickgram/auth-service/internal/api/middleware"
	"github.com/quickgram/auth-service/internal/core/domain"
)

// ErrorResponse is the envelope rendered for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ctxClaims extracts the claims injected by the Auth middleware. A missing
// or empty identity means the route was wired without the middleware or the
// token carried no subject; both are treated as unauthenticated.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok || claims.UserID == "" || claims.Email == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
