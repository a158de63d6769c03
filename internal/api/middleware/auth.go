package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quickgram/auth-service/internal/core/domain"
)

// ClaimsKey is the echo.Context key holding *domain.Claims after Auth runs.
const ClaimsKey = "claims"

// Authenticator verifies a raw bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Claims, error)
}

// Auth rejects requests without a valid bearer token and injects the
// verified claims into the context. Errors are left to the HTTP error
// handler so every 401 carries the same envelope.
func Auth(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return domain.ErrUnauthorized
			}

			claims, err := authn.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// ClaimsFromContext returns the claims injected by Auth, if any.
func ClaimsFromContext(c echo.Context) (*domain.Claims, bool) {
	claims, ok := c.Get(ClaimsKey).(*domain.Claims)
	return claims, ok && claims != nil
}
