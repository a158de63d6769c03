package ports

import (
	"context"

	"github.com/quickgram/auth-service/internal/core/domain"
)

// SignupInput is the DTO passed from the transport layer to AuthService.Signup.
type SignupInput struct {
	Email    string
	Password string
	Username string
}

// AuthResult is returned by every operation that mints a token.
type AuthResult struct {
	Token  string
	Claims *domain.Claims
	User   *domain.User // nil on refresh
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Logout never fails; token may be empty.
	Logout(ctx context.Context, token string)
	Refresh(ctx context.Context, token string) (*AuthResult, error)
	// Authenticate verifies a bearer token for protected routes.
	Authenticate(ctx context.Context, token string) (*domain.Claims, error)
	Profile(ctx context.Context, claims *domain.Claims) (*domain.User, error)
}
