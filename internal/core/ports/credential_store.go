package ports

import (
	"context"

	"github.com/quickgram/auth-service/internal/core/domain"
)

// CredentialStore holds user identity and password-hash records.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, email, password, username string) (*domain.User, error)
}

// PasswordHasher performs one-way salted hashing.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. A non-nil error means
	// the comparison could not run and says nothing about the password.
	Verify(ctx context.Context, plaintext, hash string) (bool, error)
}
