package ports

import (
	"context"

	"github.com/quickgram/auth-service/internal/core/domain"
)

// UserRepository is the storage boundary behind the credential store.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Insert stores user only if no record with the same email exists.
	// The check and the write must be atomic; a duplicate yields
	// domain.ErrUserExists and leaves the existing record untouched.
	Insert(ctx context.Context, user *domain.User) error
}
