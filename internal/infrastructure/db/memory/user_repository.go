// Package memory is an in-process UserRepository for development and tests.
// Records are lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/quickgram/auth-service/internal/core/domain"
)

type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byEmail: make(map[string]domain.User)}
}

// FindByEmail returns a copy of the stored record.
func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

// Insert stores user unless the email is taken. Check and write happen
// under one lock.
func (r *UserRepository) Insert(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return domain.ErrUserExists
	}
	r.byEmail[user.Email] = *user
	return nil
}

// Len reports the number of stored users.
func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byEmail)
}
