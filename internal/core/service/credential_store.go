package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quickgram/auth-service/internal/core/domain"
	"github.com/quickgram/auth-service/internal/core/ports"
)

// CredentialStore implements ports.CredentialStore on top of any
// ports.UserRepository backend.
type CredentialStore struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	newID  func() string
	now    func() time.Time
}

func NewCredentialStore(repo ports.UserRepository, hasher ports.PasswordHasher) *CredentialStore {
	return &CredentialStore{
		repo:   repo,
		hasher: hasher,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// FindByEmail is a pure lookup; domain.ErrUserNotFound when absent.
func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// CreateUser hashes password and persists a new record. A duplicate email
// returns domain.ErrUserExists; the existing record is never replaced.
func (s *CredentialStore) CreateUser(ctx context.Context, email, password, username string) (*domain.User, error) {
	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           s.newID(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
