package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quickgram/auth-service/internal/api/metrics"
	"github.com/quickgram/auth-service/internal/core/domain"
	"github.com/quickgram/auth-service/internal/core/ports"
)

// AuthService implements signup, login, logout, refresh and token
// authentication by composing the credential store, hasher and token service.
type AuthService struct {
	store   ports.CredentialStore
	hasher  ports.PasswordHasher
	tokens  ports.TokenService
	revoker ports.TokenRevoker // optional
	logger  zerolog.Logger

	// dummyHash is compared against on unknown emails so that login takes
	// the same time whether or not the account exists.
	dummyHash string
}

// NewAuthService wires the service. revoker may be nil.
func NewAuthService(
	store ports.CredentialStore,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	revoker ports.TokenRevoker,
	logger zerolog.Logger,
) (*AuthService, error) {
	dummy, err := hasher.Hash(context.Background(), "quickgram-timing-equaliser")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AuthService{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		revoker:   revoker,
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

// Signup creates an account and returns a token for it.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
	if isBlank(in.Email) || isBlank(in.Password) || isBlank(in.Username) {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: email, password and username are required", domain.ErrValidation)
	}

	// Fast path; the repository insert is the authoritative duplicate check.
	if _, err := s.store.FindByEmail(ctx, in.Email); err == nil {
		metrics.SignupsTotal.WithLabelValues("conflict").Inc()
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("signup: lookup: %w", err)
	}

	user, err := s.store.CreateUser(ctx, in.Email, in.Password, in.Username)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			metrics.SignupsTotal.WithLabelValues("conflict").Inc()
		case errors.Is(err, domain.ErrValidation):
			metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		default:
			metrics.SignupsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	token, claims, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("signup: %w", err)
	}

	metrics.SignupsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("signup").Inc()
	s.logger.Info().Str("user_id", user.ID).Msg("user signed up")

	return &ports.AuthResult{Token: token, Claims: claims, User: user}, nil
}

// Login verifies credentials. Unknown email and wrong password both
// return domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if isBlank(email) || isBlank(password) {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			if _, err := s.hasher.Verify(ctx, password, s.dummyHash); err != nil {
				metrics.LoginsTotal.WithLabelValues("error").Inc()
				return nil, fmt.Errorf("login: %w", err)
			}
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: lookup: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
	}

	token, claims, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("login").Inc()
	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")

	return &ports.AuthResult{Token: token, Claims: claims, User: user}, nil
}

// Logout revokes token when a revocation list is configured. Sessions are
// otherwise stateless, so there is nothing to invalidate.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if s.revoker == nil || isBlank(token) {
		return
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug().Str("reason", FailureReason(err)).Msg("logout with unusable token")
		return
	}
	if _, err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt); err != nil {
		s.logger.Warn().Err(err).Str("user_id", claims.UserID).Msg("failed to revoke token on logout")
		return
	}
	s.logger.Info().Str("user_id", claims.UserID).Msg("user logged out")
}

// Refresh exchanges a valid token for a new one with the same identity.
// With a revocation list the old token is revoked before the new one is
// issued; of two concurrent refreshes of one token only the first succeeds.
func (s *AuthService) Refresh(ctx context.Context, token string) (*ports.AuthResult, error) {
	old, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	if s.revoker != nil {
		first, err := s.revoker.Revoke(ctx, old.ID, old.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("refresh: rotate: %w", err)
		}
		if !first {
			metrics.TokenVerificationFailuresTotal.WithLabelValues("revoked").Inc()
			return nil, domain.ErrTokenRevoked
		}
	}

	fresh, claims, err := s.tokens.Refresh(token)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()
	return &ports.AuthResult{Token: fresh, Claims: claims}, nil
}

// Authenticate verifies token and, when enabled, checks the revocation list.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Claims, error) {
	if isBlank(token) {
		metrics.TokenVerificationFailuresTotal.WithLabelValues("missing").Inc()
		return nil, domain.ErrUnauthorized
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		reason := FailureReason(err)
		metrics.TokenVerificationFailuresTotal.WithLabelValues(reason).Inc()
		s.logger.Debug().Str("reason", reason).Msg("token rejected")
		return nil, err
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			metrics.TokenVerificationFailuresTotal.WithLabelValues("revoked").Inc()
			return nil, domain.ErrTokenRevoked
		}
	}
	return claims, nil
}

// Profile returns the account behind authenticated claims.
func (s *AuthService) Profile(ctx context.Context, claims *domain.Claims) (*domain.User, error) {
	user, err := s.store.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Token outlived its account (e.g. in-memory store restarted).
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("profile: %w", err)
	}
	if user.ID != claims.UserID {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
