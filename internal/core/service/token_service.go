package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/quickgram/auth-service/internal/core/domain"
)

const (
	// DefaultIssuer identifies tokens minted by this service.
	DefaultIssuer = "QuickGram"
	// DefaultTokenTTL is the validity window of a session token.
	DefaultTokenTTL = 24 * time.Hour
)

// Token failure reasons, used for logging and metrics.
var (
	errSignature = errors.New("signature mismatch")
	errIssuer    = errors.New("issuer mismatch")
	errExpired   = errors.New("token expired")
)

// sessionClaims is the wire form of domain.Claims.
type sessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// JWTService implements ports.TokenService with HS256.
type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customises a JWTService.
type TokenOption func(*JWTService)

// WithIssuer overrides DefaultIssuer.
func WithIssuer(issuer string) TokenOption {
	return func(s *JWTService) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithTTL overrides DefaultTokenTTL.
func WithTTL(ttl time.Duration) TokenOption {
	return func(s *JWTService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *JWTService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewJWTService(secret string, opts ...TokenOption) *JWTService {
	s := &JWTService{
		secret: []byte(secret),
		issuer: DefaultIssuer,
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue mints a signed token for the given identity.
func (s *JWTService) Issue(userID, email string) (string, *domain.Claims, error) {
	now := s.now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
		Email:  email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, toDomainClaims(&claims), nil
}

// Verify checks signature, issuer and expiry. Structural problems yield
// domain.ErrMalformedToken; everything else domain.ErrInvalidToken.
func (s *JWTService) Verify(token string) (*domain.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", domain.ErrMalformedToken)
	}

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}

	if parsed.Issuer != s.issuer {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, errIssuer)
	}
	if parsed.ExpiresAt == nil || parsed.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing iat or exp", domain.ErrMalformedToken)
	}
	if !s.now().Before(parsed.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, errExpired)
	}
	if parsed.UserID == "" || parsed.Email == "" {
		return nil, fmt.Errorf("%w: missing identity claims", domain.ErrMalformedToken)
	}

	return toDomainClaims(&parsed), nil
}

// Refresh verifies token and issues a new one for the same identity.
func (s *JWTService) Refresh(token string) (string, *domain.Claims, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return "", nil, err
	}
	return s.Issue(claims.UserID, claims.Email)
}

// FailureReason classifies a Verify error for metrics and logs.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, errExpired):
		return "expired"
	case errors.Is(err, errIssuer):
		return "issuer"
	case errors.Is(err, errSignature):
		return "signature"
	case errors.Is(err, domain.ErrMalformedToken):
		return "malformed"
	default:
		return "invalid"
	}
}

// mapJWTError translates jwt library errors to domain errors.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", domain.ErrInvalidToken, errSignature)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		// Wrong alg header.
		return fmt.Errorf("%w: %w", domain.ErrInvalidToken, errSignature)
	default:
		return fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
}

func toDomainClaims(c *sessionClaims) *domain.Claims {
	return &domain.Claims{
		ID:        c.ID,
		UserID:    c.UserID,
		Email:     c.Email,
		Issuer:    c.Issuer,
		IssuedAt:  c.IssuedAt.Time.UTC(),
		ExpiresAt: c.ExpiresAt.Time.UTC(),
	}
}
