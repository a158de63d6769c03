package domain

import "errors"

// Sentinel errors. Wrap with fmt.Errorf("...: %w", err) when adding context;
// the HTTP layer matches them with errors.Is.
var (
	// ErrValidation: malformed or missing input. HTTP 400.
	ErrValidation = errors.New("validation error")

	// ErrUserNotFound: no record for the email. Login surfaces it as 401
	// with the same message as ErrInvalidCredentials.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials: password did not verify. HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists: an account with this email already exists. HTTP 409.
	ErrUserExists = errors.New("user already exists")

	// ErrUnauthorized: request carried no usable bearer token. HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken: bad signature, wrong issuer or expired. HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMalformedToken: input is not a parseable token. HTTP 401.
	ErrMalformedToken = errors.New("malformed token")

	// ErrTokenRevoked: the token's jti is on the revocation list. HTTP 401.
	ErrTokenRevoked = errors.New("token revoked")
)
