package domain

import "time"

// Claims are the identity fields carried by a session token.
type Claims struct {
	ID        string // jti, only consulted when revocation is enabled
	UserID    string
	Email     string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
