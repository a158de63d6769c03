package domain

import "time"

// User is a registered account. Email is the lookup key and is unique
// across the store; Username is display-only.
type User struct {
	ID           string    `json:"userId"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
