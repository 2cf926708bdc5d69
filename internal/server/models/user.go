package models

import "time"

// User is an account in the identity store. Every user owes a sign-off on
// every policy.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
