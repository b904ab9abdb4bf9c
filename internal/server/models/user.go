// Package models defines the server-side domain types persisted by the
// repositories and passed between services and transports.
package models

import "time"

// User is an account known to the identity provider. Email is unique and
// never changes after registration.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
