package auth

import "time"

// User represents an account able to authenticate.
type User struct {
	ID           int64
	Name         string
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
