package users

import "time"

// User represents a managed user account.
type User struct {
	ID        int64
	Name      string
	Username  string
	Email     string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser carries the fields needed to register an account.
type NewUser struct {
	Name     string
	Username string
	Email    string
	Password string
}

// UserUpdate carries mutable profile fields.
type UserUpdate struct {
	Name  string
	Email string
}
