package auth

import "errors"

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials is returned for a wrong email or password.
var ErrInvalidCredentials = errors.New("incorrect email or password")

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("user not found")

// User is an account owning a tenant's books. Every other record in the
// system is scoped to exactly one user.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
}
