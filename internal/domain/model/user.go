package model

import (
	"errors"
	"strings"
	"time"
)

// User is an admin console account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Avatar       string
	CreatedAt    time.Time
	ModifiedAt   time.Time
}

var (
	ErrEmptyUsername   = errors.New("username cannot be empty")
	ErrUsernameTooLong = errors.New("username exceeds maximum length of 64 characters")
)

const maxUsernameLength = 64

// NewUser creates a user with an already hashed password.
func NewUser(username, passwordHash string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	now := time.Now()
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		ModifiedAt:   now,
	}, nil
}

// ValidateUsername checks that a username is non-empty and within length limits.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	if len(username) > maxUsernameLength {
		return ErrUsernameTooLong
	}
	return nil
}

// SetAvatar sets the avatar public path.
func (u *User) SetAvatar(avatar string) {
	u.Avatar = avatar
	u.ModifiedAt = time.Now()
}
