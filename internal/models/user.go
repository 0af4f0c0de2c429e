package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a person known to the system.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	// It never changes, even after the user leaves every group.
	ID string

	// Email is the user's login address (unique). Empty for ghost users.
	Email string

	// DisplayName is the name shown to other group members.
	DisplayName string

	// AvatarURL is an optional profile picture reference.
	AvatarURL string

	// IsGhost marks a user created without a login identity, usable as a
	// payer or participant until someone claims it.
	IsGhost bool

	// PasswordHash is the bcrypt hash of the user's password.
	// Empty for ghost users.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the user was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser creates a registered user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewGhostUser creates a user without a login identity.
func NewGhostUser(displayName string) *User {
	now := time.Now().Unix()
	return &User{
		ID:          uuid.New().String(),
		DisplayName: displayName,
		IsGhost:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
