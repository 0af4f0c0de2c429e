// Package auth verifies credentials and issues session tokens.
package auth

import (
	"context"
	"strings"

	"github.com/mmynk/splitledger/internal/models"
)

// Authenticator turns credentials into users.
type Authenticator interface {
	// Register creates an account for email. Returns ErrEmailExists when the
	// address is taken.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user owning email if credential matches.
	// Ghost users never authenticate.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks a credential before it is stored.
	ValidateCredential(credential string) error
}

// NormalizeEmail lowercases and trims an address so lookups and invitations
// match regardless of how the user typed it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
