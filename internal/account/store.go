package account

import (
	"context"

	"github.com/google/uuid"
)

// Store defines account persistence.
type Store interface {
	// Create inserts a new account. Returns ErrUsernameTaken if the
	// username is already registered.
	Create(ctx context.Context, acc *Account) error

	// FindByUsername looks up an account by exact username match.
	FindByUsername(ctx context.Context, username string) (*Account, error)

	// FindByID looks up an account by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// MFASecret returns the stored TOTP secret, or nil if the account has
	// not enrolled.
	MFASecret(ctx context.Context, id uuid.UUID) (*string, error)

	// SetMFASecretIfAbsent provisions the TOTP secret only if none is set,
	// and returns the secret now stored. When another writer won the race,
	// the returned secret is the winner's, not the argument.
	SetMFASecretIfAbsent(ctx context.Context, id uuid.UUID, secret string) (string, error)

	// Delete removes the account and, via cascading constraints, its
	// owned records.
	Delete(ctx context.Context, id uuid.UUID) error
}
