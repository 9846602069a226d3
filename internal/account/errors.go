package account

import "errors"

var (
	// ErrNotFound indicates no account matched the lookup.
	ErrNotFound = errors.New("account.not_found")

	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("account.username_taken")

	// ErrInvalidCredentials is returned for both unknown usernames and wrong
	// passwords so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("account.invalid_credentials")

	// ErrInvalidInput indicates a malformed registration payload.
	ErrInvalidInput = errors.New("account.invalid_input")
)
