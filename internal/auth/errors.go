package auth

import "errors"

var (
	// ErrInvalidCredentials covers unknown usernames and wrong passwords.
	ErrInvalidCredentials = errors.New("auth.invalid_credentials")

	// ErrInvalidCode indicates the submitted TOTP code did not verify.
	ErrInvalidCode = errors.New("auth.invalid_code")

	// ErrNotEnrolled indicates the account has no provisioned TOTP secret.
	ErrNotEnrolled = errors.New("auth.not_enrolled")
)
