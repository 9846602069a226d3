// Package auth implements the two-factor login flow: password verification
// followed by TOTP enrollment on first login or a TOTP challenge thereafter.
package auth
