// Package account holds the user model, its persistence, and password
// verification. The TOTP secret lives on the account row and is provisioned
// at most once via a compare-and-set update.
package account
