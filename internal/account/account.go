package account

import (
	"time"

	"github.com/google/uuid"
)

// Role controls access to administrative surfaces.
type Role string

const (
	RoleStandard      Role = "standard"
	RoleAdministrator Role = "administrator"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleStandard || r == RoleAdministrator
}

// Account is a registered user. MFASecret is nil until the account completes
// TOTP enrollment on first login; once set it never changes.
type Account struct {
	ID           uuid.UUID
	Username     string
	PasswordHash []byte
	FirstName    string
	LastName     string
	Email        string
	Role         Role
	MFASecret    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the account has the administrator role.
func (a *Account) IsAdmin() bool {
	return a != nil && a.Role == RoleAdministrator
}

// HasMFA reports whether the account has a provisioned TOTP secret.
func (a *Account) HasMFA() bool {
	return a != nil && a.MFASecret != nil && *a.MFASecret != ""
}
