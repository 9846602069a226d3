package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/flashdeck/internal/account"
	"github.com/dmitrymomot/flashdeck/pkg/logger"
	"github.com/dmitrymomot/flashdeck/pkg/qrcode"
	"github.com/dmitrymomot/flashdeck/pkg/totp"
)

// qrSize is the pixel size of generated enrollment QR codes.
const qrSize = 256

// Flow drives the two-step login: password verification first, then TOTP
// enrollment or challenge.
type Flow struct {
	accounts *account.Service
	store    account.Store
	issuer   string
	log      *slog.Logger
}

// NewFlow creates the login flow service. The issuer names this deployment
// inside authenticator apps.
func NewFlow(accounts *account.Service, store account.Store, issuer string, log *slog.Logger) *Flow {
	return &Flow{
		accounts: accounts,
		store:    store,
		issuer:   issuer,
		log:      log,
	}
}

// LoginResult reports the outcome of the password step.
type LoginResult struct {
	Account *account.Account
	// NeedsEnrollment is true when the account has never provisioned a
	// TOTP secret and must enroll before it can be challenged.
	NeedsEnrollment bool
}

// Login verifies the password. It never authenticates on its own; callers
// move the session into the pending-MFA state and then either enroll or
// challenge depending on NeedsEnrollment.
func (f *Flow) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	acc, err := f.accounts.VerifyPassword(ctx, username, password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			f.log.InfoContext(ctx, "password verification failed", logger.Username(username))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return &LoginResult{
		Account:         acc,
		NeedsEnrollment: !acc.HasMFA(),
	}, nil
}

// Enrollment carries everything a user needs to add the account to an
// authenticator app.
type Enrollment struct {
	Secret string
	URI    string
	QRCode string // PNG data URI
}

// EnsureEnrollment provisions a TOTP secret if the account has none and
// returns the enrollment material. It is idempotent: repeated calls, even
// concurrent ones, always return the same stored secret.
func (f *Flow) EnsureEnrollment(ctx context.Context, accountID uuid.UUID) (*Enrollment, error) {
	acc, err := f.store.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var secret string
	if acc.HasMFA() {
		secret = *acc.MFASecret
	} else {
		candidate, err := totp.GenerateSecretKey()
		if err != nil {
			return nil, err
		}

		// Compare-and-set: on a lost race we get the winner's secret back,
		// so both logins render the same QR code.
		secret, err = f.store.SetMFASecretIfAbsent(ctx, accountID, candidate)
		if err != nil {
			return nil, err
		}
		if secret == candidate {
			f.log.InfoContext(ctx, "totp secret provisioned", logger.AccountID(accountID.String()))
		}
	}

	uri, err := totp.EnrollmentURI(totp.URIParams{
		Secret:      secret,
		AccountName: acc.Username,
		Issuer:      f.issuer,
	})
	if err != nil {
		return nil, err
	}

	qr, err := qrcode.DataURI(uri, qrSize)
	if err != nil {
		return nil, err
	}

	return &Enrollment{Secret: secret, URI: uri, QRCode: qr}, nil
}

// VerifyCode checks a TOTP code against the account's stored secret. A
// failed code leaves the account free to retry; state handling is the
// caller's concern.
func (f *Flow) VerifyCode(ctx context.Context, accountID uuid.UUID, code string) (*account.Account, error) {
	secret, err := f.store.MFASecret(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if secret == nil || *secret == "" {
		return nil, ErrNotEnrolled
	}

	ok, err := totp.Validate(*secret, code)
	if err != nil || !ok {
		f.log.InfoContext(ctx, "totp verification failed", logger.AccountID(accountID.String()))
		return nil, ErrInvalidCode
	}

	return f.store.FindByID(ctx, accountID)
}
