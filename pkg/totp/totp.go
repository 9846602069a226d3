package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	Digits = 6  // Standard 6-digit codes
	Period = 30 // 30-second validity window (RFC 6238 standard)

	// Skew is the number of adjacent time steps accepted around the current
	// one. One step in each direction tolerates ordinary clock drift between
	// the server and the authenticator device.
	Skew = 1
)

// SecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding.
var SecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

var codeRegex = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, Digits))

// URIParams contains the parameters for enrollment URI generation.
type URIParams struct {
	Secret      string // Base32-encoded TOTP secret key (required)
	AccountName string // User identifier such as the username (required)
	Issuer      string // Service name displayed in authenticator apps (required)
}

// Validate ensures all required URI parameters are present and valid.
func (p URIParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !SecretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// GenerateSecretKey generates a new Base32-encoded shared secret.
func GenerateSecretKey() (string, error) {
	secret := make([]byte, 20) // 160-bit secret (RFC 4226 recommendation)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// EnrollmentURI creates a properly encoded otpauth:// URI for authenticator
// apps, following the Key Uri Format specification:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func EnrollmentURI(params URIParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", fmt.Sprintf("%d", Digits))
	query.Set("period", fmt.Sprintf("%d", Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// ValidateAt reports whether code is valid for the secret at the given time.
// Codes from the previous, current, and next time step are accepted.
func ValidateAt(secret, code string, at time.Time) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return false, ErrInvalidCode
	}

	counter := at.Unix() / int64(Period)
	for i := -Skew; i <= Skew; i++ {
		if fmt.Sprintf("%0*d", Digits, hotp(key, counter+int64(i))) == code {
			return true, nil
		}
	}

	return false, nil
}

// Validate reports whether code is valid for the secret at the current time.
func Validate(secret, code string) (bool, error) {
	return ValidateAt(secret, code, time.Now())
}

// CodeAt generates the code for the time step containing the given time.
func CodeAt(secret string, at time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", Digits, hotp(key, at.Unix()/int64(Period))), nil
}

// Code generates the code for the current time step.
func Code(secret string) (string, error) {
	return CodeAt(secret, time.Now())
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !SecretKeyRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

// hotp implements the RFC 4226 HMAC-based One-Time Password algorithm,
// converting a counter value into a numeric code using HMAC-SHA1.
func hotp(key []byte, counter int64) int {
	// Counter as big-endian 8-byte array (RFC 4226 requirement)
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter >>= 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes)
	hash := mac.Sum(nil)

	// Dynamic truncation (RFC 4226): last 4 bits select the offset
	offset := hash[len(hash)-1] & 0x0f
	code := (int(hash[offset]&0x7f) << 24) |
		(int(hash[offset+1]&0xff) << 16) |
		(int(hash[offset+2]&0xff) << 8) |
		int(hash[offset+3]&0xff)

	return code % int(math.Pow10(Digits))
}
