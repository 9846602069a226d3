package totp_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flashdeck/pkg/totp"
)

func TestGenerateSecretKey(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Regexp(t, totp.SecretKeyRegex, secret)

	other, err := totp.GenerateSecretKey()
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestEnrollmentURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  totp.URIParams
		want    string
		wantErr error
	}{
		{
			name: "basic URI",
			params: totp.URIParams{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "alice",
				Issuer:      "Flashdeck",
			},
			want: "otpauth://totp/Flashdeck:alice?algorithm=SHA1&digits=6&issuer=Flashdeck&period=30&secret=ABCDEFGHIJKLMNOP",
		},
		{
			name: "missing secret",
			params: totp.URIParams{
				AccountName: "alice",
				Issuer:      "Flashdeck",
			},
			wantErr: totp.ErrMissingSecret,
		},
		{
			name: "invalid secret",
			params: totp.URIParams{
				Secret:      "not-base32!",
				AccountName: "alice",
				Issuer:      "Flashdeck",
			},
			wantErr: totp.ErrInvalidSecret,
		},
		{
			name: "missing account name",
			params: totp.URIParams{
				Secret: "ABCDEFGHIJKLMNOP",
				Issuer: "Flashdeck",
			},
			wantErr: totp.ErrMissingAccountName,
		},
		{
			name: "missing issuer",
			params: totp.URIParams{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "alice",
			},
			wantErr: totp.ErrMissingIssuer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := totp.EnrollmentURI(tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// RFC 6238 Appendix B test vectors, truncated to 6 digits.
func TestValidateAtRFCVectors(t *testing.T) {
	t.Parallel()

	// Base32 of the ASCII seed "12345678901234567890".
	secret := "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

	cases := []struct {
		ts   int64
		code string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
		{2000000000, "279037"},
		{20000000000, "353130"},
	}

	for _, tc := range cases {
		ok, err := totp.ValidateAt(secret, tc.code, time.Unix(tc.ts, 0))
		require.NoError(t, err)
		assert.True(t, ok, "vector at t=%d", tc.ts)

		code, err := totp.CodeAt(secret, time.Unix(tc.ts, 0))
		require.NoError(t, err)
		assert.Equal(t, tc.code, code)
	}
}

func TestValidateAtRoundTrip(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)

	// Step-aligned base time so t and t+29s share a counter value.
	at := time.Unix(56666666*totp.Period, 0)

	code, err := totp.CodeAt(secret, at)
	require.NoError(t, err)

	ok, err := totp.ValidateAt(secret, code, at)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = totp.ValidateAt(secret, code, at.Add(29*time.Second))
	require.NoError(t, err)
	assert.True(t, ok, "same 30s step must accept the code")

	other, err := totp.GenerateSecretKey()
	require.NoError(t, err)
	ok, err = totp.ValidateAt(other, code, at)
	require.NoError(t, err)
	assert.False(t, ok, "code from a different secret must fail")
}

func TestValidateAtSkewWindow(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)

	at := time.Unix(56666666*totp.Period, 0)
	code, err := totp.CodeAt(secret, at)
	require.NoError(t, err)

	tests := []struct {
		name  string
		check time.Time
		want  bool
	}{
		{"previous step", at.Add(-totp.Period * time.Second), true},
		{"current step", at, true},
		{"next step", at.Add(totp.Period * time.Second), true},
		{"two steps ahead", at.Add(2 * totp.Period * time.Second), false},
		{"two steps behind", at.Add(-2 * totp.Period * time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := totp.ValidateAt(secret, code, tt.check)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestValidateAtRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secret  string
		code    string
		wantErr error
	}{
		{"invalid base32 secret", "not-base32!@#", "123456", totp.ErrInvalidSecret},
		{"empty secret", "", "123456", totp.ErrInvalidSecret},
		{"short code", "ABCDEFGHIJKLMNOP", "12345", totp.ErrInvalidCode},
		{"non-numeric code", "ABCDEFGHIJKLMNOP", "12345a", totp.ErrInvalidCode},
		{"empty code", "ABCDEFGHIJKLMNOP", "", totp.ErrInvalidCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, err := totp.ValidateAt(tt.secret, tt.code, time.Now())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, ok)
		})
	}
}
