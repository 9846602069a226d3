package auth_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/flashdeck/internal/account"
	"github.com/dmitrymomot/flashdeck/internal/auth"
	"github.com/dmitrymomot/flashdeck/pkg/logger"
	"github.com/dmitrymomot/flashdeck/pkg/totp"
)

func newTestFlow(t *testing.T) (*auth.Flow, *account.Service, *account.MemoryStore) {
	t.Helper()

	store := account.NewMemoryStore()
	svc := account.NewService(store, account.WithBcryptCost(bcrypt.MinCost))
	log := logger.New(logger.WithDevelopment("flashdeck-test"))

	return auth.NewFlow(svc, store, "Flashdeck", log), svc, store
}

func registerAccount(t *testing.T, svc *account.Service) *account.Account {
	t.Helper()

	acc, err := svc.Register(context.Background(), account.RegisterParams{
		Username: "alice",
		Password: "s3cret",
	})
	require.NoError(t, err)
	return acc
}

func TestFlow_Login(t *testing.T) {
	t.Parallel()

	flow, svc, _ := newTestFlow(t)
	ctx := context.Background()
	acc := registerAccount(t, svc)

	result, err := flow.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, result.Account.ID)
	assert.True(t, result.NeedsEnrollment, "fresh accounts must enroll before a challenge")

	_, err = flow.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = flow.Login(ctx, "nobody", "s3cret")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestFlow_LoginAfterEnrollment(t *testing.T) {
	t.Parallel()

	flow, svc, _ := newTestFlow(t)
	ctx := context.Background()
	acc := registerAccount(t, svc)

	_, err := flow.EnsureEnrollment(ctx, acc.ID)
	require.NoError(t, err)

	result, err := flow.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.False(t, result.NeedsEnrollment, "enrolled accounts go straight to the challenge")
}

func TestFlow_EnsureEnrollment(t *testing.T) {
	t.Parallel()

	flow, svc, store := newTestFlow(t)
	ctx := context.Background()
	acc := registerAccount(t, svc)

	enrollment, err := flow.EnsureEnrollment(ctx, acc.ID)
	require.NoError(t, err)
	assert.Regexp(t, totp.SecretKeyRegex, enrollment.Secret)
	assert.Contains(t, enrollment.URI, "otpauth://totp/Flashdeck:alice?")
	assert.Contains(t, enrollment.URI, "secret="+enrollment.Secret)
	assert.True(t, strings.HasPrefix(enrollment.QRCode, "data:image/png;base64,"))

	stored, err := store.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	require.True(t, stored.HasMFA())
	assert.Equal(t, enrollment.Secret, *stored.MFASecret)

	// Repeated calls return the same secret.
	again, err := flow.EnsureEnrollment(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.Secret, again.Secret)
}

func TestFlow_EnsureEnrollmentConcurrent(t *testing.T) {
	t.Parallel()

	flow, svc, _ := newTestFlow(t)
	ctx := context.Background()
	acc := registerAccount(t, svc)

	const workers = 8
	secrets := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			enrollment, err := flow.EnsureEnrollment(ctx, acc.ID)
			if err != nil {
				errs[i] = err
				return
			}
			secrets[i] = enrollment.Secret
		}()
	}
	wg.Wait()

	// Every concurrent enrollment must see the single stored secret.
	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, secrets[0], secrets[i])
	}
}

func TestFlow_VerifyCode(t *testing.T) {
	t.Parallel()

	flow, svc, _ := newTestFlow(t)
	ctx := context.Background()
	acc := registerAccount(t, svc)

	enrollment, err := flow.EnsureEnrollment(ctx, acc.ID)
	require.NoError(t, err)

	code, err := totp.Code(enrollment.Secret)
	require.NoError(t, err)

	verified, err := flow.VerifyCode(ctx, acc.ID, code)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, verified.ID)

	_, err = flow.VerifyCode(ctx, acc.ID, "000000")
	require.ErrorIs(t, err, auth.ErrInvalidCode)

	_, err = flow.VerifyCode(ctx, acc.ID, "not-a-code")
	require.ErrorIs(t, err, auth.ErrInvalidCode)
}

func TestFlow_VerifyCodeNotEnrolled(t *testing.T) {
	t.Parallel()

	flow, svc, _ := newTestFlow(t)
	ctx := context.Background()
	acc := registerAccount(t, svc)

	_, err := flow.VerifyCode(ctx, acc.ID, "123456")
	require.ErrorIs(t, err, auth.ErrNotEnrolled)
}

func TestFlow_VerifyCodeUnknownAccount(t *testing.T) {
	t.Parallel()

	flow, _, _ := newTestFlow(t)

	_, err := flow.VerifyCode(context.Background(), uuid.New(), "123456")
	require.ErrorIs(t, err, account.ErrNotFound)
}
