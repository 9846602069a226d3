package account_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/flashdeck/internal/account"
)

func newTestService(t *testing.T) (*account.Service, *account.MemoryStore) {
	t.Helper()

	store := account.NewMemoryStore()
	// MinCost keeps bcrypt fast in tests.
	return account.NewService(store, account.WithBcryptCost(bcrypt.MinCost)), store
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	acc, err := svc.Register(ctx, account.RegisterParams{
		Username:  "alice",
		Password:  "s3cret",
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, acc.ID)
	assert.Equal(t, account.RoleStandard, acc.Role, "role defaults to standard")
	assert.Nil(t, acc.MFASecret, "secret is provisioned at first login, not registration")
	assert.NotEqual(t, []byte("s3cret"), acc.PasswordHash)
}

func TestService_RegisterValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		params  account.RegisterParams
		wantErr error
	}{
		{"empty username", account.RegisterParams{Password: "x"}, account.ErrInvalidInput},
		{"empty password", account.RegisterParams{Username: "bob"}, account.ErrInvalidInput},
		{"unknown role", account.RegisterParams{Username: "bob", Password: "x", Role: "root"}, account.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Register(ctx, tt.params)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_RegisterDuplicateUsername(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, account.RegisterParams{Username: "alice", Password: "x"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, account.RegisterParams{Username: "alice", Password: "y"})
	require.ErrorIs(t, err, account.ErrUsernameTaken)
}

func TestService_VerifyPassword(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, account.RegisterParams{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	acc, err := svc.VerifyPassword(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, acc.ID)

	// Wrong password and unknown username are indistinguishable.
	_, err = svc.VerifyPassword(ctx, "alice", "wrong")
	require.ErrorIs(t, err, account.ErrInvalidCredentials)

	_, err = svc.VerifyPassword(ctx, "nobody", "s3cret")
	require.ErrorIs(t, err, account.ErrInvalidCredentials)
}

func TestService_VerifyPasswordCaseSensitive(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, account.RegisterParams{Username: "Alice", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.VerifyPassword(ctx, "alice", "s3cret")
	require.ErrorIs(t, err, account.ErrInvalidCredentials)
}

func TestMemoryStore_SetMFASecretIfAbsent(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()

	acc, err := svc.Register(ctx, account.RegisterParams{Username: "alice", Password: "x"})
	require.NoError(t, err)

	// Unenrolled accounts report no secret rather than an error.
	secret, err := store.MFASecret(ctx, acc.ID)
	require.NoError(t, err)
	assert.Nil(t, secret)

	stored, err := store.SetMFASecretIfAbsent(ctx, acc.ID, "FIRSTSECRET")
	require.NoError(t, err)
	assert.Equal(t, "FIRSTSECRET", stored)

	// The second writer gets the first writer's secret back.
	stored, err = store.SetMFASecretIfAbsent(ctx, acc.ID, "SECONDSECRET")
	require.NoError(t, err)
	assert.Equal(t, "FIRSTSECRET", stored)

	secret, err = store.MFASecret(ctx, acc.ID)
	require.NoError(t, err)
	require.NotNil(t, secret)
	assert.Equal(t, "FIRSTSECRET", *secret)

	got, err := store.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	require.True(t, got.HasMFA())
	assert.Equal(t, "FIRSTSECRET", *got.MFASecret)
}

func TestService_Delete(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()

	acc, err := svc.Register(ctx, account.RegisterParams{Username: "alice", Password: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, acc.ID))

	_, err = store.FindByID(ctx, acc.ID)
	require.ErrorIs(t, err, account.ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, uuid.New()), account.ErrNotFound)
}
