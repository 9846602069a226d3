package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flashdeck/internal/session"
)

func newRedisStore(t *testing.T) (*session.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return session.NewRedisStore(client), srv
}

func TestRedisStore_CRUD(t *testing.T) {
	t.Parallel()

	store, _ := newRedisStore(t)
	ctx := context.Background()

	sess := session.NewSession("tok-1", time.Hour)
	sess.Pending = &session.PendingAuth{AccountID: uuid.New(), Username: "alice"}
	sess.State = session.StatePendingMFA
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.True(t, got.HasPendingAuth())
	assert.Equal(t, "alice", got.Pending.Username)

	got.State = session.StateAuthenticated
	got.Identity = &session.Identity{AccountID: sess.Pending.AccountID, Username: "alice", Role: "standard"}
	got.Pending = nil
	require.NoError(t, store.Update(ctx, got))

	updated, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, updated.IsAuthenticated())
	assert.Nil(t, updated.Pending)

	require.NoError(t, store.Delete(ctx, "tok-1"))
	_, err = store.Get(ctx, "tok-1")
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestRedisStore_TTL(t *testing.T) {
	t.Parallel()

	store, srv := newRedisStore(t)
	ctx := context.Background()

	sess := session.NewSession("tok-ttl", time.Minute)
	require.NoError(t, store.Create(ctx, sess))

	// Redis enforces expiry via key TTL.
	srv.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "tok-ttl")
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestRedisStore_CreateExpired(t *testing.T) {
	t.Parallel()

	store, _ := newRedisStore(t)

	sess := session.NewSession("tok-dead", -time.Minute)
	err := store.Create(context.Background(), sess)
	require.ErrorIs(t, err, session.ErrSessionExpired)
}

func TestRedisStore_UpdateMissing(t *testing.T) {
	t.Parallel()

	store, _ := newRedisStore(t)

	sess := session.NewSession("ghost", time.Hour)
	err := store.Update(context.Background(), sess)
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}
