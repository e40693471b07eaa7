package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(client)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestStorePutGetDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tok-1", "user-1", time.Minute))

	userID, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)

	require.NoError(t, store.Delete(ctx, "tok-1"))

	_, err = store.Get(ctx, "tok-1")
	require.ErrorIs(t, err, ErrNotFound)

	// Revoking an already-absent entry is fine.
	require.NoError(t, store.Delete(ctx, "tok-1"))
}

func TestStoreEntriesExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tok-ttl", "user-1", time.Minute))
	require.Equal(t, time.Minute, mr.TTL("session:tok-ttl"))

	mr.FastForward(time.Minute + time.Second)

	_, err := store.Get(ctx, "tok-ttl")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreUnknownTokenIsNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "never-issued")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreReportsUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(client)
	mr.Close()

	ctx := context.Background()

	require.ErrorIs(t, store.Put(ctx, "tok", "user", time.Minute), ErrUnavailable)

	_, err := store.Get(ctx, "tok")
	require.ErrorIs(t, err, ErrUnavailable)

	require.ErrorIs(t, store.Delete(ctx, "tok"), ErrUnavailable)
}

func TestOpenRejectsBadURL(t *testing.T) {
	_, err := Open(context.Background(), Config{URL: "://not-a-url"})
	require.Error(t, err)
}

func TestOpenPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := Open(context.Background(), Config{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Put(context.Background(), "tok", "user", time.Minute))
}
