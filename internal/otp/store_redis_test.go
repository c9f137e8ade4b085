package otp

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/pkg/platform/sentinel"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err, "start miniredis")
	t.Cleanup(s.Close)

	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() {
		require.NoError(t, rdb.Close())
	})

	return NewRedisStore(rdb, DefaultTTL), s
}

func TestRedisStore_PutGet(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a@x.com", "123456"))

	code, err := store.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	_, err = store.Get(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestRedisStore_PutOverwrites(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a@x.com", "111111"))
	require.NoError(t, store.Put(ctx, "a@x.com", "222222"))

	code, err := store.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", code)

	// The replaced code no longer verifies.
	ok, err := store.ConsumeIfMatch(ctx, "a@x.com", "111111")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a@x.com", "123456"))

	mr.FastForward(DefaultTTL + time.Second)

	_, err := store.Get(ctx, "a@x.com")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a@x.com", "123456"))
	require.NoError(t, store.Delete(ctx, "a@x.com"))

	_, err := store.Get(ctx, "a@x.com")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	// Deleting an absent entry is not an error.
	require.NoError(t, store.Delete(ctx, "a@x.com"))
}

func TestRedisStore_ConsumeIfMatch(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a@x.com", "123456"))

	ok, err := store.ConsumeIfMatch(ctx, "a@x.com", "000000")
	require.NoError(t, err)
	assert.False(t, ok, "mismatched code must not consume")

	code, err := store.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", code, "mismatch must leave the code in place")

	ok, err = store.ConsumeIfMatch(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.ConsumeIfMatch(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok, "a consumed code must not verify again")
}

func TestRedisStore_ReserveResend(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	ok, err := store.ReserveResend(ctx, "a@x.com", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.ReserveResend(ctx, "a@x.com", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(time.Minute + time.Second)

	ok, err = store.ReserveResend(ctx, "a@x.com", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
