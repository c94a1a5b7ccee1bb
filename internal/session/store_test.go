package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis is an in-memory stand-in for the handful of commands RedisStore uses
type fakeRedis struct {
	strings map[string]string
	sets    map[string]map[string]struct{}
	ttls    map[string]time.Duration
	failGet bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		strings: make(map[string]string),
		sets:    make(map[string]map[string]struct{}),
		ttls:    make(map[string]time.Duration),
	}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.failGet {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := f.strings[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.strings[key] = value.(string)
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.strings[k]; ok {
			delete(f.strings, k)
			n++
		}
		if _, ok := f.sets[k]; ok {
			delete(f.sets, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) SAdd(_ context.Context, key string, members ...interface{}) *redis.IntCmd {
	set, ok := f.sets[key]
	if !ok {
		set = make(map[string]struct{})
		f.sets[key] = set
	}
	for _, m := range members {
		set[m.(string)] = struct{}{}
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (f *fakeRedis) SRem(_ context.Context, key string, members ...interface{}) *redis.IntCmd {
	for _, m := range members {
		delete(f.sets[key], m.(string))
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (f *fakeRedis) SMembers(_ context.Context, key string) *redis.StringSliceCmd {
	var out []string
	for m := range f.sets[key] {
		out = append(out, m)
	}
	return redis.NewStringSliceResult(out, nil)
}

func (f *fakeRedis) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	ash, err := store.Create(ctx, 10)
	require.NoError(t, err)
	ash2, err := store.Create(ctx, 10)
	require.NoError(t, err)
	misty, err := store.Create(ctx, 20)
	require.NoError(t, err)
	assert.NotEqual(t, ash, ash2)

	userID, err := store.Get(ctx, ash)
	require.NoError(t, err)
	assert.Equal(t, uint(10), userID)

	_, err = store.Get(ctx, "unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, ash))
	_, err = store.Get(ctx, ash)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, store.Delete(ctx, ash), "deleting twice is fine")

	require.NoError(t, store.DeleteUser(ctx, 10))
	_, err = store.Get(ctx, ash2)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	userID, err = store.Get(ctx, misty)
	require.NoError(t, err)
	assert.Equal(t, uint(20), userID)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore(time.Hour))
}

func TestRedisStore(t *testing.T) {
	storeContract(t, NewRedisStore(newFakeRedis(), time.Hour))
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	id, err := store.Create(context.Background(), 1)
	require.NoError(t, err)
	_, err = store.Create(context.Background(), 2)
	require.NoError(t, err)

	now = now.Add(59 * time.Second)
	_, err = store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Zero(t, store.Sweep())

	now = now.Add(time.Second)
	_, err = store.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Equal(t, 2, store.Sweep())
	assert.Zero(t, store.Len())
}

func TestRedisStoreKeysAndTTL(t *testing.T) {
	rdb := newFakeRedis()
	store := NewRedisStore(rdb, 2*time.Hour)

	id, err := store.Create(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "7", rdb.strings["session:"+id])
	assert.Equal(t, 2*time.Hour, rdb.ttls["session:"+id])
	assert.Contains(t, rdb.sets["user_sessions:7"], id)
}

func TestRedisStoreBackendFailure(t *testing.T) {
	rdb := newFakeRedis()
	store := NewRedisStore(rdb, time.Hour)

	id, err := store.Create(context.Background(), 7)
	require.NoError(t, err)

	rdb.failGet = true
	_, err = store.Get(context.Background(), id)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStoreCorruptValue(t *testing.T) {
	rdb := newFakeRedis()
	store := NewRedisStore(rdb, time.Hour)

	id, err := store.Create(context.Background(), 7)
	require.NoError(t, err)
	rdb.strings["session:"+id] = "not-a-number"

	_, err = store.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
