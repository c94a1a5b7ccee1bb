package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pokemon-tcg/pkg/keygen"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

// redisClient is the part of *redis.Client the store uses
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisStore keeps sessions in Redis so they survive restarts and are shared
// between instances. Each user also has a set of their session IDs so that
// deleting an account can end all of them.
type RedisStore struct {
	redis redisClient
	ttl   time.Duration
}

// NewRedisStore creates a new RedisStore
func NewRedisStore(redisClient redisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{
		redis: redisClient,
		ttl:   ttl,
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func userSessionsKey(userID uint) string {
	return userSessionKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// Create implements Store
func (s *RedisStore) Create(ctx context.Context, userID uint) (string, error) {
	id := keygen.SessionID()

	if err := s.redis.Set(ctx, sessionKey(id), strconv.FormatUint(uint64(userID), 10), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	setKey := userSessionsKey(userID)
	if err := s.redis.SAdd(ctx, setKey, id).Err(); err != nil {
		return "", fmt.Errorf("failed to index session: %w", err)
	}
	s.redis.Expire(ctx, setKey, s.ttl)

	return id, nil
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, sessionID string) (uint, error) {
	if !keygen.IsSessionID(sessionID) {
		return 0, ErrSessionNotFound
	}

	val, err := s.redis.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("failed to load session: %w", err)
	}

	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrSessionNotFound
	}
	return uint(userID), nil
}

// Delete implements Store
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	userID, err := s.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.redis.SRem(ctx, userSessionsKey(userID), sessionID)
	return nil
}

// DeleteUser implements Store
func (s *RedisStore) DeleteUser(ctx context.Context, userID uint) error {
	setKey := userSessionsKey(userID)

	ids, err := s.redis.SMembers(ctx, setKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, setKey)

	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}
