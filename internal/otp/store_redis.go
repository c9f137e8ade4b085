package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rollcall/pkg/platform/sentinel"
)

const (
	codeKeyPrefix   = "otp:"
	resendKeyPrefix = "otp:resent:"
)

// compareAndDelete deletes the key only when its value equals the submitted
// code. Running it as a script keeps check-and-consume atomic on the server.
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore is the production CodeStore. Expiry is enforced natively by
// Redis TTLs, so expired codes simply read as absent.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a CodeStore on the shared Redis client. A non-positive
// ttl falls back to DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, identifier, code string) error {
	if err := s.client.Set(ctx, codeKeyPrefix+identifier, code, s.ttl).Err(); err != nil {
		return fmt.Errorf("store code: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, identifier string) (string, error) {
	code, err := s.client.Get(ctx, codeKeyPrefix+identifier).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("fetch code: %w: %w", sentinel.ErrUnavailable, err)
	}
	return code, nil
}

func (s *RedisStore) Delete(ctx context.Context, identifier string) error {
	if err := s.client.Del(ctx, codeKeyPrefix+identifier).Err(); err != nil {
		return fmt.Errorf("delete code: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) ConsumeIfMatch(ctx context.Context, identifier, code string) (bool, error) {
	deleted, err := compareAndDelete.Run(ctx, s.client, []string{codeKeyPrefix + identifier}, code).Int()
	if err != nil {
		return false, fmt.Errorf("consume code: %w: %w", sentinel.ErrUnavailable, err)
	}
	return deleted == 1, nil
}

func (s *RedisStore) ReserveResend(ctx context.Context, identifier string, window time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, resendKeyPrefix+identifier, "1", window).Result()
	if err != nil {
		return false, fmt.Errorf("reserve resend: %w: %w", sentinel.ErrUnavailable, err)
	}
	return ok, nil
}
