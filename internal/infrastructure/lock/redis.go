package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "field-report:export-lock:"

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript resets the TTL only if the key still holds our token
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisConfig holds connection settings for the shared lock store
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisLock shares export locks across processes through Redis.
type RedisLock struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisLock connects to Redis and verifies the connection with PING.
func NewRedisLock(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*RedisLock, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	logger.Info("Redis lock store connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return &RedisLock{client: client, ttl: ttl, logger: logger}, nil
}

// Acquire takes the lock for key with SET NX and a TTL, then refreshes the TTL
// until released.
func (l *RedisLock) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, keyPrefix+key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	stop := keepAlive(refreshInterval(l.ttl), func() bool { return l.extend(key, token) })

	var (
		once   sync.Once
		relErr error
	)
	return func(ctx context.Context) error {
		once.Do(func() {
			stop()
			err := releaseScript.Run(ctx, l.client, []string{keyPrefix + key}, token).Err()
			if err != nil && !errors.Is(err, redis.Nil) {
				l.logger.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
				relErr = fmt.Errorf("failed to release lock %s: %w", key, err)
			}
		})
		return relErr
	}, nil
}

// extend reports false once the key no longer holds token. Transient errors keep
// the refresher running; the next tick retries.
func (l *RedisLock) extend(key, token string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), refreshInterval(l.ttl))
	defer cancel()
	n, err := extendScript.Run(ctx, l.client, []string{keyPrefix + key}, token, l.ttl.Milliseconds()).Int()
	if err != nil {
		l.logger.Warn("Failed to extend lock", zap.String("key", key), zap.Error(err))
		return true
	}
	if n == 0 {
		l.logger.Warn("Lock lost before release", zap.String("key", key))
		return false
	}
	return true
}

// Ping checks the connection to Redis
func (l *RedisLock) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (l *RedisLock) Close() error {
	return l.client.Close()
}
