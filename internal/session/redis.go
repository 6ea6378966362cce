package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey — ключ хэша сессии, если в конфигурации не задан свой.
const DefaultRedisKey = "skilltrack:session"

// Redis — хранилище сессии в Redis-хэше с полями accessToken/refreshToken.
// Позволяет нескольким процессам (например, CLI на разных машинах через
// общий Redis) разделять одну сессию.
type Redis struct {
	rdb *redis.Client
	key string
}

// NewRedis создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// и проверяет соединение.
func NewRedis(ctx context.Context, redisURL, key string) (*Redis, error) {
	const op = "session.NewRedis"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return NewRedisFromClient(rdb, key), nil
}

// NewRedisFromClient оборачивает уже созданный клиент. Пустой key — DefaultRedisKey.
func NewRedisFromClient(rdb *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}

	return &Redis{rdb: rdb, key: key}
}

func (r *Redis) Get(ctx context.Context) (Credentials, error) {
	const op = "session.Redis.Get"

	m, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return Credentials{}, fmt.Errorf("%s: %w", op, err)
	}

	c := Credentials{
		AccessToken:  m[SlotAccessToken],
		RefreshToken: m[SlotRefreshToken],
	}

	return c.normalize(), nil
}

// Set заменяет хэш целиком в одной MULTI/EXEC-транзакции.
func (r *Redis) Set(ctx context.Context, c Credentials) error {
	const op = "session.Redis.Set"

	if err := validate(c); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, r.key)
	pipe.HSet(ctx, r.key,
		SlotAccessToken, c.AccessToken,
		SlotRefreshToken, c.RefreshToken,
	)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	const op = "session.Redis.Clear"

	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close закрывает клиент Redis.
func (r *Redis) Close() error { return r.rdb.Close() }
