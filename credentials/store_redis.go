package credentials

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps credentials in Redis, for kiosk or shared-terminal
// deployments where the session should follow the terminal, not the disk.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

// RedisOptions configures the Redis credential backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.Prefix == "" {
		opts.Prefix = "chatbot:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(err, "[NewRedisStore] ping")
	}

	return &RedisStore{client: client, prefix: opts.Prefix}, nil
}

func (rs *RedisStore) Get(key string) (string, error) {
	value, err := rs.client.Get(context.Background(), rs.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", errors.Wrap(err, "[RedisStore.Get] get")
	}
	return value, nil
}

func (rs *RedisStore) Set(key, value string) error {
	if err := rs.client.Set(context.Background(), rs.prefix+key, value, 0).Err(); err != nil {
		return errors.Wrap(err, "[RedisStore.Set] set")
	}
	return nil
}

func (rs *RedisStore) Remove(key string) error {
	if err := rs.client.Del(context.Background(), rs.prefix+key).Err(); err != nil {
		return errors.Wrap(err, "[RedisStore.Remove] del")
	}
	return nil
}

// Close releases the Redis connection.
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
