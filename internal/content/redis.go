package content

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "cas:"

// RedisStore keeps blobs in Redis under cas:<sha256> keys. Writes carry no
// TTL and Pin additionally strips any expiry an operator may have set on the
// key, which is the closest Redis gets to a GC retain call.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Put(ctx context.Context, data []byte) (string, error) {
	id := ContentID(data)
	// SET is idempotent for identical bytes: same content, same key, same value.
	if err := s.rdb.Set(ctx, redisKeyPrefix+id, data, 0).Err(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Pin(ctx context.Context, id string) error {
	ok, err := s.rdb.Persist(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return err
	}
	_ = ok // false means the key had no expiry, already retained
	exists, err := s.rdb.Exists(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return nil
}
