package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists state in a single Redis hash, one field per
// tracking number with a JSON-encoded Record value.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore creates a RedisStore using the given client and hash key.
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

// Load reads the full hash. A missing key yields an empty mapping.
func (s *RedisStore) Load(ctx context.Context) (map[string]Record, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("reading state hash %s: %w", s.key, err)
	}

	states := make(map[string]Record, len(fields))
	for number, raw := range fields {
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("parsing state record %s: %w", number, err)
		}
		states[number] = rec
	}
	return states, nil
}

// Save replaces the hash wholesale so removed shipments do not linger.
func (s *RedisStore) Save(ctx context.Context, states map[string]Record) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, s.key)

	if len(states) > 0 {
		fields := make(map[string]interface{}, len(states))
		for number, rec := range states {
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("encoding state record %s: %w", number, err)
			}
			fields[number] = data
		}
		pipe.HSet(ctx, s.key, fields)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing state hash %s: %w", s.key, err)
	}
	return nil
}
