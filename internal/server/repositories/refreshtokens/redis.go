package refreshtokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	lookupKeyPrefix = "rt:lk:"
	userKeyPrefix   = "rt:user:"
)

// saveAttempts bounds the optimistic retries of Save when another writer
// moves the user pointer between WATCH and EXEC.
const saveAttempts = 5

// KEYS[1] user pointer, KEYS[2] expected record, KEYS[3] new record.
// ARGV[1] expected lookup key, ARGV[2] new lookup key, ARGV[3] record.
var rotateLua = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current ~= ARGV[1] then
  return 0
end
if redis.call("EXISTS", KEYS[2]) == 0 then
  return 0
end
redis.call("DEL", KEYS[2])
redis.call("SET", KEYS[3], ARGV[3])
redis.call("SET", KEYS[1], ARGV[2])
return 1
`)

type redisRecord struct {
	UserID     string    `json:"user_id"`
	SecretHash string    `json:"secret_hash"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// RedisRepository keeps refresh records in Redis. Each record lives under
// rt:lk:<lookupKey> and rt:user:<userID> points at the user's current lookup
// key. A rotation is a Lua script, so it is a single atomic
// compare-and-swap on the pointer.
//
// Records carry no TTL: an expired record must still be found so the caller
// can report expiry rather than an unknown token.
//
// Find only knows the lookup key, so record and pointer keys cannot share a
// hash slot. The repository therefore needs a single Redis node, not a
// cluster client.
type RedisRepository struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb, now: time.Now}
}

func (r *RedisRepository) Find(ctx context.Context, lookupKey string) (*models.RefreshToken, error) {
	data, err := r.rdb.Get(ctx, lookupKeyPrefix+lookupKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt refresh record: %w", err)
	}

	return &models.RefreshToken{
		UserID:     rec.UserID,
		LookupKey:  lookupKey,
		SecretHash: rec.SecretHash,
		ExpiresAt:  rec.ExpiresAt,
		CreatedAt:  rec.CreatedAt,
	}, nil
}

// Save replaces whatever record the user had. The pointer is watched, so a
// concurrent Save or Rotate forces a retry instead of leaving an orphan.
func (r *RedisRepository) Save(ctx context.Context, token *models.RefreshToken) error {
	data, err := r.encode(token)
	if err != nil {
		return err
	}

	userKey := userKeyPrefix + token.UserID
	txf := func(tx *redis.Tx) error {
		old, err := tx.Get(ctx, userKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if old != "" && old != token.LookupKey {
				pipe.Del(ctx, lookupKeyPrefix+old)
			}
			pipe.Set(ctx, lookupKeyPrefix+token.LookupKey, data, 0)
			pipe.Set(ctx, userKey, token.LookupKey, 0)
			return nil
		})
		return err
	}

	for i := 0; i < saveAttempts; i++ {
		err = r.rdb.Watch(ctx, txf, userKey)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) Rotate(ctx context.Context, expectedLookupKey string, next *models.RefreshToken) error {
	data, err := r.encode(next)
	if err != nil {
		return err
	}

	keys := []string{
		userKeyPrefix + next.UserID,
		lookupKeyPrefix + expectedLookupKey,
		lookupKeyPrefix + next.LookupKey,
	}
	swapped, err := rotateLua.Run(ctx, r.rdb, keys, expectedLookupKey, next.LookupKey, data).Int64()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if swapped == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *RedisRepository) encode(t *models.RefreshToken) (string, error) {
	created := t.CreatedAt
	if created.IsZero() {
		created = r.now()
	}

	b, err := json.Marshal(redisRecord{
		UserID:     t.UserID,
		SecretHash: t.SecretHash,
		ExpiresAt:  t.ExpiresAt,
		CreatedAt:  created,
	})
	if err != nil {
		return "", fmt.Errorf("encode refresh record: %w", err)
	}
	return string(b), nil
}
