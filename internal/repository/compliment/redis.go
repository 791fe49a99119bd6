package compliment

import (
	"context"
	"time"

	"github.com/go-redis/redis"
	"github.com/xpanvictor/aigreeter/internal/domains/compliment"
	"github.com/xpanvictor/aigreeter/pkg/utils"
)

var _ compliment.Repository = (*RedisRepository)(nil)

// RedisRepository shares compliments across instances; expiry is left to
// redis.
type RedisRepository struct {
	rc     *redis.Client
	prefix string
}

func NewRedisRepository(rc *redis.Client, prefix string) *RedisRepository {
	return &RedisRepository{rc: rc, prefix: prefix}
}

// Put implements compliment.Repository.
func (r *RedisRepository) Put(ctx context.Context, sessionID, text string, ttl time.Duration) error {
	if err := r.rc.WithContext(ctx).Set(compliment.Key(r.prefix, sessionID), text, ttl).Err(); err != nil {
		return utils.XError{Reason: "storing compliment", Meta: err}.ToError()
	}
	return nil
}

// Get implements compliment.Repository.
func (r *RedisRepository) Get(ctx context.Context, sessionID string) (string, bool, error) {
	text, err := r.rc.WithContext(ctx).Get(compliment.Key(r.prefix, sessionID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, utils.XError{Reason: "reading compliment", Meta: err}.ToError()
	}
	return text, true, nil
}

// Delete implements compliment.Repository.
func (r *RedisRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.rc.WithContext(ctx).Del(compliment.Key(r.prefix, sessionID)).Err(); err != nil {
		return utils.XError{Reason: "deleting compliment", Meta: err}.ToError()
	}
	return nil
}
