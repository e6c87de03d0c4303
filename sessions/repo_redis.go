package sessions

import (
	"context"
	"encoding/json"
	"time"

	idperrors "github.com/jrsteele09/go-idp-core/internal/errors"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "sess"

var _ Repo = (*RedisRepo)(nil)

// RedisRepo stores sessions in redis with TTL-based expiry.
type RedisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepo creates a redis-backed session store. Records live for
// ttl past their absolute expiry so revocation marks stay readable.
func NewRedisRepo(client *redis.Client, ttl time.Duration) *RedisRepo {
	return &RedisRepo{client: client, ttl: ttl}
}

func sessionKey(tenantID, sessionID string) string {
	return sessionKeyPrefix + ":" + tenantID + ":" + sessionID
}

func (r *RedisRepo) Get(ctx context.Context, tenantID, sessionID string) (*Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(tenantID, sessionID)).Bytes()
	if err == redis.Nil {
		return nil, idperrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[RedisRepo.Get] redis get")
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, errors.Wrap(err, "[RedisRepo.Get] decode session")
	}
	return &session, nil
}

func (r *RedisRepo) Upsert(ctx context.Context, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "[RedisRepo.Upsert] encode session")
	}
	if err := r.client.Set(ctx, sessionKey(session.TenantID, session.ID), raw, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "[RedisRepo.Upsert] redis set")
	}
	return nil
}

func (r *RedisRepo) Revoke(ctx context.Context, tenantID, sessionID string, at time.Time) error {
	session, err := r.Get(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}
	session.RevokedAt = &at
	return r.Upsert(ctx, session)
}

func (r *RedisRepo) Delete(ctx context.Context, tenantID, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(tenantID, sessionID)).Err(); err != nil {
		return errors.Wrap(err, "[RedisRepo.Delete] redis del")
	}
	return nil
}
