package loginsession

import (
	"context"
	"encoding/json"
	"time"

	idperrors "github.com/jrsteele09/go-idp-core/internal/errors"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	loginSessionKeyPrefix = "ls"
	stateIndexKeyPrefix   = "ls_state"
)

var _ Repo = (*RedisRepo)(nil)

// RedisRepo stores login sessions in redis with TTL expiry, keeping a
// secondary index from the captured state value to the session id.
type RedisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepo(client *redis.Client, ttl time.Duration) *RedisRepo {
	return &RedisRepo{client: client, ttl: ttl}
}

func loginSessionKey(tenantID, id string) string {
	return loginSessionKeyPrefix + ":" + tenantID + ":" + id
}

func stateIndexKey(tenantID, state string) string {
	return stateIndexKeyPrefix + ":" + tenantID + ":" + state
}

func (r *RedisRepo) Get(ctx context.Context, tenantID, id string) (*LoginSession, error) {
	raw, err := r.client.Get(ctx, loginSessionKey(tenantID, id)).Bytes()
	if err == redis.Nil {
		return nil, idperrors.ErrLoginSessionGone
	}
	if err != nil {
		return nil, errors.Wrap(err, "[RedisRepo.Get] redis get")
	}

	var session LoginSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, errors.Wrap(err, "[RedisRepo.Get] decode login session")
	}
	return &session, nil
}

func (r *RedisRepo) Upsert(ctx context.Context, session *LoginSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "[RedisRepo.Upsert] encode login session")
	}
	if err := r.client.Set(ctx, loginSessionKey(session.TenantID, session.ID), raw, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "[RedisRepo.Upsert] redis set")
	}
	if session.AuthParams.State != "" {
		if err := r.client.Set(ctx, stateIndexKey(session.TenantID, session.AuthParams.State), session.ID, r.ttl).Err(); err != nil {
			return errors.Wrap(err, "[RedisRepo.Upsert] redis set state index")
		}
	}
	return nil
}

func (r *RedisRepo) Delete(ctx context.Context, tenantID, id string) error {
	session, err := r.Get(ctx, tenantID, id)
	if err == nil && session.AuthParams.State != "" {
		_ = r.client.Del(ctx, stateIndexKey(tenantID, session.AuthParams.State)).Err()
	}
	if err := r.client.Del(ctx, loginSessionKey(tenantID, id)).Err(); err != nil {
		return errors.Wrap(err, "[RedisRepo.Delete] redis del")
	}
	return nil
}

func (r *RedisRepo) GetByState(ctx context.Context, tenantID, state string) (*LoginSession, error) {
	if state == "" {
		return nil, idperrors.ErrLoginSessionGone
	}
	id, err := r.client.Get(ctx, stateIndexKey(tenantID, state)).Result()
	if err == redis.Nil {
		return nil, idperrors.ErrLoginSessionGone
	}
	if err != nil {
		return nil, errors.Wrap(err, "[RedisRepo.GetByState] redis get")
	}
	return r.Get(ctx, tenantID, id)
}
