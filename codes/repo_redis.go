package codes

import (
	"context"
	"encoding/json"
	"time"

	idperrors "github.com/jrsteele09/go-idp-core/internal/errors"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	codeKeyPrefix     = "code"
	usedKeyPrefix     = "code_used"
	stateIdxKeyPrefix = "code_state"
)

var _ Repo = (*RedisRepo)(nil)

// RedisRepo stores codes in redis. Expiry is enforced by the key TTL;
// single-use is enforced by SETNX on a used-marker key, which gives the
// required compare-and-set semantics under concurrent redemption.
type RedisRepo struct {
	client *redis.Client
}

func NewRedisRepo(client *redis.Client) *RedisRepo {
	return &RedisRepo{client: client}
}

func redisCodeKey(tenantID, id string, codeType Type) string {
	return codeKeyPrefix + ":" + tenantID + ":" + string(codeType) + ":" + id
}

func redisUsedKey(tenantID, id string, codeType Type) string {
	return usedKeyPrefix + ":" + tenantID + ":" + string(codeType) + ":" + id
}

func redisStateIdxKey(id string) string {
	return stateIdxKeyPrefix + ":" + id
}

func (r *RedisRepo) Create(ctx context.Context, code *Code) error {
	raw, err := json.Marshal(code)
	if err != nil {
		return errors.Wrap(err, "[RedisRepo.Create] encode code")
	}
	ttl := time.Until(code.ExpiresAt)
	if ttl <= 0 {
		return idperrors.ErrCodeExpired
	}
	if err := r.client.Set(ctx, redisCodeKey(code.TenantID, code.ID, code.Type), raw, ttl).Err(); err != nil {
		return errors.Wrap(err, "[RedisRepo.Create] redis set")
	}
	if code.Type == TypeOAuth2State {
		if err := r.client.Set(ctx, redisStateIdxKey(code.ID), code.TenantID, ttl).Err(); err != nil {
			return errors.Wrap(err, "[RedisRepo.Create] redis set state index")
		}
	}
	return nil
}

func (r *RedisRepo) Get(ctx context.Context, tenantID, id string, codeType Type) (*Code, error) {
	raw, err := r.client.Get(ctx, redisCodeKey(tenantID, id, codeType)).Bytes()
	if err == redis.Nil {
		return nil, idperrors.ErrCodeNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[RedisRepo.Get] redis get")
	}

	var code Code
	if err := json.Unmarshal(raw, &code); err != nil {
		return nil, errors.Wrap(err, "[RedisRepo.Get] decode code")
	}

	usedAt, err := r.client.Get(ctx, redisUsedKey(tenantID, id, codeType)).Result()
	if err == nil && usedAt != "" {
		if at, parseErr := time.Parse(time.RFC3339Nano, usedAt); parseErr == nil {
			code.UsedAt = &at
		}
	}
	return &code, nil
}

func (r *RedisRepo) MarkUsed(ctx context.Context, tenantID, id string, codeType Type, at time.Time) (bool, error) {
	exists, err := r.client.Exists(ctx, redisCodeKey(tenantID, id, codeType)).Result()
	if err != nil {
		return false, errors.Wrap(err, "[RedisRepo.MarkUsed] redis exists")
	}
	if exists == 0 {
		return false, idperrors.ErrCodeNotFound
	}

	// SETNX: exactly one concurrent caller wins the first use.
	firstUse, err := r.client.SetNX(ctx, redisUsedKey(tenantID, id, codeType), at.Format(time.RFC3339Nano), 24*time.Hour).Result()
	if err != nil {
		return false, errors.Wrap(err, "[RedisRepo.MarkUsed] redis setnx")
	}
	return firstUse, nil
}

func (r *RedisRepo) FindState(ctx context.Context, id string) (*Code, error) {
	tenantID, err := r.client.Get(ctx, redisStateIdxKey(id)).Result()
	if err == redis.Nil {
		return nil, idperrors.ErrCodeNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[RedisRepo.FindState] redis get index")
	}
	return r.Get(ctx, tenantID, id, TypeOAuth2State)
}

func (r *RedisRepo) Delete(ctx context.Context, tenantID, id string, codeType Type) error {
	keys := []string{redisCodeKey(tenantID, id, codeType), redisUsedKey(tenantID, id, codeType)}
	if codeType == TypeOAuth2State {
		keys = append(keys, redisStateIdxKey(id))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "[RedisRepo.Delete] redis del")
	}
	return nil
}
