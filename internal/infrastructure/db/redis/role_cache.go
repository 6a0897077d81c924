package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

// CachedRoleResolver decorates a RoleResolver with a short-lived Redis cache.
// Key format: role:<account_id>
//
// A zero TTL disables caching. Redis failures fall back to the inner resolver
// so the admin gate never depends on the cache being up.
type CachedRoleResolver struct {
	client *redis.Client
	inner  ports.RoleResolver
	ttl    time.Duration
	log    zerolog.Logger
}

func NewCachedRoleResolver(client *redis.Client, inner ports.RoleResolver, ttl time.Duration, log zerolog.Logger) *CachedRoleResolver {
	return &CachedRoleResolver{client: client, inner: inner, ttl: ttl, log: log}
}

func (c *CachedRoleResolver) ResolveEffectiveRole(ctx context.Context, accountID int64) (domain.Role, error) {
	if c.ttl <= 0 || c.client == nil {
		return c.inner.ResolveEffectiveRole(ctx, accountID)
	}

	cached, err := c.client.Get(ctx, c.key(accountID)).Result()
	switch {
	case err == nil:
		if role := domain.Role(cached); role.Valid() {
			return role, nil
		}
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn().Err(err).Int64("account_id", accountID).Msg("role cache read failed, using store")
		return c.inner.ResolveEffectiveRole(ctx, accountID)
	}

	role, err := c.inner.ResolveEffectiveRole(ctx, accountID)
	if err != nil {
		return "", err
	}
	if err := c.client.Set(ctx, c.key(accountID), string(role), c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Int64("account_id", accountID).Msg("role cache write failed")
	}
	return role, nil
}

// Invalidate drops the cached role of an account.
func (c *CachedRoleResolver) Invalidate(ctx context.Context, accountID int64) {
	if c.ttl <= 0 || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.key(accountID)).Err(); err != nil {
		c.log.Warn().Err(err).Int64("account_id", accountID).Msg("role cache invalidation failed")
	}
}

func (c *CachedRoleResolver) key(accountID int64) string {
	return "role:" + strconv.FormatInt(accountID, 10)
}
