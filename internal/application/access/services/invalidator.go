package services

import (
	"context"

	"instra/internal/domain/access"
	"instra/internal/shared/logger"
)

// CacheInvalidator centralizes the cache deletions every access-control
// mutation must perform before returning. A failed delete is logged and
// swallowed: the entries carry a TTL, so staleness is bounded even when
// Redis misbehaves.
type CacheInvalidator struct {
	cache  access.PermissionCache
	logger logger.Interface
}

func NewCacheInvalidator(cache access.PermissionCache, logger logger.Interface) *CacheInvalidator {
	return &CacheInvalidator{cache: cache, logger: logger}
}

// RoleChanged drops the cached permission sets for the given role codes
// plus the superuser universe.
func (i *CacheInvalidator) RoleChanged(ctx context.Context, roleCodes ...string) {
	keys := make([]access.CacheKey, 0, len(roleCodes)+1)
	for _, code := range roleCodes {
		keys = append(keys, access.RolePermsKey(code))
	}
	keys = append(keys, access.SuperuserPermsKey())
	i.delete(ctx, keys...)
}

// PermissionUniverseChanged drops the superuser set. Called when a
// permission is created or deleted, which changes the universe itself.
func (i *CacheInvalidator) PermissionUniverseChanged(ctx context.Context) {
	i.delete(ctx, access.SuperuserPermsKey())
}

// UserOverridesChanged drops a single user's cached override codes.
func (i *CacheInvalidator) UserOverridesChanged(ctx context.Context, userID uint) {
	i.delete(ctx, access.UserOverridesKey(userID))
}

func (i *CacheInvalidator) delete(ctx context.Context, keys ...access.CacheKey) {
	if err := i.cache.Delete(ctx, keys...); err != nil {
		i.logger.Warnw("permission cache invalidation failed",
			"keys", keys, "error", err)
	}
}
