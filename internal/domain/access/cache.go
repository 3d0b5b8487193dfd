package access

import (
	"context"
	"fmt"
)

// CacheKey is a typed permission-cache key. Keys are constructed only
// through the functions below so that population and invalidation paths can
// never drift apart on ad hoc string formatting.
type CacheKey string

// RolePermsKey addresses the permission codes granted to a role. Permissions
// are cached per role code, not per user: N users sharing a role pay for one
// cache fill.
func RolePermsKey(roleCode string) CacheKey {
	return CacheKey("access:role_perms:" + roleCode)
}

// SuperuserPermsKey addresses the full permission universe. The result is
// identical for every superuser, so the key is process-global.
func SuperuserPermsKey() CacheKey {
	return CacheKey("access:superuser_perms")
}

// UserOverridesKey addresses a single user's allow/deny override codes.
func UserOverridesKey(userID uint) CacheKey {
	return CacheKey(fmt.Sprintf("access:user_overrides:%d", userID))
}

// OverrideCodes is the cached shape of a user's permission overrides.
type OverrideCodes struct {
	Allowed []string `json:"allowed"`
	Denied  []string `json:"denied"`
}

// PermissionCache is the port for the shared permission cache. Entries use
// idempotent overwrite semantics; no locking is required. Implementations
// must treat a miss as (nil, false, nil), not an error.
type PermissionCache interface {
	GetCodes(ctx context.Context, key CacheKey) ([]string, bool, error)
	SetCodes(ctx context.Context, key CacheKey, codes []string) error
	GetOverrides(ctx context.Context, key CacheKey) (*OverrideCodes, bool, error)
	SetOverrides(ctx context.Context, key CacheKey, codes *OverrideCodes) error
	Delete(ctx context.Context, keys ...CacheKey) error
}
