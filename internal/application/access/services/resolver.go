package services

import (
	"context"
	"sort"
	"strings"

	"instra/internal/domain/access"
	"instra/internal/domain/identity"
	"instra/internal/shared/logger"
)

// PermissionResolver computes the effective permission set for a user
// acting under a role. Resolution never returns an authorization error:
// anything that cannot be positively established resolves to the empty
// set, and cache trouble degrades to database reads.
type PermissionResolver struct {
	userRepo     identity.UserRepository
	permRepo     access.PermissionRepository
	userRoleRepo access.UserRoleRepository
	overrideRepo access.OverrideRepository
	cache        access.PermissionCache
	logger       logger.Interface
}

func NewPermissionResolver(
	userRepo identity.UserRepository,
	permRepo access.PermissionRepository,
	userRoleRepo access.UserRoleRepository,
	overrideRepo access.OverrideRepository,
	cache access.PermissionCache,
	logger logger.Interface,
) *PermissionResolver {
	return &PermissionResolver{
		userRepo:     userRepo,
		permRepo:     permRepo,
		userRoleRepo: userRoleRepo,
		overrideRepo: overrideRepo,
		cache:        cache,
		logger:       logger,
	}
}

// NormalizeRoleCode collapses the sentinel values browsers tend to send
// ("", "undefined", "null") into the unspecified role.
func NormalizeRoleCode(raw string) string {
	code := strings.TrimSpace(raw)
	switch strings.ToLower(code) {
	case "", "undefined", "null":
		return ""
	}
	return strings.ToUpper(code)
}

// Resolve returns the effective permission codes for the user under the
// given active role code. An unknown user, an unheld explicit role, or an
// inactive role all yield the empty set, never an error.
func (r *PermissionResolver) Resolve(ctx context.Context, userID uint, activeRoleCode string) ([]string, error) {
	user, err := r.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive() {
		return []string{}, nil
	}

	if user.IsSuperuser() {
		return r.superuserPermissions(ctx)
	}

	role, err := r.selectRole(ctx, user, NormalizeRoleCode(activeRoleCode))
	if err != nil {
		return nil, err
	}
	if role == nil || !role.IsActive() {
		return []string{}, nil
	}

	rolePerms, err := r.rolePermissions(ctx, role)
	if err != nil {
		return nil, err
	}

	overrides, err := r.userOverrides(ctx, userID)
	if err != nil {
		return nil, err
	}

	return applyOverrides(rolePerms, overrides), nil
}

// CheckPermission reports whether the user holds a single permission under
// the active role. Superusers short-circuit to true.
func (r *PermissionResolver) CheckPermission(ctx context.Context, userID uint, permCode, activeRoleCode string) (bool, error) {
	user, err := r.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil || !user.IsActive() {
		return false, nil
	}
	if user.IsSuperuser() {
		return true, nil
	}

	perms, err := r.Resolve(ctx, userID, activeRoleCode)
	if err != nil {
		return false, err
	}
	for _, code := range perms {
		if code == permCode {
			return true, nil
		}
	}
	return false, nil
}

// selectRole picks the role resolution applies to. An explicit role the
// user does not hold fails closed with no fallback; an unspecified role
// falls back to the last recorded active role, then the earliest binding.
func (r *PermissionResolver) selectRole(ctx context.Context, user *identity.User, explicitCode string) (*access.Role, error) {
	roles, err := r.userRoleRepo.ListRolesForUser(ctx, user.ID())
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, nil
	}

	if explicitCode != "" {
		for _, role := range roles {
			if role.Code() == explicitCode {
				r.recordActiveRole(ctx, user, role.Code())
				return role, nil
			}
		}
		// Explicitly requested but not held: no fallback.
		return nil, nil
	}

	if last := user.LastActiveRole(); last != "" {
		for _, role := range roles {
			if role.Code() == last && role.IsActive() {
				return role, nil
			}
		}
	}

	return roles[0], nil
}

// recordActiveRole persists the sticky role hint. Best-effort; a failed
// write must not break resolution.
func (r *PermissionResolver) recordActiveRole(ctx context.Context, user *identity.User, roleCode string) {
	if user.LastActiveRole() == roleCode {
		return
	}
	user.RecordActiveRole(roleCode)
	if err := r.userRepo.Update(ctx, user); err != nil {
		r.logger.Warnw("failed to persist last active role",
			"user_id", user.ID(), "role", roleCode, "error", err)
	}
}

func (r *PermissionResolver) superuserPermissions(ctx context.Context) ([]string, error) {
	key := access.SuperuserPermsKey()
	if codes, ok, err := r.cache.GetCodes(ctx, key); err != nil {
		r.logger.Warnw("permission cache read failed", "key", key, "error", err)
	} else if ok {
		return codes, nil
	}

	codes, err := r.permRepo.ListAllCodes(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.SetCodes(ctx, key, codes); err != nil {
		r.logger.Warnw("permission cache write failed", "key", key, "error", err)
	}
	return codes, nil
}

func (r *PermissionResolver) rolePermissions(ctx context.Context, role *access.Role) ([]string, error) {
	key := access.RolePermsKey(role.Code())
	if codes, ok, err := r.cache.GetCodes(ctx, key); err != nil {
		r.logger.Warnw("permission cache read failed", "key", key, "error", err)
	} else if ok {
		return codes, nil
	}

	codes, err := r.permRepo.ListCodesForRole(ctx, role.ID())
	if err != nil {
		return nil, err
	}

	if err := r.cache.SetCodes(ctx, key, codes); err != nil {
		r.logger.Warnw("permission cache write failed", "key", key, "error", err)
	}
	return codes, nil
}

func (r *PermissionResolver) userOverrides(ctx context.Context, userID uint) (*access.OverrideCodes, error) {
	key := access.UserOverridesKey(userID)
	if codes, ok, err := r.cache.GetOverrides(ctx, key); err != nil {
		r.logger.Warnw("permission cache read failed", "key", key, "error", err)
	} else if ok {
		return codes, nil
	}

	codes, err := r.overrideRepo.CodesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := r.cache.SetOverrides(ctx, key, codes); err != nil {
		r.logger.Warnw("permission cache write failed", "key", key, "error", err)
	}
	return codes, nil
}

// applyOverrides layers the user's overrides over the role grants: allows
// are added, denies are removed, and a code that is both allowed and
// denied stays denied.
func applyOverrides(rolePerms []string, overrides *access.OverrideCodes) []string {
	set := make(map[string]struct{}, len(rolePerms))
	for _, code := range rolePerms {
		set[code] = struct{}{}
	}
	if overrides != nil {
		for _, code := range overrides.Allowed {
			set[code] = struct{}{}
		}
		for _, code := range overrides.Denied {
			delete(set, code)
		}
	}

	result := make([]string, 0, len(set))
	for code := range set {
		result = append(result, code)
	}
	sort.Strings(result)
	return result
}
