package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instra/internal/domain/access"
	"instra/internal/domain/identity"
	"instra/internal/shared/logger"
)

func testRole(t *testing.T, id uint, code string, active bool) *access.Role {
	t.Helper()
	now := time.Now()
	role, err := access.ReconstructRole(id, code, code, "", active, false, nil, nil, "", now, now)
	require.NoError(t, err)
	return role
}

func testUser(t *testing.T, id uint, superuser bool, lastActiveRole string) *identity.User {
	t.Helper()
	now := time.Now()
	user, err := identity.ReconstructUser(id, "user@example.com", "User", "hash",
		true, superuser, false, lastActiveRole, now, now)
	require.NoError(t, err)
	return user
}

type resolverFixture struct {
	resolver  *PermissionResolver
	users     *mockUserRepo
	perms     *mockPermRepo
	userRoles *mockUserRoleRepo
	overrides *mockOverrideRepo
	cache     *mockCache
}

func newResolverFixture() *resolverFixture {
	f := &resolverFixture{
		users:     newMockUserRepo(),
		perms:     &mockPermRepo{roleCodes: map[uint][]string{}},
		userRoles: &mockUserRoleRepo{roles: map[uint][]*access.Role{}},
		overrides: &mockOverrideRepo{codes: map[uint]*access.OverrideCodes{}},
		cache:     newMockCache(),
	}
	f.resolver = NewPermissionResolver(
		f.users, f.perms, f.userRoles, f.overrides, f.cache,
		logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return f
}

func TestNormalizeRoleCode(t *testing.T) {
	assert.Equal(t, "", NormalizeRoleCode(""))
	assert.Equal(t, "", NormalizeRoleCode("  "))
	assert.Equal(t, "", NormalizeRoleCode("undefined"))
	assert.Equal(t, "", NormalizeRoleCode("UNDEFINED"))
	assert.Equal(t, "", NormalizeRoleCode("null"))
	assert.Equal(t, "STUDENT", NormalizeRoleCode("student"))
	assert.Equal(t, "TRAINER", NormalizeRoleCode(" Trainer "))
}

func TestResolveUnknownUserYieldsEmptySet(t *testing.T) {
	f := newResolverFixture()

	perms, err := f.resolver.Resolve(context.Background(), 999, "")
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestResolveSuperuserGetsFullUniverse(t *testing.T) {
	f := newResolverFixture()
	f.users.users[1] = testUser(t, 1, true, "")
	f.perms.allCodes = []string{"STUDENT_VIEW", "PAYMENT_APPROVE"}

	perms, err := f.resolver.Resolve(context.Background(), 1, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"STUDENT_VIEW", "PAYMENT_APPROVE"}, perms)

	// Second call is served from the process-global cache key.
	cached, ok := f.cache.codes[access.SuperuserPermsKey()]
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"STUDENT_VIEW", "PAYMENT_APPROVE"}, cached)
}

func TestResolveExplicitRoleNotHeldFailsClosed(t *testing.T) {
	f := newResolverFixture()
	f.users.users[1] = testUser(t, 1, false, "")
	f.userRoles.roles[1] = []*access.Role{testRole(t, 10, "STUDENT", true)}
	f.perms.roleCodes[10] = []string{"COURSE_VIEW"}

	// The user holds STUDENT but asks for TRAINER: empty set, no fallback.
	perms, err := f.resolver.Resolve(context.Background(), 1, "TRAINER")
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestResolveExplicitRoleHeld(t *testing.T) {
	f := newResolverFixture()
	f.users.users[1] = testUser(t, 1, false, "")
	f.userRoles.roles[1] = []*access.Role{
		testRole(t, 10, "STUDENT", true),
		testRole(t, 11, "TRAINER", true),
	}
	f.perms.roleCodes[11] = []string{"BATCH_VIEW", "TRAINER_AVAILABILITY"}

	perms, err := f.resolver.Resolve(context.Background(), 1, "trainer")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"BATCH_VIEW", "TRAINER_AVAILABILITY"}, perms)

	// The successfully resolved explicit role is persisted as the sticky hint.
	assert.Contains(t, f.users.updated, uint(1))
	assert.Equal(t, "TRAINER", f.users.users[1].LastActiveRole())
}

func TestResolveFallbackPrefersLastActiveRole(t *testing.T) {
	f := newResolverFixture()
	f.users.users[1] = testUser(t, 1, false, "TRAINER")
	f.userRoles.roles[1] = []*access.Role{
		testRole(t, 10, "STUDENT", true), // earliest binding
		testRole(t, 11, "TRAINER", true),
	}
	f.perms.roleCodes[10] = []string{"COURSE_VIEW"}
	f.perms.roleCodes[11] = []string{"BATCH_VIEW"}

	perms, err := f.resolver.Resolve(context.Background(), 1, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"BATCH_VIEW"}, perms)
}

func TestResolveFallbackToEarliestBinding(t *testing.T) {
	f := newResolverFixture()
	f.users.users[1] = testUser(t, 1, false, "")
	f.userRoles.roles[1] = []*access.Role{
		testRole(t, 10, "STUDENT", true),
		testRole(t, 11, "TRAINER", true),
	}
	f.perms.roleCodes[10] = []string{"COURSE_VIEW"}

	perms, err := f.resolver.Resolve(context.Background(), 1, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"COURSE_VIEW"}, perms)
}

func TestResolveInactiveRoleYieldsEmptySet(t *testing.T) {
	f := newResolverFixture()
	f.users.users[1] = testUser(t, 1, false, "")
	f.userRoles.roles[1] = []*access.Role{testRole(t, 10, "STUDENT", false)}
	f.perms.roleCodes[10] = []string{"COURSE_VIEW"}

	perms, err := f.resolver.Resolve(context.Background(), 1, "STUDENT")
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestResolveNoBindingsYieldsEmptySet(t *testing.T) {
	f := newResolverFixture()
	f.users.users[1] = testUser(t, 1, false, "")

	perms, err := f.resolver.Resolve(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestResolveOverridesDenyWins(t *testing.T) {
	f := newResolverFixture()
	f.users.users[1] = testUser(t, 1, false, "")
	f.userRoles.roles[1] = []*access.Role{testRole(t, 10, "STUDENT", true)}
	f.perms.roleCodes[10] = []string{"COURSE_VIEW", "BATCH_VIEW"}
	f.overrides.codes[1] = &access.OverrideCodes{
		Allowed: []string{"PAYMENT_VIEW", "BATCH_VIEW"},
		Denied:  []string{"BATCH_VIEW", "COURSE_VIEW"},
	}

	perms, err := f.resolver.Resolve(context.Background(), 1, "STUDENT")
	require.NoError(t, err)
	// BATCH_VIEW is both allowed and denied: deny wins. COURSE_VIEW is
	// denied out of the role grant. Only the pure allow survives.
	assert.ElementsMatch(t, []string{"PAYMENT_VIEW"}, perms)
}

func TestResolveSurvivesCacheOutage(t *testing.T) {
	f := newResolverFixture()
	f.users.users[1] = testUser(t, 1, false, "")
	f.userRoles.roles[1] = []*access.Role{testRole(t, 10, "STUDENT", true)}
	f.perms.roleCodes[10] = []string{"COURSE_VIEW"}
	f.cache.failing = true

	perms, err := f.resolver.Resolve(context.Background(), 1, "STUDENT")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"COURSE_VIEW"}, perms)
}

func TestResolveUsesRoleCodeCacheAcrossUsers(t *testing.T) {
	f := newResolverFixture()
	f.users.users[1] = testUser(t, 1, false, "")
	f.users.users[2] = testUser(t, 2, false, "")
	role := testRole(t, 10, "STUDENT", true)
	f.userRoles.roles[1] = []*access.Role{role}
	f.userRoles.roles[2] = []*access.Role{role}
	f.perms.roleCodes[10] = []string{"COURSE_VIEW"}

	_, err := f.resolver.Resolve(context.Background(), 1, "STUDENT")
	require.NoError(t, err)

	// Remove the DB data; the second user must still resolve from cache.
	f.perms.roleCodes[10] = nil
	perms, err := f.resolver.Resolve(context.Background(), 2, "STUDENT")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"COURSE_VIEW"}, perms)
}

func TestCheckPermission(t *testing.T) {
	f := newResolverFixture()
	f.users.users[1] = testUser(t, 1, false, "")
	f.userRoles.roles[1] = []*access.Role{testRole(t, 10, "STUDENT", true)}
	f.perms.roleCodes[10] = []string{"COURSE_VIEW"}
	f.users.users[2] = testUser(t, 2, true, "")

	ok, err := f.resolver.CheckPermission(context.Background(), 1, "COURSE_VIEW", "STUDENT")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.resolver.CheckPermission(context.Background(), 1, "PAYMENT_APPROVE", "STUDENT")
	require.NoError(t, err)
	assert.False(t, ok)

	// Superuser bypasses resolution entirely.
	ok, err = f.resolver.CheckPermission(context.Background(), 2, "ANYTHING_AT_ALL", "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInvalidatorDropsAffectedKeysOnly(t *testing.T) {
	f := newResolverFixture()
	inv := NewCacheInvalidator(f.cache, logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil))))

	f.cache.codes[access.RolePermsKey("STUDENT")] = []string{"COURSE_VIEW"}
	f.cache.codes[access.RolePermsKey("TRAINER")] = []string{"BATCH_VIEW"}
	f.cache.codes[access.SuperuserPermsKey()] = []string{"EVERYTHING"}
	f.cache.overrides[access.UserOverridesKey(1)] = &access.OverrideCodes{}

	inv.RoleChanged(context.Background(), "STUDENT")

	_, ok := f.cache.codes[access.RolePermsKey("STUDENT")]
	assert.False(t, ok)
	_, ok = f.cache.codes[access.SuperuserPermsKey()]
	assert.False(t, ok)
	_, ok = f.cache.codes[access.RolePermsKey("TRAINER")]
	assert.True(t, ok, "unrelated role keys must survive")

	inv.UserOverridesChanged(context.Background(), 1)
	_, ok = f.cache.overrides[access.UserOverridesKey(1)]
	assert.False(t, ok)
}
