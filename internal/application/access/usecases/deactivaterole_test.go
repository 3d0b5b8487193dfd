package usecases

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"instra/internal/application/access/dto"
	"instra/internal/application/access/services"
	"instra/internal/domain/access"
	"instra/internal/domain/audit"
	"instra/internal/shared/db"
	appErrors "instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

type fakeRoleRepo struct {
	byCode map[string]*access.Role
}

func (r *fakeRoleRepo) Create(ctx context.Context, role *access.Role) error { return nil }
func (r *fakeRoleRepo) GetByID(ctx context.Context, id uint) (*access.Role, error) {
	for _, role := range r.byCode {
		if role.ID() == id {
			return role, nil
		}
	}
	return nil, nil
}
func (r *fakeRoleRepo) GetByCode(ctx context.Context, code string) (*access.Role, error) {
	return r.byCode[code], nil
}
func (r *fakeRoleRepo) GetByCodeForUpdate(ctx context.Context, code string) (*access.Role, error) {
	return r.byCode[code], nil
}
func (r *fakeRoleRepo) List(ctx context.Context, filter access.RoleFilter) ([]*access.Role, int64, error) {
	return nil, 0, nil
}
func (r *fakeRoleRepo) Update(ctx context.Context, role *access.Role) error {
	r.byCode[role.Code()] = role
	return nil
}
func (r *fakeRoleRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, ok := r.byCode[code]
	return ok, nil
}

// bindingRow is the fake's mutable backing for a user_roles row, so
// rebinds and deletes behave like the real table.
type bindingRow struct {
	id     uint
	userID uint
	roleID uint
}

type fakeBindingRepo struct {
	rows   []*bindingRow
	nextID uint
}

func newFakeBindingRepo(pairs ...[2]uint) *fakeBindingRepo {
	repo := &fakeBindingRepo{nextID: 1}
	for _, pair := range pairs {
		repo.rows = append(repo.rows, &bindingRow{id: repo.nextID, userID: pair[0], roleID: pair[1]})
		repo.nextID++
	}
	return repo
}

func (r *fakeBindingRepo) Assign(ctx context.Context, binding *access.UserRoleBinding) error {
	r.rows = append(r.rows, &bindingRow{id: r.nextID, userID: binding.UserID(), roleID: binding.RoleID()})
	r.nextID++
	return nil
}

func (r *fakeBindingRepo) Remove(ctx context.Context, userID, roleID uint) error {
	for i, row := range r.rows {
		if row.userID == userID && row.roleID == roleID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeBindingRepo) Holds(ctx context.Context, userID, roleID uint) (bool, error) {
	for _, row := range r.rows {
		if row.userID == userID && row.roleID == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBindingRepo) ListRolesForUser(ctx context.Context, userID uint) ([]*access.Role, error) {
	return nil, nil
}

func (r *fakeBindingRepo) ListBindingsForRole(ctx context.Context, roleID uint) ([]*access.UserRoleBinding, error) {
	out := make([]*access.UserRoleBinding, 0)
	for _, row := range r.rows {
		if row.roleID != roleID {
			continue
		}
		binding, err := access.ReconstructUserRoleBinding(row.id, row.userID, row.roleID, time.Now(), nil)
		if err != nil {
			return nil, err
		}
		out = append(out, binding)
	}
	return out, nil
}

func (r *fakeBindingRepo) DeleteBinding(ctx context.Context, bindingID uint) error {
	for i, row := range r.rows {
		if row.id == bindingID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeBindingRepo) RebindToRole(ctx context.Context, bindingID, newRoleID uint) error {
	for _, row := range r.rows {
		if row.id == bindingID {
			row.roleID = newRoleID
			return nil
		}
	}
	return nil
}

func (r *fakeBindingRepo) rolesHeldBy(userID uint) []uint {
	out := make([]uint, 0)
	for _, row := range r.rows {
		if row.userID == userID {
			out = append(out, row.roleID)
		}
	}
	return out
}

type recordingCache struct {
	deleted []access.CacheKey
}

func (c *recordingCache) GetCodes(ctx context.Context, key access.CacheKey) ([]string, bool, error) {
	return nil, false, nil
}
func (c *recordingCache) SetCodes(ctx context.Context, key access.CacheKey, codes []string) error {
	return nil
}
func (c *recordingCache) GetOverrides(ctx context.Context, key access.CacheKey) (*access.OverrideCodes, bool, error) {
	return nil, false, nil
}
func (c *recordingCache) SetOverrides(ctx context.Context, key access.CacheKey, codes *access.OverrideCodes) error {
	return nil
}
func (c *recordingCache) Delete(ctx context.Context, keys ...access.CacheKey) error {
	c.deleted = append(c.deleted, keys...)
	return nil
}

type noopRecorder struct{}

func (noopRecorder) Record(ctx context.Context, record audit.Record) {}

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestTxManager(t *testing.T) *db.TransactionManager {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db.NewTransactionManager(database)
}

func reconstructRole(t *testing.T, id uint, code string, isActive, isSystem bool) *access.Role {
	t.Helper()
	now := time.Now()
	role, err := access.ReconstructRole(id, code, code, "", isActive, isSystem, nil, nil, "", now, now)
	require.NoError(t, err)
	return role
}

func TestDeactivateRoleReassignsEveryHolder(t *testing.T) {
	ctx := context.Background()
	roleRepo := &fakeRoleRepo{byCode: map[string]*access.Role{
		"LEGACY": reconstructRole(t, 1, "LEGACY", true, false),
		"MEMBER": reconstructRole(t, 2, "MEMBER", true, false),
	}}
	// User 10 holds only LEGACY; user 20 holds both.
	bindingRepo := newFakeBindingRepo([2]uint{10, 1}, [2]uint{20, 1}, [2]uint{20, 2})
	cache := &recordingCache{}
	invalidator := services.NewCacheInvalidator(cache, testLogger())

	uc := NewDeactivateRoleUseCase(roleRepo, bindingRepo, newTestTxManager(t), invalidator, noopRecorder{}, "MEMBER", testLogger())

	resp, err := uc.Execute(ctx, 99, "legacy", dto.DeactivateRoleRequest{
		Strategy:   StrategyReassign,
		TargetRole: "MEMBER",
		Reason:     "merged into member",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ReassignedCount)
	assert.Equal(t, 1, resp.RemovedDuplicateCount)

	assert.Equal(t, []uint{2}, bindingRepo.rolesHeldBy(10))
	assert.Equal(t, []uint{2}, bindingRepo.rolesHeldBy(20))

	legacy := roleRepo.byCode["LEGACY"]
	assert.False(t, legacy.IsActive())
	assert.Equal(t, "merged into member", legacy.DeletionReason())

	assert.Contains(t, cache.deleted, access.RolePermsKey("LEGACY"))
	assert.Contains(t, cache.deleted, access.RolePermsKey("MEMBER"))
}

func TestDeactivateRoleFallbackStrategy(t *testing.T) {
	ctx := context.Background()
	roleRepo := &fakeRoleRepo{byCode: map[string]*access.Role{
		"LEGACY": reconstructRole(t, 1, "LEGACY", true, false),
		"MEMBER": reconstructRole(t, 2, "MEMBER", true, false),
	}}
	bindingRepo := newFakeBindingRepo([2]uint{10, 1})
	invalidator := services.NewCacheInvalidator(&recordingCache{}, testLogger())

	uc := NewDeactivateRoleUseCase(roleRepo, bindingRepo, newTestTxManager(t), invalidator, noopRecorder{}, "MEMBER", testLogger())

	resp, err := uc.Execute(ctx, 99, "LEGACY", dto.DeactivateRoleRequest{
		Strategy: StrategyFallback,
		Reason:   "retired",
	})
	require.NoError(t, err)
	assert.Equal(t, "MEMBER", resp.TargetRoleCode)
	assert.Equal(t, 1, resp.ReassignedCount)
}

func TestDeactivateRoleRejectsBadRequests(t *testing.T) {
	ctx := context.Background()
	roleRepo := &fakeRoleRepo{byCode: map[string]*access.Role{
		"ADMIN":    reconstructRole(t, 1, "ADMIN", true, true),
		"LEGACY":   reconstructRole(t, 2, "LEGACY", true, false),
		"DORMANT":  reconstructRole(t, 3, "DORMANT", false, false),
		"MEMBER":   reconstructRole(t, 4, "MEMBER", true, false),
		"INACTIVE": reconstructRole(t, 5, "INACTIVE", false, false),
	}}
	bindingRepo := newFakeBindingRepo()
	invalidator := services.NewCacheInvalidator(&recordingCache{}, testLogger())
	uc := NewDeactivateRoleUseCase(roleRepo, bindingRepo, newTestTxManager(t), invalidator, noopRecorder{}, "MEMBER", testLogger())

	t.Run("system role", func(t *testing.T) {
		_, err := uc.Execute(ctx, 99, "ADMIN", dto.DeactivateRoleRequest{
			Strategy: StrategyFallback, Reason: "x",
		})
		require.Error(t, err)
		assert.True(t, appErrors.IsStateConflictError(err))
	})

	t.Run("target equals role", func(t *testing.T) {
		_, err := uc.Execute(ctx, 99, "LEGACY", dto.DeactivateRoleRequest{
			Strategy: StrategyReassign, TargetRole: "LEGACY", Reason: "x",
		})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidationError(err))
	})

	t.Run("inactive target", func(t *testing.T) {
		_, err := uc.Execute(ctx, 99, "LEGACY", dto.DeactivateRoleRequest{
			Strategy: StrategyReassign, TargetRole: "INACTIVE", Reason: "x",
		})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidationError(err))
	})

	t.Run("already inactive role", func(t *testing.T) {
		_, err := uc.Execute(ctx, 99, "DORMANT", dto.DeactivateRoleRequest{
			Strategy: StrategyFallback, Reason: "x",
		})
		require.Error(t, err)
		assert.True(t, appErrors.IsStateConflictError(err))
	})
}
