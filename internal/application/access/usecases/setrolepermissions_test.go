package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instra/internal/application/access/dto"
	"instra/internal/application/access/services"
	"instra/internal/domain/access"
	appErrors "instra/internal/shared/errors"
)

type fakePermRepo struct {
	byID      map[uint]*access.Permission
	grants    map[uint][]uint
	roleCodes map[uint]string
	setCalls  int
}

func newFakePermRepo(perms ...*access.Permission) *fakePermRepo {
	repo := &fakePermRepo{
		byID:      make(map[uint]*access.Permission),
		grants:    make(map[uint][]uint),
		roleCodes: make(map[uint]string),
	}
	for _, perm := range perms {
		repo.byID[perm.ID()] = perm
	}
	return repo
}

func (r *fakePermRepo) Create(ctx context.Context, permission *access.Permission) error { return nil }
func (r *fakePermRepo) GetByID(ctx context.Context, id uint) (*access.Permission, error) {
	return r.byID[id], nil
}
func (r *fakePermRepo) GetByCode(ctx context.Context, code string) (*access.Permission, error) {
	return nil, nil
}
func (r *fakePermRepo) GetByIDs(ctx context.Context, ids []uint) ([]*access.Permission, error) {
	out := make([]*access.Permission, 0, len(ids))
	for _, id := range ids {
		if perm, ok := r.byID[id]; ok {
			out = append(out, perm)
		}
	}
	return out, nil
}
func (r *fakePermRepo) List(ctx context.Context, filter access.PermissionFilter) ([]*access.Permission, int64, error) {
	return nil, 0, nil
}
func (r *fakePermRepo) Update(ctx context.Context, permission *access.Permission) error { return nil }
func (r *fakePermRepo) Delete(ctx context.Context, id uint) error {
	delete(r.byID, id)
	for roleID, permIDs := range r.grants {
		kept := make([]uint, 0, len(permIDs))
		for _, permID := range permIDs {
			if permID != id {
				kept = append(kept, permID)
			}
		}
		r.grants[roleID] = kept
	}
	return nil
}
func (r *fakePermRepo) ListAllCodes(ctx context.Context) ([]string, error) { return nil, nil }
func (r *fakePermRepo) ListCodesForRole(ctx context.Context, roleID uint) ([]string, error) {
	codes := make([]string, 0)
	for _, id := range r.grants[roleID] {
		if perm, ok := r.byID[id]; ok {
			codes = append(codes, perm.Code())
		}
	}
	return codes, nil
}
func (r *fakePermRepo) ListRoleCodesForPermission(ctx context.Context, permissionID uint) ([]string, error) {
	codes := make([]string, 0)
	for roleID, permIDs := range r.grants {
		for _, permID := range permIDs {
			if permID == permissionID {
				codes = append(codes, r.roleCodes[roleID])
				break
			}
		}
	}
	return codes, nil
}
func (r *fakePermRepo) SetForRole(ctx context.Context, roleID uint, permissionIDs []uint) error {
	r.grants[roleID] = permissionIDs
	r.setCalls++
	return nil
}
func (r *fakePermRepo) AssignToRole(ctx context.Context, roleID uint, permissionIDs []uint) error {
	return nil
}
func (r *fakePermRepo) RemoveFromRole(ctx context.Context, roleID uint, permissionIDs []uint) error {
	return nil
}
func (r *fakePermRepo) ListForRole(ctx context.Context, roleID uint) ([]*access.Permission, error) {
	return r.GetByIDs(ctx, r.grants[roleID])
}

func reconstructPermission(t *testing.T, id uint, code string) *access.Permission {
	t.Helper()
	now := time.Now()
	perm, err := access.ReconstructPermission(id, code, code, "ACCESS", "", now, now)
	require.NoError(t, err)
	return perm
}

func TestSetRolePermissionsDropsRoleCache(t *testing.T) {
	ctx := context.Background()
	roleRepo := &fakeRoleRepo{byCode: map[string]*access.Role{
		"MEMBER": reconstructRole(t, 2, "MEMBER", true, false),
	}}
	permRepo := newFakePermRepo(
		reconstructPermission(t, 1, "STUDENT_VIEW"),
		reconstructPermission(t, 2, "STUDENT_EDIT"),
	)
	cache := &recordingCache{}
	invalidator := services.NewCacheInvalidator(cache, testLogger())

	uc := NewSetRolePermissionsUseCase(roleRepo, permRepo, newTestTxManager(t), invalidator, noopRecorder{}, testLogger())

	resp, err := uc.Execute(ctx, 99, 2, dto.SetRolePermissionsRequest{PermissionIDs: []uint{1, 2}})
	require.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.Equal(t, []uint{1, 2}, permRepo.grants[2])
	assert.Contains(t, cache.deleted, access.RolePermsKey("MEMBER"))

	// Revocation replaces the set and drops the cached codes again, so the
	// next resolution reads the shrunken grant list from the store.
	cache.deleted = nil
	_, err = uc.Execute(ctx, 99, 2, dto.SetRolePermissionsRequest{PermissionIDs: []uint{1}})
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, permRepo.grants[2])
	assert.Contains(t, cache.deleted, access.RolePermsKey("MEMBER"))
}

func TestSetRolePermissionsRejectsUnknownIDs(t *testing.T) {
	roleRepo := &fakeRoleRepo{byCode: map[string]*access.Role{
		"MEMBER": reconstructRole(t, 2, "MEMBER", true, false),
	}}
	permRepo := newFakePermRepo(reconstructPermission(t, 1, "STUDENT_VIEW"))
	invalidator := services.NewCacheInvalidator(&recordingCache{}, testLogger())
	uc := NewSetRolePermissionsUseCase(roleRepo, permRepo, newTestTxManager(t), invalidator, noopRecorder{}, testLogger())

	_, err := uc.Execute(context.Background(), 99, 2, dto.SetRolePermissionsRequest{PermissionIDs: []uint{1, 7}})
	require.Error(t, err)
	assert.True(t, appErrors.IsValidationError(err))
	assert.Zero(t, permRepo.setCalls)
}
