package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instra/internal/application/access/services"
	"instra/internal/domain/access"
	appErrors "instra/internal/shared/errors"
)

func TestDeletePermissionInvalidatesGrantingRoles(t *testing.T) {
	ctx := context.Background()
	permRepo := newFakePermRepo(
		reconstructPermission(t, 1, "STUDENT_VIEW"),
		reconstructPermission(t, 2, "STUDENT_EDIT"),
	)
	permRepo.roleCodes[2] = "MEMBER"
	permRepo.roleCodes[3] = "AUDITOR"
	permRepo.roleCodes[4] = "BYSTANDER"
	permRepo.grants[2] = []uint{1, 2}
	permRepo.grants[3] = []uint{1}
	permRepo.grants[4] = []uint{2}

	cache := &recordingCache{}
	invalidator := services.NewCacheInvalidator(cache, testLogger())
	uc := NewDeletePermissionUseCase(permRepo, invalidator, noopRecorder{}, testLogger())

	require.NoError(t, uc.Execute(ctx, 99, 1))

	// Every role that granted the code loses its cached set; roles that
	// never held it are untouched.
	assert.Contains(t, cache.deleted, access.RolePermsKey("MEMBER"))
	assert.Contains(t, cache.deleted, access.RolePermsKey("AUDITOR"))
	assert.NotContains(t, cache.deleted, access.RolePermsKey("BYSTANDER"))

	_, stillThere := permRepo.byID[1]
	assert.False(t, stillThere)
	assert.Equal(t, []uint{2}, permRepo.grants[2])
}

func TestDeletePermissionNotFound(t *testing.T) {
	permRepo := newFakePermRepo()
	invalidator := services.NewCacheInvalidator(&recordingCache{}, testLogger())
	uc := NewDeletePermissionUseCase(permRepo, invalidator, noopRecorder{}, testLogger())

	err := uc.Execute(context.Background(), 99, 42)
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFoundError(err))
}
