package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"instra/internal/domain/onboarding"
	"instra/internal/infrastructure/persistence/models"
	"instra/internal/shared/id"
)

func setupTestDB(t *testing.T) *gorm.DB {
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = database.AutoMigrate(&models.OnboardRequestModel{})
	require.NoError(t, err)

	return database
}

func createTestRequest(t *testing.T, email string) *onboarding.Request {
	invitedBy := uint(1)
	request, err := onboarding.NewRequest(email, "Test Person", "STUDENT", &invitedBy, time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	return request
}

func TestOnboardRequestRepository_CreateAndGet(t *testing.T) {
	database := setupTestDB(t)
	repo := NewOnboardRequestRepository(database)
	ctx := context.Background()

	t.Run("create assigns id and round-trips by rid", func(t *testing.T) {
		request := createTestRequest(t, "alice@example.com")

		err := repo.Create(ctx, request)
		require.NoError(t, err)
		assert.NotZero(t, request.ID())

		found, err := repo.GetByRID(ctx, request.RID())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, request.Email(), found.Email())
		assert.Equal(t, request.RoleCode(), found.RoleCode())
		assert.Equal(t, onboarding.StatusInvited, found.Status())
		assert.Equal(t, request.Nonce(), found.Nonce())
	})

	t.Run("duplicate rid fails", func(t *testing.T) {
		request := createTestRequest(t, "bob@example.com")
		require.NoError(t, repo.Create(ctx, request))

		// Force the same rid through the model layer.
		model := models.OnboardRequestModel{
			RID:       request.RID(),
			Email:     "bob2@example.com",
			RoleCode:  "STUDENT",
			Status:    onboarding.StatusInvited.String(),
			Nonce:     id.MustGenerate(id.NonceLength),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		assert.Error(t, database.Create(&model).Error)
	})

	t.Run("missing rid returns nil without error", func(t *testing.T) {
		found, err := repo.GetByRID(ctx, "no-such-rid")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestOnboardRequestRepository_UpdatePersistsLifecycle(t *testing.T) {
	database := setupTestDB(t)
	repo := NewOnboardRequestRepository(database)
	ctx := context.Background()

	request := createTestRequest(t, "carol@example.com")
	require.NoError(t, repo.Create(ctx, request))
	require.NoError(t, request.AssignCode(id.FormatDisplayCode("ONB", request.ID())))
	require.NoError(t, repo.Update(ctx, request))

	require.NoError(t, request.SubmitUserPayload(map[string]any{
		"first_name":         "Carol",
		"profile.blood_group": "O+",
	}))
	require.NoError(t, repo.Update(ctx, request))

	found, err := repo.GetByRID(ctx, request.RID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, onboarding.StatusPendingApproval, found.Status())
	assert.Equal(t, request.Code(), found.Code())
	assert.NotNil(t, found.SubmittedAt())
	assert.Equal(t, "Carol", found.UserPayload()["first_name"])
	assert.Equal(t, "O+", found.UserPayload()["profile.blood_group"])

	require.NoError(t, found.Approve(7, 42))
	require.NoError(t, repo.Update(ctx, found))

	decided, err := repo.GetByRID(ctx, request.RID())
	require.NoError(t, err)
	assert.Equal(t, onboarding.StatusOnboarded, decided.Status())
	require.NotNil(t, decided.ProvisionedUserID())
	assert.Equal(t, uint(42), *decided.ProvisionedUserID())
	require.NotNil(t, decided.DecidedBy())
	assert.Equal(t, uint(7), *decided.DecidedBy())
}

func TestOnboardRequestRepository_HasActiveForEmail(t *testing.T) {
	database := setupTestDB(t)
	repo := NewOnboardRequestRepository(database)
	ctx := context.Background()

	request := createTestRequest(t, "dave@example.com")
	require.NoError(t, repo.Create(ctx, request))

	active, err := repo.HasActiveForEmail(ctx, "dave@example.com")
	require.NoError(t, err)
	assert.True(t, active)

	actor := uint(1)
	require.NoError(t, request.Drop(&actor, "withdrawn"))
	require.NoError(t, repo.Update(ctx, request))

	active, err = repo.HasActiveForEmail(ctx, "dave@example.com")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestOnboardRequestRepository_ListFilters(t *testing.T) {
	database := setupTestDB(t)
	repo := NewOnboardRequestRepository(database)
	ctx := context.Background()

	first := createTestRequest(t, "eve@example.com")
	require.NoError(t, repo.Create(ctx, first))

	second := createTestRequest(t, "frank@example.com")
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, second.SubmitUserPayload(map[string]any{"first_name": "Frank"}))
	require.NoError(t, repo.Update(ctx, second))

	all, total, err := repo.List(ctx, onboarding.RequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	pending, total, err := repo.List(ctx, onboarding.RequestFilter{Status: onboarding.StatusPendingApproval})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pending, 1)
	assert.Equal(t, "frank@example.com", pending[0].Email())

	byEmail, total, err := repo.List(ctx, onboarding.RequestFilter{Email: "eve@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, byEmail, 1)
	assert.Equal(t, onboarding.StatusInvited, byEmail[0].Status())
}
