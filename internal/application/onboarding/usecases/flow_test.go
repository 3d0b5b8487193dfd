package usecases

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"instra/internal/application/onboarding/dto"
	"instra/internal/application/onboarding/services"
	"instra/internal/application/provisioning"
	"instra/internal/domain/access"
	"instra/internal/domain/identity"
	"instra/internal/domain/onboarding"
	"instra/internal/domain/profile"
	"instra/internal/shared/db"
	appErrors "instra/internal/shared/errors"
)

// The flow test exercises invite, submit and approve against the real
// use cases with in-memory repositories; only the transaction manager
// runs on a throwaway sqlite handle.

type memUserRepo struct {
	byID   map[uint]*identity.User
	nextID uint
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: make(map[uint]*identity.User), nextID: 1}
}

func (r *memUserRepo) Create(ctx context.Context, user *identity.User) error {
	if err := user.SetID(r.nextID); err != nil {
		return err
	}
	r.nextID++
	r.byID[user.ID()] = user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uint) (*identity.User, error) {
	return r.byID[id], nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	for _, user := range r.byID {
		if user.Email() == email {
			return user, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	user, _ := r.GetByEmail(ctx, email)
	return user != nil, nil
}

func (r *memUserRepo) List(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	return nil, 0, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *identity.User) error {
	r.byID[user.ID()] = user
	return nil
}

type roleCatalogRepo struct {
	byCode map[string]*access.Role
}

func (r *roleCatalogRepo) Create(ctx context.Context, role *access.Role) error { return nil }
func (r *roleCatalogRepo) GetByID(ctx context.Context, id uint) (*access.Role, error) {
	for _, role := range r.byCode {
		if role.ID() == id {
			return role, nil
		}
	}
	return nil, nil
}
func (r *roleCatalogRepo) GetByCode(ctx context.Context, code string) (*access.Role, error) {
	return r.byCode[code], nil
}
func (r *roleCatalogRepo) GetByCodeForUpdate(ctx context.Context, code string) (*access.Role, error) {
	return r.byCode[code], nil
}
func (r *roleCatalogRepo) List(ctx context.Context, filter access.RoleFilter) ([]*access.Role, int64, error) {
	return nil, 0, nil
}
func (r *roleCatalogRepo) Update(ctx context.Context, role *access.Role) error { return nil }
func (r *roleCatalogRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, ok := r.byCode[code]
	return ok, nil
}

type memBindingRepo struct {
	bindings []*access.UserRoleBinding
	nextID   uint
}

func newMemBindingRepo() *memBindingRepo {
	return &memBindingRepo{nextID: 1}
}

func (r *memBindingRepo) Assign(ctx context.Context, binding *access.UserRoleBinding) error {
	if err := binding.SetID(r.nextID); err != nil {
		return err
	}
	r.nextID++
	r.bindings = append(r.bindings, binding)
	return nil
}

func (r *memBindingRepo) Remove(ctx context.Context, userID, roleID uint) error { return nil }

func (r *memBindingRepo) Holds(ctx context.Context, userID, roleID uint) (bool, error) {
	for _, b := range r.bindings {
		if b.UserID() == userID && b.RoleID() == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBindingRepo) ListRolesForUser(ctx context.Context, userID uint) ([]*access.Role, error) {
	return nil, nil
}

func (r *memBindingRepo) ListBindingsForRole(ctx context.Context, roleID uint) ([]*access.UserRoleBinding, error) {
	out := make([]*access.UserRoleBinding, 0)
	for _, b := range r.bindings {
		if b.RoleID() == roleID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBindingRepo) DeleteBinding(ctx context.Context, bindingID uint) error { return nil }

func (r *memBindingRepo) RebindToRole(ctx context.Context, bindingID, newRoleID uint) error {
	return nil
}

func (r *memBindingRepo) forUser(userID uint) []*access.UserRoleBinding {
	out := make([]*access.UserRoleBinding, 0)
	for _, b := range r.bindings {
		if b.UserID() == userID {
			out = append(out, b)
		}
	}
	return out
}

type dedicatedConfigRepo struct {
	config *profile.RoleProfileConfig
}

func (r *dedicatedConfigRepo) Create(ctx context.Context, config *profile.RoleProfileConfig) error {
	return nil
}
func (r *dedicatedConfigRepo) GetByRoleCode(ctx context.Context, roleCode string) (*profile.RoleProfileConfig, error) {
	if r.config != nil && r.config.RoleCode() == roleCode {
		return r.config, nil
	}
	return nil, nil
}
func (r *dedicatedConfigRepo) List(ctx context.Context) ([]*profile.RoleProfileConfig, error) {
	return nil, nil
}
func (r *dedicatedConfigRepo) Update(ctx context.Context, config *profile.RoleProfileConfig) error {
	return nil
}

type captureStrategy struct {
	displayID string
	created   []profile.CreateInput
}

func (s *captureStrategy) Create(ctx context.Context, input profile.CreateInput) (string, error) {
	s.created = append(s.created, input)
	return s.displayID, nil
}

func (s *captureStrategy) Resolve(roleCode string, storage profile.StorageKind) (profile.Strategy, error) {
	return s, nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func newTestTxManager(t *testing.T) *db.TransactionManager {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db.NewTransactionManager(database)
}

func activeRole(t *testing.T, id uint, code string) *access.Role {
	t.Helper()
	now := time.Now()
	role, err := access.ReconstructRole(id, code, code, "", true, false, nil, nil, "", now, now)
	require.NoError(t, err)
	return role
}

func TestOnboardingFlow(t *testing.T) {
	ctx := context.Background()
	operator := uint(9)

	requestRepo := newMemRequestRepo()
	userRepo := newMemUserRepo()
	roleRepo := &roleCatalogRepo{byCode: map[string]*access.Role{
		"STUDENT": activeRole(t, 3, "STUDENT"),
	}}
	bindingRepo := newMemBindingRepo()
	config, err := profile.ReconstructRoleProfileConfig(1, "STUDENT", true, profile.StorageDedicated, time.Now(), time.Now())
	require.NoError(t, err)
	configRepo := &dedicatedConfigRepo{config: config}
	strategy := &captureStrategy{displayID: "STU26001"}
	mailer := &fakeMailer{}
	txManager := newTestTxManager(t)

	schema := services.NewSchemaService(configRepo, stubFieldRepo{}, testLogger())
	merge := services.NewMergeService(schema)
	provisioner := provisioning.NewService(userRepo, roleRepo, bindingRepo, configRepo, strategy, plainHasher{}, noopRecorder{}, testLogger())

	createUC := NewCreateRequestUseCase(requestRepo, roleRepo, userRepo, fakeTokens{}, mailer, txManager, noopRecorder{}, 48, testLogger())
	submitUC := NewSubmitRegistrationUseCase(requestRepo, fakeTokens{}, merge, noopRecorder{}, testLogger())
	approveUC := NewApproveRequestUseCase(requestRepo, merge, provisioner, mailer, txManager, noopRecorder{}, testLogger())

	created, err := createUC.Execute(ctx, operator, dto.CreateRequestRequest{
		Email:    "Alice@Example.com",
		Name:     "Alice Lee",
		RoleCode: "student",
	})
	require.NoError(t, err)
	require.NotNil(t, created.Request)
	assert.False(t, created.AlreadyExists)
	assert.Equal(t, string(onboarding.StatusInvited), created.Request.Status)
	assert.Equal(t, "ONB00001", created.Request.Code)
	require.Len(t, mailer.inviteTokens, 1)

	t.Run("second invite for the same email succeeds benignly without a new row", func(t *testing.T) {
		dup, err := createUC.Execute(ctx, operator, dto.CreateRequestRequest{
			Email:    "alice@example.com",
			Name:     "Alice Lee",
			RoleCode: "STUDENT",
		})
		require.NoError(t, err)
		assert.True(t, dup.AlreadyExists)
		assert.Nil(t, dup.Request)
		assert.Len(t, requestRepo.byRID, 1)
		assert.Len(t, mailer.inviteTokens, 1, "no second invite email goes out")
	})

	// The smallest valid student submission: a first name plus the two
	// enrollment choices, nested the way the public form posts them.
	submitted, err := submitUC.Execute(ctx, dto.SubmitRegistrationRequest{
		Token: mailer.inviteTokens[0],
		Payload: map[string]any{
			"first_name": "Alice",
			"profile": map[string]any{
				"mode_of_class": "ON",
				"week_type":     "WD",
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, string(onboarding.StatusPendingApproval), submitted.Status)

	approved, err := approveUC.Execute(ctx, operator, created.Request.RID, true)
	require.NoError(t, err)
	assert.Equal(t, "STU26001", approved.DisplayID)
	require.NotZero(t, approved.UserID)

	stored, err := requestRepo.GetByRID(ctx, created.Request.RID)
	require.NoError(t, err)
	assert.Equal(t, onboarding.StatusOnboarded, stored.Status())

	user, err := userRepo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.MustChangePassword())

	bindings := bindingRepo.forUser(user.ID())
	require.Len(t, bindings, 1)
	assert.Equal(t, uint(3), bindings[0].RoleID())

	require.Len(t, strategy.created, 1)
	assert.Equal(t, user.ID(), strategy.created[0].UserID)
	assert.Equal(t, "STUDENT", strategy.created[0].RoleCode)

	require.Len(t, mailer.welcomeTo, 1)
	assert.Equal(t, "alice@example.com", mailer.welcomeTo[0])

	t.Run("approving again is a state conflict and provisions nothing new", func(t *testing.T) {
		_, err := approveUC.Execute(ctx, operator, created.Request.RID, true)
		require.Error(t, err)
		assert.True(t, appErrors.IsStateConflictError(err))
		assert.Len(t, userRepo.byID, 1)
		assert.Len(t, strategy.created, 1)
	})
}

type failingStrategy struct {
	cause error
}

func (s *failingStrategy) Create(ctx context.Context, input profile.CreateInput) (string, error) {
	return "", s.cause
}

func (s *failingStrategy) Resolve(roleCode string, storage profile.StorageKind) (profile.Strategy, error) {
	return s, nil
}

func pendingStudentRequest(t *testing.T) *onboarding.Request {
	t.Helper()
	request := invitedRequest(t, time.Hour)
	require.NoError(t, request.SubmitUserPayload(studentRegistration()))
	return request
}

func TestApproveProvisioningFailureDropsRequest(t *testing.T) {
	ctx := context.Background()
	request := pendingStudentRequest(t)
	requestRepo := newMemRequestRepo(request)

	roleRepo := &roleCatalogRepo{byCode: map[string]*access.Role{
		"STUDENT": activeRole(t, 3, "STUDENT"),
	}}
	cause := stderrors.New("profile store rejected the row")
	provisioner := provisioning.NewService(newMemUserRepo(), roleRepo, newMemBindingRepo(), stubConfigRepo{}, &failingStrategy{cause: cause}, plainHasher{}, noopRecorder{}, testLogger())
	mailer := &fakeMailer{}
	approveUC := NewApproveRequestUseCase(requestRepo, testMergeService(), provisioner, mailer, newTestTxManager(t), noopRecorder{}, testLogger())

	_, err := approveUC.Execute(ctx, 9, request.RID(), true)
	require.Error(t, err)
	assert.ErrorContains(t, err, "profile store rejected the row")

	// The failure lands the request in DROPPED with the cause on record,
	// and no welcome email goes out.
	stored, err := requestRepo.GetByRID(ctx, request.RID())
	require.NoError(t, err)
	assert.Equal(t, onboarding.StatusDropped, stored.Status())
	assert.Contains(t, stored.LastError(), "profile store rejected the row")
	assert.Empty(t, mailer.welcomeTo)

	t.Run("the dropped request cannot be approved afterwards", func(t *testing.T) {
		_, err := approveUC.Execute(ctx, 9, request.RID(), true)
		require.Error(t, err)
		assert.True(t, appErrors.IsStateConflictError(err))
	})
}

func TestApproveSkipsWelcomeEmailWhenDisabled(t *testing.T) {
	ctx := context.Background()
	request := pendingStudentRequest(t)
	requestRepo := newMemRequestRepo(request)

	roleRepo := &roleCatalogRepo{byCode: map[string]*access.Role{
		"STUDENT": activeRole(t, 3, "STUDENT"),
	}}
	provisioner := provisioning.NewService(newMemUserRepo(), roleRepo, newMemBindingRepo(), stubConfigRepo{}, &captureStrategy{displayID: "STU26002"}, plainHasher{}, noopRecorder{}, testLogger())
	mailer := &fakeMailer{}
	approveUC := NewApproveRequestUseCase(requestRepo, testMergeService(), provisioner, mailer, newTestTxManager(t), noopRecorder{}, testLogger())

	approved, err := approveUC.Execute(ctx, 9, request.RID(), false)
	require.NoError(t, err)
	require.NotZero(t, approved.UserID)
	assert.Empty(t, mailer.welcomeTo, "welcome email suppressed on request")
}

func TestApproveRejectsUnsubmittedRequest(t *testing.T) {
	ctx := context.Background()
	request := invitedRequest(t, time.Hour)
	requestRepo := newMemRequestRepo(request)

	roleRepo := &roleCatalogRepo{byCode: map[string]*access.Role{
		"STUDENT": activeRole(t, 3, "STUDENT"),
	}}
	schema := services.NewSchemaService(stubConfigRepo{}, stubFieldRepo{}, testLogger())
	merge := services.NewMergeService(schema)
	provisioner := provisioning.NewService(newMemUserRepo(), roleRepo, newMemBindingRepo(), stubConfigRepo{}, &captureStrategy{}, plainHasher{}, noopRecorder{}, testLogger())
	approveUC := NewApproveRequestUseCase(requestRepo, merge, provisioner, &fakeMailer{}, newTestTxManager(t), noopRecorder{}, testLogger())

	_, err := approveUC.Execute(ctx, 9, request.RID(), true)
	require.Error(t, err)
	assert.True(t, appErrors.IsStateConflictError(err))
}
