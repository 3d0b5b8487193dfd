package usecases

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instra/internal/application/onboarding/dto"
	"instra/internal/application/onboarding/services"
	"instra/internal/domain/audit"
	"instra/internal/domain/onboarding"
	"instra/internal/domain/profile"
	appErrors "instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

type fakeTokens struct{}

func (fakeTokens) Generate(rid, nonce string) (string, error) {
	return "tok:" + rid + ":" + nonce, nil
}

func (fakeTokens) Verify(token string) (string, string, error) {
	parts := strings.SplitN(token, ":", 3)
	if len(parts) != 3 || parts[0] != "tok" {
		return "", "", appErrors.NewTokenError()
	}
	return parts[1], parts[2], nil
}

type fakeMailer struct {
	inviteTokens   []string
	sendBackTokens []string
	welcomeTo      []string
}

func (m *fakeMailer) SendInviteEmail(to, name, roleName, token string, expiresAt time.Time) error {
	m.inviteTokens = append(m.inviteTokens, token)
	return nil
}

func (m *fakeMailer) SendSendBackEmail(to, name, reason, token string) error {
	m.sendBackTokens = append(m.sendBackTokens, token)
	return nil
}

func (m *fakeMailer) SendWelcomeEmail(to, name, displayID, tempPassword string) error {
	m.welcomeTo = append(m.welcomeTo, to)
	return nil
}

type noopRecorder struct{}

func (noopRecorder) Record(ctx context.Context, record audit.Record) {}

type memRequestRepo struct {
	byRID  map[string]*onboarding.Request
	nextID uint
}

func newMemRequestRepo(requests ...*onboarding.Request) *memRequestRepo {
	repo := &memRequestRepo{byRID: make(map[string]*onboarding.Request), nextID: 1}
	for _, request := range requests {
		repo.byRID[request.RID()] = request
		if request.ID() >= repo.nextID {
			repo.nextID = request.ID() + 1
		}
	}
	return repo
}

func (r *memRequestRepo) Create(ctx context.Context, request *onboarding.Request) error {
	if request.ID() == 0 {
		if err := request.SetID(r.nextID); err != nil {
			return err
		}
		r.nextID++
	}
	r.byRID[request.RID()] = request
	return nil
}

func (r *memRequestRepo) GetByID(ctx context.Context, id uint) (*onboarding.Request, error) {
	for _, request := range r.byRID {
		if request.ID() == id {
			return request, nil
		}
	}
	return nil, nil
}

func (r *memRequestRepo) GetByRID(ctx context.Context, rid string) (*onboarding.Request, error) {
	return r.byRID[rid], nil
}

func (r *memRequestRepo) GetByRIDForUpdate(ctx context.Context, rid string) (*onboarding.Request, error) {
	return r.byRID[rid], nil
}

func (r *memRequestRepo) HasActiveForEmail(ctx context.Context, email string) (bool, error) {
	for _, request := range r.byRID {
		if request.Email() == email && !request.Status().IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRequestRepo) List(ctx context.Context, filter onboarding.RequestFilter) ([]*onboarding.Request, int64, error) {
	out := make([]*onboarding.Request, 0, len(r.byRID))
	for _, request := range r.byRID {
		if filter.Status != "" && request.Status() != filter.Status {
			continue
		}
		out = append(out, request)
	}
	return out, int64(len(out)), nil
}

func (r *memRequestRepo) Update(ctx context.Context, request *onboarding.Request) error {
	r.byRID[request.RID()] = request
	return nil
}

type stubConfigRepo struct{}

func (stubConfigRepo) Create(ctx context.Context, config *profile.RoleProfileConfig) error { return nil }
func (stubConfigRepo) GetByRoleCode(ctx context.Context, roleCode string) (*profile.RoleProfileConfig, error) {
	return nil, nil
}
func (stubConfigRepo) List(ctx context.Context) ([]*profile.RoleProfileConfig, error) {
	return nil, nil
}
func (stubConfigRepo) Update(ctx context.Context, config *profile.RoleProfileConfig) error {
	return nil
}

type stubFieldRepo struct{}

func (stubFieldRepo) Create(ctx context.Context, def *profile.FieldDefinition) error { return nil }
func (stubFieldRepo) GetByID(ctx context.Context, id uint) (*profile.FieldDefinition, error) {
	return nil, nil
}
func (stubFieldRepo) ListForConfig(ctx context.Context, configID uint) ([]*profile.FieldDefinition, error) {
	return nil, nil
}
func (stubFieldRepo) Update(ctx context.Context, def *profile.FieldDefinition) error { return nil }
func (stubFieldRepo) Delete(ctx context.Context, id uint) error                      { return nil }

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testMergeService() *services.MergeService {
	schema := services.NewSchemaService(stubConfigRepo{}, stubFieldRepo{}, testLogger())
	return services.NewMergeService(schema)
}

func invitedRequest(t *testing.T, expiresIn time.Duration) *onboarding.Request {
	t.Helper()
	inviter := uint(9)
	request, err := onboarding.NewRequest("jane@example.com", "Jane Doe", "STUDENT", &inviter, time.Now().Add(expiresIn))
	require.NoError(t, err)
	require.NoError(t, request.SetID(1))
	return request
}

func tokenFor(request *onboarding.Request) string {
	return "tok:" + request.RID() + ":" + request.Nonce()
}

func studentRegistration() map[string]any {
	return map[string]any{
		"first_name":            "Jane",
		"last_name":             "Doe",
		"profile.phone":         "+1-555-0101",
		"profile.mode_of_class": "ON",
		"profile.week_type":     "WD",
	}
}

func newSubmitUseCase(repo *memRequestRepo) *SubmitRegistrationUseCase {
	return NewSubmitRegistrationUseCase(repo, fakeTokens{}, testMergeService(), noopRecorder{}, testLogger())
}

func TestSubmitRegistration(t *testing.T) {
	request := invitedRequest(t, time.Hour)
	repo := newMemRequestRepo(request)
	uc := newSubmitUseCase(repo)

	resp, err := uc.Execute(context.Background(), dto.SubmitRegistrationRequest{
		Token:   tokenFor(request),
		Payload: studentRegistration(),
	})
	require.NoError(t, err)
	assert.Equal(t, string(onboarding.StatusPendingApproval), resp.Status)

	stored, _ := repo.GetByRID(context.Background(), request.RID())
	assert.Equal(t, onboarding.StatusPendingApproval, stored.Status())
	assert.Equal(t, "Jane", stored.UserPayload()["first_name"])
	assert.NotNil(t, stored.SubmittedAt())
}

func TestSubmitRegistrationSanitizesMarkup(t *testing.T) {
	request := invitedRequest(t, time.Hour)
	repo := newMemRequestRepo(request)
	uc := newSubmitUseCase(repo)

	payload := studentRegistration()
	payload["first_name"] = `<script>alert(1)</script>Jane`

	_, err := uc.Execute(context.Background(), dto.SubmitRegistrationRequest{
		Token:   tokenFor(request),
		Payload: payload,
	})
	require.NoError(t, err)

	stored, _ := repo.GetByRID(context.Background(), request.RID())
	assert.Equal(t, "Jane", stored.UserPayload()["first_name"])
}

func TestSubmitRegistrationRejectsInvalidPayload(t *testing.T) {
	request := invitedRequest(t, time.Hour)
	uc := newSubmitUseCase(newMemRequestRepo(request))

	payload := studentRegistration()
	delete(payload, "profile.week_type")

	_, err := uc.Execute(context.Background(), dto.SubmitRegistrationRequest{
		Token:   tokenFor(request),
		Payload: payload,
	})
	require.Error(t, err)
	assert.True(t, appErrors.IsValidationError(err))
}

func TestSubmitRegistrationExpiredInviteDropsLazily(t *testing.T) {
	request := invitedRequest(t, time.Hour)
	repo := newMemRequestRepo(request)
	uc := newSubmitUseCase(repo)

	// Push the window into the past after construction.
	token := tokenFor(request)
	forceExpiry(t, repo, request)

	_, err := uc.Execute(context.Background(), dto.SubmitRegistrationRequest{
		Token:   token,
		Payload: studentRegistration(),
	})
	require.Error(t, err)
	assert.True(t, appErrors.IsTokenError(err))

	stored, _ := repo.GetByRID(context.Background(), request.RID())
	assert.Equal(t, onboarding.StatusDropped, stored.Status())
}

// forceExpiry swaps the stored request for a reconstructed copy whose
// invite window is already closed.
func forceExpiry(t *testing.T, repo *memRequestRepo, request *onboarding.Request) {
	t.Helper()
	expired, err := onboarding.ReconstructRequest(onboarding.RequestState{
		ID:        request.ID(),
		RID:       request.RID(),
		Email:     request.Email(),
		Name:      request.Name(),
		RoleCode:  request.RoleCode(),
		Status:    onboarding.StatusInvited,
		Nonce:     request.Nonce(),
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: request.CreatedAt(),
		UpdatedAt: request.UpdatedAt(),
	})
	require.NoError(t, err)
	repo.byRID[request.RID()] = expired
}

func TestSubmitRegistrationRejectsStaleNonce(t *testing.T) {
	request := invitedRequest(t, time.Hour)
	repo := newMemRequestRepo(request)
	uc := newSubmitUseCase(repo)

	staleToken := tokenFor(request)

	// Submit, then send back: the nonce rotates and the old link dies.
	_, err := uc.Execute(context.Background(), dto.SubmitRegistrationRequest{
		Token:   staleToken,
		Payload: studentRegistration(),
	})
	require.NoError(t, err)
	require.NoError(t, request.SendBack(7, "phone number looks wrong", time.Now().Add(time.Hour)))

	_, err = uc.Execute(context.Background(), dto.SubmitRegistrationRequest{
		Token:   staleToken,
		Payload: studentRegistration(),
	})
	require.Error(t, err)
	assert.True(t, appErrors.IsTokenError(err))

	// The fresh token works again.
	_, err = uc.Execute(context.Background(), dto.SubmitRegistrationRequest{
		Token:   tokenFor(request),
		Payload: studentRegistration(),
	})
	require.NoError(t, err)
}

func TestGetRegistrationSchema(t *testing.T) {
	request := invitedRequest(t, time.Hour)
	schema := services.NewSchemaService(stubConfigRepo{}, stubFieldRepo{}, testLogger())
	uc := NewGetRegistrationSchemaUseCase(newMemRequestRepo(request), fakeTokens{}, schema, testLogger())

	resp, err := uc.Execute(context.Background(), tokenFor(request))
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", resp.Email)
	assert.Equal(t, "STUDENT", resp.RoleCode)
	require.NotEmpty(t, resp.Fields)
	assert.Equal(t, "first_name", resp.Fields[0].Key)
}

func TestGetRegistrationSchemaBadToken(t *testing.T) {
	request := invitedRequest(t, time.Hour)
	schema := services.NewSchemaService(stubConfigRepo{}, stubFieldRepo{}, testLogger())
	uc := NewGetRegistrationSchemaUseCase(newMemRequestRepo(request), fakeTokens{}, schema, testLogger())

	for _, token := range []string{"", "garbage", "tok:" + request.RID() + ":wrong-nonce", "tok:no-such-rid:" + request.Nonce()} {
		_, err := uc.Execute(context.Background(), token)
		require.Error(t, err)
		assert.True(t, appErrors.IsTokenError(err), "token %q should fail closed", token)
	}
}

func TestActionSendBackRotatesLink(t *testing.T) {
	request := invitedRequest(t, time.Hour)
	require.NoError(t, request.SubmitUserPayload(studentRegistration()))
	repo := newMemRequestRepo(request)
	mailer := &fakeMailer{}
	uc := NewActionRequestUseCase(repo, fakeTokens{}, mailer, noopRecorder{}, 48, testLogger())

	oldNonce := request.Nonce()
	resp, err := uc.Execute(context.Background(), 7, request.RID(), dto.ActionRequest{
		Action: ActionSendBack,
		Reason: "phone number looks wrong",
	})
	require.NoError(t, err)
	assert.Equal(t, string(onboarding.StatusInvited), resp.Status)
	assert.NotEqual(t, oldNonce, request.Nonce())
	require.Len(t, mailer.sendBackTokens, 1)
	assert.Contains(t, mailer.sendBackTokens[0], request.Nonce(), "correction email carries the fresh link")
}

func TestActionSendBackRequiresReason(t *testing.T) {
	request := invitedRequest(t, time.Hour)
	require.NoError(t, request.SubmitUserPayload(studentRegistration()))
	uc := NewActionRequestUseCase(newMemRequestRepo(request), fakeTokens{}, &fakeMailer{}, noopRecorder{}, 48, testLogger())

	_, err := uc.Execute(context.Background(), 7, request.RID(), dto.ActionRequest{Action: ActionSendBack})
	require.Error(t, err)
	assert.True(t, appErrors.IsStateConflictError(err))
}

func TestActionDropIsTerminal(t *testing.T) {
	request := invitedRequest(t, time.Hour)
	repo := newMemRequestRepo(request)
	uc := NewActionRequestUseCase(repo, fakeTokens{}, &fakeMailer{}, noopRecorder{}, 48, testLogger())

	_, err := uc.Execute(context.Background(), 7, request.RID(), dto.ActionRequest{
		Action: ActionDrop,
		Reason: "candidate withdrew",
	})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), 7, request.RID(), dto.ActionRequest{
		Action: ActionDrop,
		Reason: "again",
	})
	require.Error(t, err)
	assert.True(t, appErrors.IsStateConflictError(err))
}

func TestPatchAdminPayload(t *testing.T) {
	request := invitedRequest(t, time.Hour)
	require.NoError(t, request.SubmitUserPayload(studentRegistration()))
	repo := newMemRequestRepo(request)
	uc := NewPatchAdminPayloadUseCase(repo, noopRecorder{}, testLogger())

	resp, err := uc.Execute(context.Background(), 7, request.RID(), dto.PatchAdminPayloadRequest{
		Payload: map[string]any{"profile.batch": "2026-A"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-A", resp.AdminPayload["profile.batch"])
	assert.Equal(t, string(onboarding.StatusPendingApproval), resp.Status, "patching never changes the status")
}

func TestPatchAdminPayloadRejectsTerminal(t *testing.T) {
	request := invitedRequest(t, time.Hour)
	actor := uint(7)
	require.NoError(t, request.Drop(&actor, "withdrew"))
	uc := NewPatchAdminPayloadUseCase(newMemRequestRepo(request), noopRecorder{}, testLogger())

	_, err := uc.Execute(context.Background(), 7, request.RID(), dto.PatchAdminPayloadRequest{
		Payload: map[string]any{"profile.batch": "2026-A"},
	})
	require.Error(t, err)
	assert.True(t, appErrors.IsStateConflictError(err))
}

func TestListRequestsFiltersByStatus(t *testing.T) {
	pending := invitedRequest(t, time.Hour)
	require.NoError(t, pending.SubmitUserPayload(studentRegistration()))

	inviter := uint(9)
	invited, err := onboarding.NewRequest("john@example.com", "John Roe", "TRAINER", &inviter, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, invited.SetID(2))

	repo := newMemRequestRepo(pending, invited)
	uc := NewListRequestsUseCase(repo, testLogger())

	responses, total, err := uc.Execute(context.Background(), dto.ListRequestsQuery{Status: "PENDING_APPROVAL"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, responses, 1)
	assert.Equal(t, "jane@example.com", responses[0].Email)

	_, _, err = uc.Execute(context.Background(), dto.ListRequestsQuery{Status: "BOGUS"})
	require.Error(t, err)
	assert.True(t, appErrors.IsValidationError(err))
}
