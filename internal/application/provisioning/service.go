package provisioning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"instra/internal/domain/access"
	"instra/internal/domain/audit"
	"instra/internal/domain/identity"
	"instra/internal/domain/profile"
	"instra/internal/shared/errors"
	"instra/internal/shared/id"
	"instra/internal/shared/logger"
)

// PasswordHasher abstracts the hash function so tests can swap bcrypt out.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Input carries the already merged and validated onboarding payload, split
// into the identity fields and the profile subtree.
type Input struct {
	InitiatorID *uint
	RoleCode    string
	Email       string
	Identity    map[string]any
	Profile     map[string]any
}

// Result is what a successful provisioning run produced. TempPassword is
// the plain-text initial credential and only ever leaves this package
// inside the welcome email.
type Result struct {
	User         *identity.User
	DisplayID    string
	TempPassword string
}

// Service turns an approved onboarding request into a login-capable
// identity: user record, exactly one role binding, and the role's profile
// row, all inside the caller's transaction. The temporary password derives
// from the profile's display ID, so the profile is created before the
// final hash is stamped.
type Service struct {
	userRepo     identity.UserRepository
	roleRepo     access.RoleRepository
	userRoleRepo access.UserRoleRepository
	configRepo   profile.ConfigRepository
	strategies   profile.StrategyResolver
	hasher       PasswordHasher
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewService(
	userRepo identity.UserRepository,
	roleRepo access.RoleRepository,
	userRoleRepo access.UserRoleRepository,
	configRepo profile.ConfigRepository,
	strategies profile.StrategyResolver,
	hasher PasswordHasher,
	recorder audit.Recorder,
	logger logger.Interface,
) *Service {
	return &Service{
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		userRoleRepo: userRoleRepo,
		configRepo:   configRepo,
		strategies:   strategies,
		hasher:       hasher,
		recorder:     recorder,
		logger:       logger,
	}
}

// Provision creates the identity, its role binding and its profile. The
// caller owns the transaction; any error here must roll the whole set back.
func (s *Service) Provision(ctx context.Context, input Input) (*Result, error) {
	roleCode := strings.ToUpper(strings.TrimSpace(input.RoleCode))

	role, err := s.roleRepo.GetByCode(ctx, roleCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	if role == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("role %s not found", roleCode))
	}
	if !role.IsActive() {
		return nil, errors.NewStateConflictError(fmt.Sprintf("role %s is deactivated", roleCode))
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, errors.NewConflictError("a user with this email already exists")
	}

	firstName := stringField(input.Identity, "first_name")
	lastName := stringField(input.Identity, "last_name")
	name := strings.TrimSpace(firstName + " " + lastName)
	if name == "" {
		return nil, errors.NewValidationError("first_name or last_name is required")
	}

	// The user row exists before the profile so the strategy can reference
	// its primary key. The hash is a placeholder until the display ID is
	// known.
	placeholderHash, err := s.hasher.Hash(id.MustGenerate(24))
	if err != nil {
		return nil, fmt.Errorf("failed to hash placeholder password: %w", err)
	}
	user, err := identity.NewUser(input.Email, name, placeholderHash)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	binding, err := access.NewUserRoleBinding(user.ID(), role.ID(), input.InitiatorID)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.userRoleRepo.Assign(ctx, binding); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	displayID, err := s.createProfile(ctx, user, roleCode, firstName, lastName, input.Profile)
	if err != nil {
		return nil, err
	}

	tempPassword := deriveTempPassword(displayID, roleCode)
	finalHash, err := s.hasher.Hash(tempPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := user.SetInitialPassword(finalHash); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.recorder.Record(ctx, audit.Record{
		ActorID:    input.InitiatorID,
		Action:     audit.ActionUserProvision,
		EntityType: "user",
		EntityID:   fmt.Sprintf("%d", user.ID()),
		Detail: map[string]any{
			"email":      user.Email(),
			"role":       roleCode,
			"display_id": displayID,
		},
	})

	return &Result{
		User:         user,
		DisplayID:    displayID,
		TempPassword: tempPassword,
	}, nil
}

// createProfile writes the role's profile row when the role is configured
// for one. Roles without a profile config get no profile and an empty
// display ID; the password then derives from the role code instead.
func (s *Service) createProfile(ctx context.Context, user *identity.User, roleCode, firstName, lastName string, data map[string]any) (string, error) {
	config, err := s.configRepo.GetByRoleCode(ctx, roleCode)
	if err != nil {
		return "", fmt.Errorf("failed to load profile config: %w", err)
	}
	if config == nil {
		return "", nil
	}
	if !config.IsRequired() && len(data) == 0 {
		return "", nil
	}

	strategy, err := s.strategies.Resolve(roleCode, config.Storage())
	if err != nil {
		return "", fmt.Errorf("failed to resolve profile strategy: %w", err)
	}

	displayID, err := strategy.Create(ctx, profile.CreateInput{
		UserID:    user.ID(),
		RoleCode:  roleCode,
		Email:     user.Email(),
		FirstName: firstName,
		LastName:  lastName,
		Data:      data,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create profile: %w", err)
	}
	return displayID, nil
}

// deriveTempPassword builds the initial credential from the identity the
// user will recognize: their display ID, or the role code when the role
// carries no profile.
func deriveTempPassword(displayID, roleCode string) string {
	base := displayID
	if base == "" {
		base = roleCode
	}
	return fmt.Sprintf("%s@%d", base, time.Now().Year())
}

func stringField(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
