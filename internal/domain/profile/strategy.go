package profile

import "context"

// CreateInput is everything a strategy needs to persist a profile for a
// freshly provisioned identity. Data holds the profile.* subtree of the
// merged onboarding payload with the prefix stripped.
type CreateInput struct {
	UserID    uint
	RoleCode  string
	Email     string
	FirstName string
	LastName  string
	Data      map[string]any
}

// Strategy persists a role's profile record during provisioning and
// returns the display identifier the identity-derived password is built
// from (e.g. "STU00042"). Implementations run inside the provisioning
// transaction and must honor the tx-in-context contract.
type Strategy interface {
	Create(ctx context.Context, input CreateInput) (displayID string, err error)
}

// StrategyResolver maps a storage kind to a concrete strategy.
type StrategyResolver interface {
	Resolve(roleCode string, storage StorageKind) (Strategy, error)
}
