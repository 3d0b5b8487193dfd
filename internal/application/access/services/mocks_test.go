package services

import (
	"context"
	"fmt"

	"instra/internal/domain/access"
	"instra/internal/domain/identity"
)

type mockUserRepo struct {
	users   map[uint]*identity.User
	updated []uint
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[uint]*identity.User{}}
}

func (m *mockUserRepo) Create(ctx context.Context, user *identity.User) error { return nil }
func (m *mockUserRepo) GetByID(ctx context.Context, id uint) (*identity.User, error) {
	return m.users[id], nil
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	for _, u := range m.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, nil
}
func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, _ := m.GetByEmail(ctx, email)
	return u != nil, nil
}
func (m *mockUserRepo) List(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	return nil, 0, nil
}
func (m *mockUserRepo) Update(ctx context.Context, user *identity.User) error {
	m.updated = append(m.updated, user.ID())
	return nil
}

type mockPermRepo struct {
	access.PermissionRepository
	allCodes  []string
	roleCodes map[uint][]string
}

func (m *mockPermRepo) ListAllCodes(ctx context.Context) ([]string, error) {
	return m.allCodes, nil
}
func (m *mockPermRepo) ListCodesForRole(ctx context.Context, roleID uint) ([]string, error) {
	return m.roleCodes[roleID], nil
}

type mockUserRoleRepo struct {
	access.UserRoleRepository
	roles map[uint][]*access.Role
}

func (m *mockUserRoleRepo) ListRolesForUser(ctx context.Context, userID uint) ([]*access.Role, error) {
	return m.roles[userID], nil
}

type mockOverrideRepo struct {
	access.OverrideRepository
	codes map[uint]*access.OverrideCodes
}

func (m *mockOverrideRepo) CodesForUser(ctx context.Context, userID uint) (*access.OverrideCodes, error) {
	if c, ok := m.codes[userID]; ok {
		return c, nil
	}
	return &access.OverrideCodes{Allowed: []string{}, Denied: []string{}}, nil
}

// mockCache is an in-memory permission cache. Set failing to simulate a
// Redis outage: every call then errors and nothing is stored.
type mockCache struct {
	codes     map[access.CacheKey][]string
	overrides map[access.CacheKey]*access.OverrideCodes
	failing   bool
	getCalls  int
	setCalls  int
}

func newMockCache() *mockCache {
	return &mockCache{
		codes:     map[access.CacheKey][]string{},
		overrides: map[access.CacheKey]*access.OverrideCodes{},
	}
}

func (m *mockCache) GetCodes(ctx context.Context, key access.CacheKey) ([]string, bool, error) {
	m.getCalls++
	if m.failing {
		return nil, false, fmt.Errorf("cache unavailable")
	}
	codes, ok := m.codes[key]
	return codes, ok, nil
}

func (m *mockCache) SetCodes(ctx context.Context, key access.CacheKey, codes []string) error {
	m.setCalls++
	if m.failing {
		return fmt.Errorf("cache unavailable")
	}
	m.codes[key] = codes
	return nil
}

func (m *mockCache) GetOverrides(ctx context.Context, key access.CacheKey) (*access.OverrideCodes, bool, error) {
	if m.failing {
		return nil, false, fmt.Errorf("cache unavailable")
	}
	codes, ok := m.overrides[key]
	return codes, ok, nil
}

func (m *mockCache) SetOverrides(ctx context.Context, key access.CacheKey, codes *access.OverrideCodes) error {
	if m.failing {
		return fmt.Errorf("cache unavailable")
	}
	m.overrides[key] = codes
	return nil
}

func (m *mockCache) Delete(ctx context.Context, keys ...access.CacheKey) error {
	if m.failing {
		return fmt.Errorf("cache unavailable")
	}
	for _, k := range keys {
		delete(m.codes, k)
		delete(m.overrides, k)
	}
	return nil
}
