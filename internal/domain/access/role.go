package access

import (
	"fmt"
	"strings"
	"time"
)

// Role is a named authorization bucket a user can hold zero, one, or many of.
// The code is an immutable short key (e.g. "STUDENT", "TRAINER") and is never reused
// after deactivation without cache invalidation.
type Role struct {
	id             uint
	code           string
	name           string
	description    string
	isActive       bool
	isSystem       bool
	deletedAt      *time.Time
	deletedBy      *uint
	deletionReason string
	createdAt      time.Time
	updatedAt      time.Time
}

func NewRole(code, name, description string) (*Role, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("role code is required")
	}
	if len(code) > 20 {
		return nil, fmt.Errorf("role code too long (max 20 characters)")
	}
	if name == "" {
		return nil, fmt.Errorf("role name is required")
	}
	if len(name) > 100 {
		return nil, fmt.Errorf("role name too long (max 100 characters)")
	}

	now := time.Now()
	return &Role{
		code:        code,
		name:        name,
		description: description,
		isActive:    true,
		isSystem:    false,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func ReconstructRole(
	id uint,
	code, name, description string,
	isActive, isSystem bool,
	deletedAt *time.Time,
	deletedBy *uint,
	deletionReason string,
	createdAt, updatedAt time.Time,
) (*Role, error) {
	if id == 0 {
		return nil, fmt.Errorf("role ID cannot be zero")
	}

	return &Role{
		id:             id,
		code:           code,
		name:           name,
		description:    description,
		isActive:       isActive,
		isSystem:       isSystem,
		deletedAt:      deletedAt,
		deletedBy:      deletedBy,
		deletionReason: deletionReason,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

func (r *Role) ID() uint {
	return r.id
}

func (r *Role) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("role ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("role ID cannot be zero")
	}
	r.id = id
	return nil
}

func (r *Role) Code() string {
	return r.code
}

func (r *Role) Name() string {
	return r.name
}

func (r *Role) Description() string {
	return r.description
}

func (r *Role) IsActive() bool {
	return r.isActive
}

func (r *Role) IsSystem() bool {
	return r.isSystem
}

func (r *Role) DeletedAt() *time.Time {
	return r.deletedAt
}

func (r *Role) DeletedBy() *uint {
	return r.deletedBy
}

func (r *Role) DeletionReason() string {
	return r.deletionReason
}

func (r *Role) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Role) UpdatedAt() time.Time {
	return r.updatedAt
}

func (r *Role) UpdateName(name string) error {
	if name == "" {
		return fmt.Errorf("role name cannot be empty")
	}
	if len(name) > 100 {
		return fmt.Errorf("role name too long (max 100 characters)")
	}
	r.name = name
	r.updatedAt = time.Now()
	return nil
}

func (r *Role) UpdateDescription(description string) {
	r.description = description
	r.updatedAt = time.Now()
}

func (r *Role) MarkSystem() {
	r.isSystem = true
	r.updatedAt = time.Now()
}

// Deactivate soft-deletes the role, stamping who removed it and why.
// System roles cannot be deactivated. The caller is responsible for
// reassigning user bindings and invalidating the permission cache.
func (r *Role) Deactivate(deletedBy uint, reason string) error {
	if r.isSystem {
		return fmt.Errorf("cannot deactivate system role")
	}
	if !r.isActive {
		return fmt.Errorf("role is already inactive")
	}
	now := time.Now()
	r.isActive = false
	r.deletedAt = &now
	r.deletedBy = &deletedBy
	r.deletionReason = reason
	r.updatedAt = now
	return nil
}

func (r *Role) Activate() {
	if r.isActive {
		return
	}
	r.isActive = true
	r.deletedAt = nil
	r.deletedBy = nil
	r.deletionReason = ""
	r.updatedAt = time.Now()
}
