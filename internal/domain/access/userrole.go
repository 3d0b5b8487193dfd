package access

import (
	"fmt"
	"time"
)

// UserRoleBinding links a user to a role. A user may hold multiple
// simultaneous roles; the (user, role) pair is unique.
type UserRoleBinding struct {
	id         uint
	userID     uint
	roleID     uint
	assignedAt time.Time
	assignedBy *uint
}

func NewUserRoleBinding(userID, roleID uint, assignedBy *uint) (*UserRoleBinding, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if roleID == 0 {
		return nil, fmt.Errorf("role ID is required")
	}
	return &UserRoleBinding{
		userID:     userID,
		roleID:     roleID,
		assignedAt: time.Now(),
		assignedBy: assignedBy,
	}, nil
}

func ReconstructUserRoleBinding(id, userID, roleID uint, assignedAt time.Time, assignedBy *uint) (*UserRoleBinding, error) {
	if id == 0 {
		return nil, fmt.Errorf("binding ID cannot be zero")
	}
	return &UserRoleBinding{
		id:         id,
		userID:     userID,
		roleID:     roleID,
		assignedAt: assignedAt,
		assignedBy: assignedBy,
	}, nil
}

func (b *UserRoleBinding) ID() uint {
	return b.id
}

func (b *UserRoleBinding) SetID(id uint) error {
	if b.id != 0 {
		return fmt.Errorf("binding ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("binding ID cannot be zero")
	}
	b.id = id
	return nil
}

func (b *UserRoleBinding) UserID() uint {
	return b.userID
}

func (b *UserRoleBinding) RoleID() uint {
	return b.roleID
}

func (b *UserRoleBinding) AssignedAt() time.Time {
	return b.assignedAt
}

func (b *UserRoleBinding) AssignedBy() *uint {
	return b.assignedBy
}
