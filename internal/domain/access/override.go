package access

import (
	"fmt"
	"time"
)

// PermissionOverride explicitly allows or denies a single permission for a
// specific user, layered on top of role-derived grants. Deny always wins.
type PermissionOverride struct {
	id           uint
	userID       uint
	permissionID uint
	isGranted    bool
	grantedBy    *uint
	createdAt    time.Time
	updatedAt    time.Time
}

func NewPermissionOverride(userID, permissionID uint, isGranted bool, grantedBy *uint) (*PermissionOverride, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if permissionID == 0 {
		return nil, fmt.Errorf("permission ID is required")
	}
	now := time.Now()
	return &PermissionOverride{
		userID:       userID,
		permissionID: permissionID,
		isGranted:    isGranted,
		grantedBy:    grantedBy,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

func ReconstructPermissionOverride(id, userID, permissionID uint, isGranted bool, grantedBy *uint, createdAt, updatedAt time.Time) (*PermissionOverride, error) {
	if id == 0 {
		return nil, fmt.Errorf("override ID cannot be zero")
	}
	return &PermissionOverride{
		id:           id,
		userID:       userID,
		permissionID: permissionID,
		isGranted:    isGranted,
		grantedBy:    grantedBy,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

func (o *PermissionOverride) ID() uint {
	return o.id
}

func (o *PermissionOverride) SetID(id uint) error {
	if o.id != 0 {
		return fmt.Errorf("override ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("override ID cannot be zero")
	}
	o.id = id
	return nil
}

func (o *PermissionOverride) UserID() uint {
	return o.userID
}

func (o *PermissionOverride) PermissionID() uint {
	return o.permissionID
}

func (o *PermissionOverride) IsGranted() bool {
	return o.isGranted
}

func (o *PermissionOverride) GrantedBy() *uint {
	return o.grantedBy
}

func (o *PermissionOverride) CreatedAt() time.Time {
	return o.createdAt
}

func (o *PermissionOverride) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *PermissionOverride) SetGranted(isGranted bool) {
	o.isGranted = isGranted
	o.updatedAt = time.Now()
}
