package identity

import (
	"fmt"
	"strings"
	"time"
)

// User is the identity aggregate. Authorization state (role bindings,
// overrides) lives in the access context; the user record only carries the
// superuser flag and the sticky last-active-role hint.
type User struct {
	id                 uint
	email              string
	name               string
	passwordHash       string
	isActive           bool
	isSuperuser        bool
	mustChangePassword bool
	lastActiveRole     string
	createdAt          time.Time
	updatedAt          time.Time
}

func NewUser(email, name, passwordHash string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email format")
	}
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password hash is required")
	}

	now := time.Now()
	return &User{
		email:              email,
		name:               name,
		passwordHash:       passwordHash,
		isActive:           true,
		mustChangePassword: true,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

func ReconstructUser(id uint, email, name, passwordHash string, isActive, isSuperuser, mustChangePassword bool, lastActiveRole string, createdAt, updatedAt time.Time) (*User, error) {
	if id == 0 {
		return nil, fmt.Errorf("user ID cannot be zero")
	}
	return &User{
		id:                 id,
		email:              email,
		name:               name,
		passwordHash:       passwordHash,
		isActive:           isActive,
		isSuperuser:        isSuperuser,
		mustChangePassword: mustChangePassword,
		lastActiveRole:     lastActiveRole,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}, nil
}

func (u *User) ID() uint {
	return u.id
}

func (u *User) SetID(id uint) error {
	if u.id != 0 {
		return fmt.Errorf("user ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("user ID cannot be zero")
	}
	u.id = id
	return nil
}

func (u *User) Email() string {
	return u.email
}

func (u *User) Name() string {
	return u.name
}

func (u *User) PasswordHash() string {
	return u.passwordHash
}

func (u *User) IsActive() bool {
	return u.isActive
}

func (u *User) IsSuperuser() bool {
	return u.isSuperuser
}

func (u *User) MustChangePassword() bool {
	return u.mustChangePassword
}

// LastActiveRole returns the role code the user last worked under, or ""
// when none has been recorded yet.
func (u *User) LastActiveRole() string {
	return u.lastActiveRole
}

func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

func (u *User) UpdateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	u.name = name
	u.updatedAt = time.Now()
	return nil
}

// SetInitialPassword replaces the hash while keeping the forced-change
// flag raised. Provisioning uses it once the display ID exists and the
// temporary password can be derived from it.
func (u *User) SetInitialPassword(passwordHash string) error {
	if passwordHash == "" {
		return fmt.Errorf("password hash cannot be empty")
	}
	u.passwordHash = passwordHash
	u.mustChangePassword = true
	u.updatedAt = time.Now()
	return nil
}

func (u *User) ChangePassword(passwordHash string) error {
	if passwordHash == "" {
		return fmt.Errorf("password hash cannot be empty")
	}
	u.passwordHash = passwordHash
	u.mustChangePassword = false
	u.updatedAt = time.Now()
	return nil
}

func (u *User) MarkSuperuser() {
	u.isSuperuser = true
	u.updatedAt = time.Now()
}

// RecordActiveRole persists the role the user is currently acting under so
// the next session can default to it.
func (u *User) RecordActiveRole(roleCode string) {
	u.lastActiveRole = strings.ToUpper(roleCode)
	u.updatedAt = time.Now()
}

// ClearActiveRole drops the sticky role hint, e.g. when the recorded role
// is deactivated or unassigned.
func (u *User) ClearActiveRole() {
	u.lastActiveRole = ""
	u.updatedAt = time.Now()
}

func (u *User) Deactivate() {
	u.isActive = false
	u.updatedAt = time.Now()
}

func (u *User) Activate() {
	u.isActive = true
	u.updatedAt = time.Now()
}
