package access

import (
	"fmt"
	"strings"
	"time"
)

// Permission is an atomic capability code, e.g. "STUDENT_VIEW".
// The code is immutable; name, module and description may be edited.
type Permission struct {
	id          uint
	code        string
	name        string
	module      string
	description string
	createdAt   time.Time
	updatedAt   time.Time
}

func NewPermission(code, name, module, description string) (*Permission, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("permission code is required")
	}
	if len(code) > 100 {
		return nil, fmt.Errorf("permission code too long (max 100 characters)")
	}
	if name == "" {
		return nil, fmt.Errorf("permission name is required")
	}

	now := time.Now()
	return &Permission{
		code:        code,
		name:        name,
		module:      module,
		description: description,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func ReconstructPermission(id uint, code, name, module, description string, createdAt, updatedAt time.Time) (*Permission, error) {
	if id == 0 {
		return nil, fmt.Errorf("permission ID cannot be zero")
	}

	return &Permission{
		id:          id,
		code:        code,
		name:        name,
		module:      module,
		description: description,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (p *Permission) ID() uint {
	return p.id
}

func (p *Permission) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("permission ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("permission ID cannot be zero")
	}
	p.id = id
	return nil
}

func (p *Permission) Code() string {
	return p.code
}

func (p *Permission) Name() string {
	return p.name
}

func (p *Permission) Module() string {
	return p.module
}

func (p *Permission) Description() string {
	return p.description
}

func (p *Permission) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Permission) UpdatedAt() time.Time {
	return p.updatedAt
}

func (p *Permission) UpdateName(name string) error {
	if name == "" {
		return fmt.Errorf("permission name cannot be empty")
	}
	p.name = name
	p.updatedAt = time.Now()
	return nil
}

func (p *Permission) UpdateModule(module string) {
	p.module = module
	p.updatedAt = time.Now()
}

func (p *Permission) UpdateDescription(description string) {
	p.description = description
	p.updatedAt = time.Now()
}
