package profile

import (
	"fmt"
	"strings"
	"time"
)

// StorageKind selects where a role's profile data lands.
type StorageKind string

const (
	// StorageDedicated routes the profile into a role-specific table
	// (students, trainers).
	StorageDedicated StorageKind = "DEDICATED"
	// StorageGeneric routes the profile into the shared JSON profile table.
	StorageGeneric StorageKind = "GENERIC"
)

func (k StorageKind) IsValid() bool {
	return k == StorageDedicated || k == StorageGeneric
}

// RoleProfileConfig declares whether a role requires a profile at
// provisioning time and which storage kind receives it.
type RoleProfileConfig struct {
	id         uint
	roleCode   string
	isRequired bool
	storage    StorageKind
	createdAt  time.Time
	updatedAt  time.Time
}

func NewRoleProfileConfig(roleCode string, isRequired bool, storage StorageKind) (*RoleProfileConfig, error) {
	roleCode = strings.ToUpper(strings.TrimSpace(roleCode))
	if roleCode == "" {
		return nil, fmt.Errorf("role code is required")
	}
	if !storage.IsValid() {
		return nil, fmt.Errorf("invalid storage kind: %s", storage)
	}
	now := time.Now()
	return &RoleProfileConfig{
		roleCode:   roleCode,
		isRequired: isRequired,
		storage:    storage,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

func ReconstructRoleProfileConfig(id uint, roleCode string, isRequired bool, storage StorageKind, createdAt, updatedAt time.Time) (*RoleProfileConfig, error) {
	if id == 0 {
		return nil, fmt.Errorf("config ID cannot be zero")
	}
	return &RoleProfileConfig{
		id:         id,
		roleCode:   roleCode,
		isRequired: isRequired,
		storage:    storage,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}, nil
}

func (c *RoleProfileConfig) ID() uint             { return c.id }
func (c *RoleProfileConfig) RoleCode() string     { return c.roleCode }
func (c *RoleProfileConfig) IsRequired() bool     { return c.isRequired }
func (c *RoleProfileConfig) Storage() StorageKind { return c.storage }
func (c *RoleProfileConfig) CreatedAt() time.Time { return c.createdAt }
func (c *RoleProfileConfig) UpdatedAt() time.Time { return c.updatedAt }

func (c *RoleProfileConfig) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("config ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("config ID cannot be zero")
	}
	c.id = id
	return nil
}

func (c *RoleProfileConfig) SetRequired(required bool) {
	c.isRequired = required
	c.updatedAt = time.Now()
}

// FieldDefinition is an admin-defined dynamic form field attached to a
// role's profile config. The (config, key) pair is unique.
type FieldDefinition struct {
	id        uint
	configID  uint
	key       string
	label     string
	fieldType FieldType
	required  bool
	options   []string
	stage     string
	createdAt time.Time
	updatedAt time.Time
}

func NewFieldDefinition(configID uint, key, label string, fieldType FieldType, required bool, options []string, stage string) (*FieldDefinition, error) {
	if configID == 0 {
		return nil, fmt.Errorf("config ID is required")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("field key is required")
	}
	if label == "" {
		return nil, fmt.Errorf("field label is required")
	}
	if !fieldType.IsValid() {
		return nil, fmt.Errorf("invalid field type: %s", fieldType)
	}
	if fieldType == FieldTypeChoice && len(options) == 0 {
		return nil, fmt.Errorf("choice field requires options")
	}
	now := time.Now()
	return &FieldDefinition{
		configID:  configID,
		key:       key,
		label:     label,
		fieldType: fieldType,
		required:  required,
		options:   options,
		stage:     stage,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructFieldDefinition(id, configID uint, key, label string, fieldType FieldType, required bool, options []string, stage string, createdAt, updatedAt time.Time) (*FieldDefinition, error) {
	if id == 0 {
		return nil, fmt.Errorf("field definition ID cannot be zero")
	}
	return &FieldDefinition{
		id:        id,
		configID:  configID,
		key:       key,
		label:     label,
		fieldType: fieldType,
		required:  required,
		options:   options,
		stage:     stage,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

func (d *FieldDefinition) ID() uint             { return d.id }
func (d *FieldDefinition) ConfigID() uint       { return d.configID }
func (d *FieldDefinition) Key() string          { return d.key }
func (d *FieldDefinition) Label() string        { return d.label }
func (d *FieldDefinition) Type() FieldType      { return d.fieldType }
func (d *FieldDefinition) Required() bool       { return d.required }
func (d *FieldDefinition) Options() []string    { return d.options }
func (d *FieldDefinition) Stage() string        { return d.stage }
func (d *FieldDefinition) CreatedAt() time.Time { return d.createdAt }
func (d *FieldDefinition) UpdatedAt() time.Time { return d.updatedAt }

func (d *FieldDefinition) SetID(id uint) error {
	if d.id != 0 {
		return fmt.Errorf("field definition ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("field definition ID cannot be zero")
	}
	d.id = id
	return nil
}

// UpdateDetails edits the descriptive parts of the definition. The key
// and type are fixed at creation; changing either would silently detach
// already collected payload values.
func (d *FieldDefinition) UpdateDetails(label string, required bool, options []string, stage string) error {
	if label == "" {
		return fmt.Errorf("field label is required")
	}
	if d.fieldType == FieldTypeChoice && len(options) == 0 {
		return fmt.Errorf("choice field requires options")
	}
	d.label = label
	d.required = required
	d.options = options
	d.stage = stage
	d.updatedAt = time.Now()
	return nil
}

// Spec projects the definition into the schema shape, prefixing the key
// with "profile." so merged payloads route it into the profile map.
func (d *FieldDefinition) Spec() FieldSpec {
	return FieldSpec{
		Key:      "profile." + d.key,
		Label:    d.label,
		Type:     d.fieldType,
		Required: d.required,
		Section:  "additional",
		Options:  d.options,
	}
}
