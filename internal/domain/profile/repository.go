package profile

import "context"

type ConfigRepository interface {
	Create(ctx context.Context, config *RoleProfileConfig) error
	GetByRoleCode(ctx context.Context, roleCode string) (*RoleProfileConfig, error)
	List(ctx context.Context) ([]*RoleProfileConfig, error)
	Update(ctx context.Context, config *RoleProfileConfig) error
}

type FieldDefinitionRepository interface {
	Create(ctx context.Context, def *FieldDefinition) error
	GetByID(ctx context.Context, id uint) (*FieldDefinition, error)
	// ListForConfig returns the config's definitions ordered by id, which
	// fixes the schema's field order.
	ListForConfig(ctx context.Context, configID uint) ([]*FieldDefinition, error)
	Update(ctx context.Context, def *FieldDefinition) error
	Delete(ctx context.Context, id uint) error
}
