package access

import "context"

type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, id uint) (*Role, error)
	GetByCode(ctx context.Context, code string) (*Role, error)
	// GetByCodeForUpdate locks the role row for the duration of the
	// surrounding transaction. Used by deactivation.
	GetByCodeForUpdate(ctx context.Context, code string) (*Role, error)
	List(ctx context.Context, filter RoleFilter) ([]*Role, int64, error)
	Update(ctx context.Context, role *Role) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

type PermissionRepository interface {
	Create(ctx context.Context, permission *Permission) error
	GetByID(ctx context.Context, id uint) (*Permission, error)
	GetByCode(ctx context.Context, code string) (*Permission, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*Permission, error)
	List(ctx context.Context, filter PermissionFilter) ([]*Permission, int64, error)
	Update(ctx context.Context, permission *Permission) error
	Delete(ctx context.Context, id uint) error

	// ListAllCodes returns the full permission universe.
	ListAllCodes(ctx context.Context) ([]string, error)
	// ListCodesForRole returns the codes granted to a role via role_permissions.
	ListCodesForRole(ctx context.Context, roleID uint) ([]string, error)
	// ListRoleCodesForPermission returns the codes of every role granting
	// the permission.
	ListRoleCodesForPermission(ctx context.Context, permissionID uint) ([]string, error)

	// SetForRole replaces the role's permission grants with exactly the
	// given permission IDs.
	SetForRole(ctx context.Context, roleID uint, permissionIDs []uint) error
	AssignToRole(ctx context.Context, roleID uint, permissionIDs []uint) error
	RemoveFromRole(ctx context.Context, roleID uint, permissionIDs []uint) error
	ListForRole(ctx context.Context, roleID uint) ([]*Permission, error)
}

type UserRoleRepository interface {
	Assign(ctx context.Context, binding *UserRoleBinding) error
	Remove(ctx context.Context, userID, roleID uint) error
	Holds(ctx context.Context, userID, roleID uint) (bool, error)
	// ListRolesForUser returns the user's roles ordered by assignment time,
	// earliest first.
	ListRolesForUser(ctx context.Context, userID uint) ([]*Role, error)
	// ListBindingsForRole returns every binding referencing the role,
	// locking the rows when called inside a transaction.
	ListBindingsForRole(ctx context.Context, roleID uint) ([]*UserRoleBinding, error)
	DeleteBinding(ctx context.Context, bindingID uint) error
	RebindToRole(ctx context.Context, bindingID, newRoleID uint) error
}

type OverrideRepository interface {
	// Upsert creates the (user, permission) override or updates its
	// is_granted flag if the pair already exists.
	Upsert(ctx context.Context, override *PermissionOverride) error
	Remove(ctx context.Context, userID, permissionID uint) error
	ListForUser(ctx context.Context, userID uint) ([]*PermissionOverride, error)
	// CodesForUser returns the user's override permission codes split into
	// allow and deny sets.
	CodesForUser(ctx context.Context, userID uint) (*OverrideCodes, error)
}

type RoleFilter struct {
	Name     string
	Code     string
	IsActive *bool
	Page     int
	PageSize int
}

type PermissionFilter struct {
	Module   string
	Code     string
	Page     int
	PageSize int
}
