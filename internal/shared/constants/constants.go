// Package constants defines shared constants used across the application.
package constants

// Environment names
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Pagination defaults
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Database table names
const (
	TableUsers                   = "users"
	TableRoles                   = "roles"
	TablePermissions             = "permissions"
	TableRolePermissions         = "role_permissions"
	TableUserRoles               = "user_roles"
	TableUserPermissionOverrides = "user_permission_overrides"
	TableOnboardRequests         = "onboard_requests"
	TableRoleProfileConfigs      = "role_profile_configs"
	TableProfileFieldDefinitions = "profile_field_definitions"
	TableGenericProfiles         = "generic_profiles"
	TableStudentProfiles         = "student_profiles"
	TableTrainerProfiles         = "trainer_profiles"
	TableAuditLogs               = "audit_logs"
)

// HTTP headers
const (
	HeaderActiveRole = "X-Active-Role"
)

// Context keys set by middleware
const (
	ContextKeyUserID      = "user_id"
	ContextKeyIsSuperuser = "is_superuser"
	ContextKeyActiveRole  = "active_role"
)
