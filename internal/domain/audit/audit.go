package audit

import "context"

// Action names for the audit trail. Kept as plain strings so new actions
// don't require a schema change.
const (
	ActionLogin            = "LOGIN"
	ActionRoleCreate       = "ROLE_CREATE"
	ActionRoleUpdate       = "ROLE_UPDATE"
	ActionRoleDeactivate   = "ROLE_DEACTIVATE"
	ActionRolePermsSet     = "ROLE_PERMISSIONS_SET"
	ActionPermissionCreate = "PERMISSION_CREATE"
	ActionPermissionUpdate = "PERMISSION_UPDATE"
	ActionPermissionDelete = "PERMISSION_DELETE"
	ActionUserRoleAssign   = "USER_ROLE_ASSIGN"
	ActionUserRoleRemove   = "USER_ROLE_REMOVE"
	ActionOverrideSet      = "OVERRIDE_SET"
	ActionOverrideRemove   = "OVERRIDE_REMOVE"
	ActionInviteCreate     = "INVITE_CREATE"
	ActionRegistrationSubmit = "REGISTRATION_SUBMIT"
	ActionRequestPatch     = "REQUEST_ADMIN_PATCH"
	ActionRequestApprove   = "REQUEST_APPROVE"
	ActionRequestSendBack  = "REQUEST_SEND_BACK"
	ActionRequestDrop      = "REQUEST_DROP"
	ActionUserProvision    = "USER_PROVISION"
	ActionProfileConfigCreate = "PROFILE_CONFIG_CREATE"
	ActionProfileConfigUpdate = "PROFILE_CONFIG_UPDATE"
	ActionProfileFieldCreate  = "PROFILE_FIELD_CREATE"
	ActionProfileFieldUpdate  = "PROFILE_FIELD_UPDATE"
	ActionProfileFieldDelete  = "PROFILE_FIELD_DELETE"
)

// Record is one audit trail entry. ActorID is nil for anonymous actions
// (public registration submits).
type Record struct {
	ActorID    *uint
	Action     string
	EntityType string
	EntityID   string
	Detail     map[string]any
	IP         string
}

// Recorder accepts audit records. Implementations are best-effort: they
// never return an error and never block the calling mutation.
type Recorder interface {
	Record(ctx context.Context, record Record)
}
