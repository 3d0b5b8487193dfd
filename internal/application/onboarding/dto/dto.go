package dto

import "time"

type CreateRequestRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=150"`
	RoleCode string `json:"role_code" validate:"required,max=20"`
}

type RequestResponse struct {
	RID               string         `json:"rid"`
	Code              string         `json:"code,omitempty"`
	Email             string         `json:"email"`
	Name              string         `json:"name"`
	RoleCode          string         `json:"role_code"`
	Status            string         `json:"status"`
	UserPayload       map[string]any `json:"user_payload,omitempty"`
	AdminPayload      map[string]any `json:"admin_payload,omitempty"`
	ExpiresAt         time.Time      `json:"expires_at"`
	SubmittedAt       *time.Time     `json:"submitted_at,omitempty"`
	DecidedAt         *time.Time     `json:"decided_at,omitempty"`
	DecisionReason    string         `json:"decision_reason,omitempty"`
	ProvisionedUserID *uint          `json:"provisioned_user_id,omitempty"`
	LastError         string         `json:"last_error,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// CreateRequestResult reports the outcome of an invite. When the email
// already has an account or an active invite the call still succeeds,
// with AlreadyExists set and no new request created.
type CreateRequestResult struct {
	AlreadyExists bool             `json:"already_exists"`
	Request       *RequestResponse `json:"request,omitempty"`
}

type ListRequestsQuery struct {
	Email    string `form:"email"`
	RoleCode string `form:"role_code"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type FieldSpecResponse struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Section  string   `json:"section,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// RegistrationSchemaResponse is the public payload behind a valid
// registration token: who the invite is for and which fields to render.
type RegistrationSchemaResponse struct {
	Email       string              `json:"email"`
	Name        string              `json:"name"`
	RoleCode    string              `json:"role_code"`
	Status      string              `json:"status"`
	ExpiresAt   time.Time           `json:"expires_at"`
	Fields      []FieldSpecResponse `json:"fields"`
	UserPayload map[string]any      `json:"user_payload,omitempty"`
}

type SubmitRegistrationRequest struct {
	Token   string         `json:"token" validate:"required"`
	Payload map[string]any `json:"payload" validate:"required"`
}

type PatchAdminPayloadRequest struct {
	Payload map[string]any `json:"payload" validate:"required"`
}

type ActionRequest struct {
	Action string `json:"action" validate:"required,oneof=send_back drop"`
	Reason string `json:"reason"`
}

type ApproveRequestBody struct {
	SendWelcomeEmail bool `json:"send_welcome_email"`
}

type ApproveResponse struct {
	Request   *RequestResponse `json:"request"`
	UserID    uint             `json:"user_id"`
	DisplayID string           `json:"display_id,omitempty"`
}
