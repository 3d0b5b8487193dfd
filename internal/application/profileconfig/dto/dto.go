package dto

import "time"

type CreateConfigRequest struct {
	RoleCode   string `json:"role_code" validate:"required"`
	IsRequired bool   `json:"is_required"`
	Storage    string `json:"storage" validate:"required,oneof=DEDICATED GENERIC"`
}

type UpdateConfigRequest struct {
	IsRequired bool `json:"is_required"`
}

type ConfigResponse struct {
	ID         uint                      `json:"id"`
	RoleCode   string                    `json:"role_code"`
	IsRequired bool                      `json:"is_required"`
	Storage    string                    `json:"storage"`
	Fields     []FieldDefinitionResponse `json:"fields,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

type CreateFieldRequest struct {
	Key      string   `json:"key" validate:"required"`
	Label    string   `json:"label" validate:"required"`
	Type     string   `json:"type" validate:"required,oneof=TEXT NUMBER DATE BOOLEAN CHOICE"`
	Required bool     `json:"required"`
	Options  []string `json:"options"`
	Stage    string   `json:"stage" validate:"omitempty,oneof=registration admin"`
}

type UpdateFieldRequest struct {
	Label    string   `json:"label" validate:"required"`
	Required bool     `json:"required"`
	Options  []string `json:"options"`
	Stage    string   `json:"stage" validate:"omitempty,oneof=registration admin"`
}

type FieldDefinitionResponse struct {
	ID       uint     `json:"id"`
	ConfigID uint     `json:"config_id"`
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
	Stage    string   `json:"stage,omitempty"`
}
