package models

import (
	"time"

	"gorm.io/datatypes"

	"instra/internal/shared/constants"
)

type OnboardRequestModel struct {
	ID                uint   `gorm:"primarykey"`
	RID               string `gorm:"column:rid;uniqueIndex;not null;size:36"`
	Code              string `gorm:"size:20;index"`
	Email             string `gorm:"not null;size:255;index"`
	Name              string `gorm:"size:100"`
	RoleCode          string `gorm:"not null;size:20"`
	Status            string `gorm:"not null;size:20;index"`
	Nonce             string `gorm:"not null;size:64"`
	UserPayload       datatypes.JSON
	AdminPayload      datatypes.JSON
	InvitedBy         *uint
	ExpiresAt         time.Time `gorm:"not null"`
	SubmittedAt       *time.Time
	TokenUsedAt       *time.Time
	DecidedBy         *uint
	DecidedAt         *time.Time
	DecisionReason    string `gorm:"type:text"`
	ProvisionedUserID *uint
	LastError         string `gorm:"type:text"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (OnboardRequestModel) TableName() string {
	return constants.TableOnboardRequests
}
