package models

import (
	"time"

	"gorm.io/datatypes"

	"instra/internal/shared/constants"
)

type AuditLogModel struct {
	ID         uint `gorm:"primarykey"`
	ActorID    *uint
	Action     string `gorm:"not null;size:50;index"`
	EntityType string `gorm:"size:50;index"`
	EntityID   string `gorm:"size:50"`
	Detail     datatypes.JSON
	IP         string `gorm:"size:45"`
	CreatedAt  time.Time `gorm:"index"`
}

func (AuditLogModel) TableName() string {
	return constants.TableAuditLogs
}
