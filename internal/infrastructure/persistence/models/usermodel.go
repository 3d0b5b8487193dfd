package models

import (
	"time"

	"instra/internal/shared/constants"
)

type UserModel struct {
	ID                 uint   `gorm:"primarykey"`
	Email              string `gorm:"uniqueIndex;not null;size:255"`
	Name               string `gorm:"not null;size:100"`
	PasswordHash       string `gorm:"not null;size:255"`
	IsActive           bool   `gorm:"not null;default:true"`
	IsSuperuser        bool   `gorm:"not null;default:false"`
	MustChangePassword bool   `gorm:"not null;default:false"`
	LastActiveRole     string `gorm:"size:20"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (UserModel) TableName() string {
	return constants.TableUsers
}
