package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	domainProfile "instra/internal/domain/profile"
	"instra/internal/infrastructure/persistence/models"
	"instra/internal/shared/db"
	"instra/internal/shared/id"
)

const (
	RoleCodeStudent = "STUDENT"
	RoleCodeTrainer = "TRAINER"
)

// Resolver maps a role's storage kind to the strategy that persists its
// profile. Dedicated storage is only defined for the student and trainer
// roles; everything else uses the generic JSON sink.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(database *gorm.DB) *Resolver {
	return &Resolver{db: database}
}

func (r *Resolver) Resolve(roleCode string, storage domainProfile.StorageKind) (domainProfile.Strategy, error) {
	if storage == domainProfile.StorageGeneric {
		return &genericStrategy{db: r.db}, nil
	}

	switch roleCode {
	case RoleCodeStudent:
		return &studentStrategy{db: r.db}, nil
	case RoleCodeTrainer:
		return &trainerStrategy{db: r.db}, nil
	default:
		return nil, fmt.Errorf("no dedicated profile table for role %s", roleCode)
	}
}

// studentStrategy writes the students table. The student ID derives from
// the row's primary key, so the row is created first and stamped second.
type studentStrategy struct {
	db *gorm.DB
}

func (s *studentStrategy) Create(ctx context.Context, input domainProfile.CreateInput) (string, error) {
	data := cloneData(input.Data)

	model := &models.StudentProfileModel{
		UserID:      input.UserID,
		StudentID:   id.MustGenerate(12), // placeholder until the PK exists
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		DateOfBirth: popDate(data, "date_of_birth"),
		Phone:       popString(data, "phone"),
		Guardian:    popString(data, "guardian"),
	}

	extra, err := marshalExtra(data)
	if err != nil {
		return "", err
	}
	model.Extra = extra

	tx := db.GetTxFromContext(ctx, s.db)
	if err := tx.Create(model).Error; err != nil {
		return "", fmt.Errorf("failed to create student profile: %w", err)
	}

	studentID := id.FormatDisplayCode("STU", model.ID)
	if err := tx.Model(model).Update("student_id", studentID).Error; err != nil {
		return "", fmt.Errorf("failed to stamp student id: %w", err)
	}

	return studentID, nil
}

type trainerStrategy struct {
	db *gorm.DB
}

func (s *trainerStrategy) Create(ctx context.Context, input domainProfile.CreateInput) (string, error) {
	data := cloneData(input.Data)

	model := &models.TrainerProfileModel{
		UserID:         input.UserID,
		TrainerID:      id.MustGenerate(12),
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Phone:          popString(data, "phone"),
		Specialization: popString(data, "specialization"),
	}

	extra, err := marshalExtra(data)
	if err != nil {
		return "", err
	}
	model.Extra = extra

	tx := db.GetTxFromContext(ctx, s.db)
	if err := tx.Create(model).Error; err != nil {
		return "", fmt.Errorf("failed to create trainer profile: %w", err)
	}

	trainerID := id.FormatDisplayCode("TRN", model.ID)
	if err := tx.Model(model).Update("trainer_id", trainerID).Error; err != nil {
		return "", fmt.Errorf("failed to stamp trainer id: %w", err)
	}

	return trainerID, nil
}

// genericStrategy stores the whole profile subtree as JSON for roles
// without a dedicated table.
type genericStrategy struct {
	db *gorm.DB
}

func (s *genericStrategy) Create(ctx context.Context, input domainProfile.CreateInput) (string, error) {
	data, err := marshalExtra(input.Data)
	if err != nil {
		return "", err
	}

	model := &models.GenericProfileModel{
		UserID:    input.UserID,
		ProfileID: id.MustGenerate(12),
		RoleCode:  input.RoleCode,
		Data:      data,
	}

	tx := db.GetTxFromContext(ctx, s.db)
	if err := tx.Create(model).Error; err != nil {
		return "", fmt.Errorf("failed to create profile: %w", err)
	}

	profileID := id.FormatDisplayCode(input.RoleCode, model.ID)
	if err := tx.Model(model).Update("profile_id", profileID).Error; err != nil {
		return "", fmt.Errorf("failed to stamp profile id: %w", err)
	}

	return profileID, nil
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func popString(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok {
		return ""
	}
	delete(data, key)
	s, _ := v.(string)
	return s
}

func popDate(data map[string]any, key string) *time.Time {
	s := popString(data, key)
	if s == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &parsed
}

func marshalExtra(data map[string]any) (datatypes.JSON, error) {
	if len(data) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile data: %w", err)
	}
	return datatypes.JSON(raw), nil
}
