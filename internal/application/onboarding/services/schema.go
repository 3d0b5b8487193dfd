package services

import (
	"context"
	"fmt"

	"instra/internal/domain/profile"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

// Form stages. Registration is what the invitee fills in; admin is the
// extra sheet reviewers complete before approval.
const (
	StageRegistration = "registration"
	StageAdmin        = "admin"
)

// SchemaService assembles the form schema for a role and stage: universal
// identity fields first, then the role's static fields, then the
// admin-defined dynamic fields in definition order.
type SchemaService struct {
	configRepo profile.ConfigRepository
	fieldRepo  profile.FieldDefinitionRepository
	logger     logger.Interface
}

func NewSchemaService(
	configRepo profile.ConfigRepository,
	fieldRepo profile.FieldDefinitionRepository,
	logger logger.Interface,
) *SchemaService {
	return &SchemaService{
		configRepo: configRepo,
		fieldRepo:  fieldRepo,
		logger:     logger,
	}
}

var universalFields = []profile.FieldSpec{
	{Key: "first_name", Label: "First Name", Type: profile.FieldTypeText, Required: true, Section: "Personal"},
	{Key: "last_name", Label: "Last Name", Type: profile.FieldTypeText, Required: false, Section: "Personal"},
}

// staticFields is the hardcoded per-role form backbone, keyed by role
// code then stage. A minimal student submission needs only a first name
// plus the two enrollment choices; everything else can be filled in
// later through the admin sheet.
var staticFields = map[string]map[string][]profile.FieldSpec{
	"STUDENT": {
		StageRegistration: {
			{Key: "profile.phone", Label: "Phone Number", Type: profile.FieldTypeText, Required: false, Section: "Personal"},
			{Key: "profile.country_code", Label: "Country Code", Type: profile.FieldTypeChoice, Options: []string{"+91", "+1", "+44"}, Required: false, Section: "Personal"},
			{Key: "profile.ugdegree", Label: "UG Degree", Type: profile.FieldTypeText, Required: false, Section: "Education"},
			{Key: "profile.ugpassout", Label: "UG Passout Year", Type: profile.FieldTypeNumber, Required: false, Section: "Education"},
			{Key: "profile.working_status", Label: "Are you currently working?", Type: profile.FieldTypeChoice, Options: []string{"YES", "NO"}, Required: false, Section: "Work"},
			{Key: "profile.course_id", Label: "Select Course", Type: profile.FieldTypeNumber, Required: false, Section: "Education"},
			{Key: "profile.mode_of_class", Label: "Mode of Training", Type: profile.FieldTypeChoice, Options: []string{"ON", "OFF"}, Required: true, Section: "Education"},
			{Key: "profile.week_type", Label: "Batch Type", Type: profile.FieldTypeChoice, Options: []string{"WD", "WE"}, Required: true, Section: "Education"},
			{Key: "profile.source_of_joining", Label: "Source of Joining", Type: profile.FieldTypeNumber, Required: false, Section: "Education"},
		},
		StageAdmin: {
			{Key: "profile.consultant", Label: "Consultant", Type: profile.FieldTypeNumber, Required: false, Section: "Work"},
			{Key: "profile.course_id", Label: "Course", Type: profile.FieldTypeNumber, Required: false, Section: "Education"},
			{Key: "profile.trainer_id", Label: "Trainer", Type: profile.FieldTypeNumber, Required: false, Section: "Education"},
			{Key: "profile.batch_id", Label: "Batch", Type: profile.FieldTypeText, Required: false, Section: "Education"},
			{Key: "profile.course_status", Label: "Course Status", Type: profile.FieldTypeText, Required: false, Section: "Education"},
			{Key: "profile.pl_required", Label: "Placement Required", Type: profile.FieldTypeBoolean, Required: false, Section: "Work"},
			{Key: "profile.fees_total", Label: "Total Fees", Type: profile.FieldTypeNumber, Required: false, Section: "Work"},
			{Key: "profile.fees_paid", Label: "Fees Paid", Type: profile.FieldTypeNumber, Required: false, Section: "Work"},
		},
	},
	"TRAINER": {
		StageRegistration: {
			{Key: "profile.phone", Label: "Phone Number", Type: profile.FieldTypeText, Required: false, Section: "Personal"},
			{Key: "profile.employment_type", Label: "Employment Type", Type: profile.FieldTypeChoice, Options: []string{"FT", "FL"}, Required: true, Section: "Work"},
			{Key: "profile.years_of_experience", Label: "Years of Experience", Type: profile.FieldTypeNumber, Required: false, Section: "Work"},
			{Key: "profile.demo_link", Label: "Demo Link", Type: profile.FieldTypeText, Required: false, Section: "Work"},
			{Key: "profile.location", Label: "Location", Type: profile.FieldTypeText, Required: false, Section: "Personal"},
		},
		StageAdmin: {
			{Key: "profile.is_active", Label: "Active", Type: profile.FieldTypeBoolean, Required: false, Section: "Work"},
		},
	},
}

func (s *SchemaService) Schema(ctx context.Context, roleCode, stage string) ([]profile.FieldSpec, error) {
	if stage != StageRegistration && stage != StageAdmin {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown schema stage: %s", stage))
	}

	schema := make([]profile.FieldSpec, 0, 8)
	if stage == StageRegistration {
		schema = append(schema, universalFields...)
	}

	if roleStages, ok := staticFields[roleCode]; ok {
		schema = append(schema, roleStages[stage]...)
	}

	config, err := s.configRepo.GetByRoleCode(ctx, roleCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile config: %w", err)
	}
	if config == nil {
		return schema, nil
	}

	defs, err := s.fieldRepo.ListForConfig(ctx, config.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load field definitions: %w", err)
	}
	for _, def := range defs {
		if def.Stage() != "" && def.Stage() != stage {
			continue
		}
		schema = append(schema, def.Spec())
	}

	return schema, nil
}

// FullSchema concatenates both stages, which is what merge validation
// runs against.
func (s *SchemaService) FullSchema(ctx context.Context, roleCode string) ([]profile.FieldSpec, error) {
	registration, err := s.Schema(ctx, roleCode, StageRegistration)
	if err != nil {
		return nil, err
	}
	admin, err := s.Schema(ctx, roleCode, StageAdmin)
	if err != nil {
		return nil, err
	}
	return append(registration, admin...), nil
}
