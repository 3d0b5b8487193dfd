package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instra/internal/domain/profile"
	appErrors "instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

type stubConfigRepo struct {
	config *profile.RoleProfileConfig
}

func (s *stubConfigRepo) Create(ctx context.Context, config *profile.RoleProfileConfig) error {
	return nil
}
func (s *stubConfigRepo) GetByRoleCode(ctx context.Context, roleCode string) (*profile.RoleProfileConfig, error) {
	return s.config, nil
}
func (s *stubConfigRepo) List(ctx context.Context) ([]*profile.RoleProfileConfig, error) {
	return nil, nil
}
func (s *stubConfigRepo) Update(ctx context.Context, config *profile.RoleProfileConfig) error {
	return nil
}

type stubFieldRepo struct {
	defs []*profile.FieldDefinition
}

func (s *stubFieldRepo) Create(ctx context.Context, def *profile.FieldDefinition) error { return nil }
func (s *stubFieldRepo) GetByID(ctx context.Context, id uint) (*profile.FieldDefinition, error) {
	return nil, nil
}
func (s *stubFieldRepo) ListForConfig(ctx context.Context, configID uint) ([]*profile.FieldDefinition, error) {
	return s.defs, nil
}
func (s *stubFieldRepo) Update(ctx context.Context, def *profile.FieldDefinition) error { return nil }
func (s *stubFieldRepo) Delete(ctx context.Context, id uint) error                      { return nil }

func newTestSchemaService(t *testing.T, defs ...*profile.FieldDefinition) *SchemaService {
	t.Helper()
	var config *profile.RoleProfileConfig
	if len(defs) > 0 {
		var err error
		now := time.Now()
		config, err = profile.ReconstructRoleProfileConfig(1, "STUDENT", true, profile.StorageDedicated, now, now)
		require.NoError(t, err)
	}
	return NewSchemaService(
		&stubConfigRepo{config: config},
		&stubFieldRepo{defs: defs},
		logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func validStudentPayload() map[string]any {
	return map[string]any{
		"first_name":            "Jane",
		"last_name":             "Doe",
		"profile.phone":         "+1-555-0101",
		"profile.mode_of_class": "ON",
		"profile.week_type":     "WD",
	}
}

func TestSchemaOrdering(t *testing.T) {
	def, err := profile.NewFieldDefinition(1, "blood_group", "Blood Group", profile.FieldTypeChoice, false, []string{"A+", "B+", "O+"}, "")
	require.NoError(t, err)
	require.NoError(t, def.SetID(5))

	svc := newTestSchemaService(t, def)
	schema, err := svc.Schema(context.Background(), "STUDENT", StageRegistration)
	require.NoError(t, err)

	// Universal identity fields come first, dynamic definitions last.
	assert.Equal(t, "first_name", schema[0].Key)
	assert.Equal(t, "last_name", schema[1].Key)
	assert.Equal(t, "profile.blood_group", schema[len(schema)-1].Key)
}

func TestSchemaRejectsUnknownStage(t *testing.T) {
	svc := newTestSchemaService(t)
	_, err := svc.Schema(context.Background(), "STUDENT", "review")
	require.Error(t, err)
	assert.True(t, appErrors.IsValidationError(err))
}

func TestMergeAdminWins(t *testing.T) {
	svc := NewMergeService(newTestSchemaService(t))

	user := validStudentPayload()
	user["first_name"] = "Jane"
	admin := map[string]any{
		"first_name":    "Janet",
		"profile.phone": "+1-555-0202",
	}

	merged, err := svc.Merge(context.Background(), "STUDENT", "jane@example.com", user, admin)
	require.NoError(t, err)
	assert.Equal(t, "Janet", merged["first_name"])
	assert.Equal(t, "+1-555-0202", merged["profile.phone"])
	assert.Equal(t, "Doe", merged["last_name"], "untouched user values survive")
	assert.Equal(t, "jane@example.com", merged["email"], "email comes from the record, not the payloads")
}

func TestMergeEmailCannotBeOverridden(t *testing.T) {
	svc := NewMergeService(newTestSchemaService(t))

	user := validStudentPayload()
	user["email"] = "attacker@example.com"

	merged, err := svc.Merge(context.Background(), "STUDENT", "jane@example.com", user, nil)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", merged["email"])
}

func TestMergeFlattensNestedProfileMaps(t *testing.T) {
	svc := NewMergeService(newTestSchemaService(t))

	user := map[string]any{
		"first_name": "Jane",
		"last_name":  "Doe",
		"profile": map[string]any{
			"phone":         "+1-555-0101",
			"mode_of_class": "ON",
			"week_type":     "WD",
		},
	}

	merged, err := svc.Merge(context.Background(), "STUDENT", "jane@example.com", user, nil)
	require.NoError(t, err)
	assert.Equal(t, "+1-555-0101", merged["profile.phone"])
}

func TestMergeValidationIsMandatory(t *testing.T) {
	svc := NewMergeService(newTestSchemaService(t))

	t.Run("missing required field", func(t *testing.T) {
		payload := validStudentPayload()
		delete(payload, "profile.week_type")
		_, err := svc.Merge(context.Background(), "STUDENT", "jane@example.com", payload, nil)
		require.Error(t, err)
		assert.True(t, appErrors.IsValidationError(err))
	})

	t.Run("choice outside options", func(t *testing.T) {
		payload := validStudentPayload()
		payload["profile.mode_of_class"] = "HYBRID"
		_, err := svc.Merge(context.Background(), "STUDENT", "jane@example.com", payload, nil)
		require.Error(t, err)
		assert.True(t, appErrors.IsValidationError(err))
	})

	t.Run("admin payload cannot bypass validation", func(t *testing.T) {
		payload := validStudentPayload()
		admin := map[string]any{"profile.week_type": "XX"}
		_, err := svc.Merge(context.Background(), "STUDENT", "jane@example.com", payload, admin)
		require.Error(t, err)
		assert.True(t, appErrors.IsValidationError(err))
	})

	t.Run("bad date in a dynamic field", func(t *testing.T) {
		def, err := profile.NewFieldDefinition(1, "date_of_birth", "Date of Birth", profile.FieldTypeDate, false, nil, "")
		require.NoError(t, err)
		require.NoError(t, def.SetID(7))
		dated := NewMergeService(newTestSchemaService(t, def))

		payload := validStudentPayload()
		payload["profile.date_of_birth"] = "12/04/2001"
		_, err = dated.Merge(context.Background(), "STUDENT", "jane@example.com", payload, nil)
		require.Error(t, err)
		assert.True(t, appErrors.IsValidationError(err))
	})
}

func TestValidateStageAcceptsMinimalStudentSubmission(t *testing.T) {
	svc := NewMergeService(newTestSchemaService(t))

	// A student can register with nothing but a first name and the two
	// enrollment choices; last name and the rest of the form are optional.
	flat, err := svc.ValidateStage(context.Background(), "STUDENT", StageRegistration, map[string]any{
		"first_name": "Alice",
		"profile": map[string]any{
			"mode_of_class": "ON",
			"week_type":     "WD",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ON", flat["profile.mode_of_class"])
	assert.Equal(t, "WD", flat["profile.week_type"])
}

func TestMergeValidatesDynamicChoiceFields(t *testing.T) {
	def, err := profile.NewFieldDefinition(1, "blood_group", "Blood Group", profile.FieldTypeChoice, false, []string{"A+", "B+"}, "")
	require.NoError(t, err)
	require.NoError(t, def.SetID(5))
	svc := NewMergeService(newTestSchemaService(t, def))

	payload := validStudentPayload()
	payload["profile.blood_group"] = "Z-"
	_, err = svc.Merge(context.Background(), "STUDENT", "jane@example.com", payload, nil)
	require.Error(t, err)
	assert.True(t, appErrors.IsValidationError(err))

	payload["profile.blood_group"] = "A+"
	_, err = svc.Merge(context.Background(), "STUDENT", "jane@example.com", payload, nil)
	require.NoError(t, err)
}

func TestSplitProfile(t *testing.T) {
	identity, profileData := SplitProfile(map[string]any{
		"email":         "jane@example.com",
		"first_name":    "Jane",
		"profile.phone": "+1-555-0101",
	})
	assert.Equal(t, "Jane", identity["first_name"])
	assert.Equal(t, "+1-555-0101", profileData["phone"])
	_, ok := profileData["email"]
	assert.False(t, ok)
}
