package services

import (
	"context"
	"fmt"
	"strings"

	"instra/internal/domain/profile"
	"instra/internal/shared/errors"
)

// MergeService folds the invitee's submission and the admin's corrections
// into the single flat payload provisioning consumes. Admin values win on
// every conflicting key. The merged payload is revalidated against the
// full schema regardless of what either side individually passed, so
// neither party can smuggle an invalid record through the other's stage.
type MergeService struct {
	schema *SchemaService
}

func NewMergeService(schema *SchemaService) *MergeService {
	return &MergeService{schema: schema}
}

// Merge returns the flat dotted-key payload. The email always comes from
// the request record, never from either payload.
func (m *MergeService) Merge(ctx context.Context, roleCode, email string, userPayload, adminPayload map[string]any) (map[string]any, error) {
	merged := make(map[string]any, len(userPayload)+len(adminPayload)+1)
	for k, v := range flatten(userPayload) {
		merged[k] = v
	}
	for k, v := range flatten(adminPayload) {
		merged[k] = v
	}
	merged["email"] = email

	schema, err := m.schema.FullSchema(ctx, roleCode)
	if err != nil {
		return nil, err
	}
	if err := validateAgainstSchema(merged, schema); err != nil {
		return nil, err
	}

	return merged, nil
}

// ValidateStage flattens and checks a single stage's payload, so the
// invitee gets field errors at submit time instead of at approval. Returns
// the flattened payload.
func (m *MergeService) ValidateStage(ctx context.Context, roleCode, stage string, payload map[string]any) (map[string]any, error) {
	schema, err := m.schema.Schema(ctx, roleCode, stage)
	if err != nil {
		return nil, err
	}
	flat := flatten(payload)
	if err := validateAgainstSchema(flat, schema); err != nil {
		return nil, err
	}
	return flat, nil
}

func validateAgainstSchema(payload map[string]any, schema []profile.FieldSpec) error {
	var problems []string
	for _, field := range schema {
		value, present := payload[field.Key]
		if !present || value == nil || value == "" {
			if field.Required {
				problems = append(problems, fmt.Sprintf("field %s is required", field.Key))
			}
			continue
		}
		if err := field.Validate(value); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.NewValidationError("merged payload failed validation", strings.Join(problems, "; "))
	}
	return nil
}

// flatten normalizes a payload into dotted keys: a nested "profile" map
// becomes profile.x entries, already-dotted keys pass through.
func flatten(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if nested, ok := v.(map[string]any); ok {
			for nk, nv := range flatten(nested) {
				out[k+"."+nk] = nv
			}
			continue
		}
		out[k] = v
	}
	return out
}

// SplitProfile partitions a flat merged payload into identity fields and
// the profile subtree with the "profile." prefix stripped.
func SplitProfile(merged map[string]any) (identity map[string]any, profileData map[string]any) {
	identity = make(map[string]any)
	profileData = make(map[string]any)
	for k, v := range merged {
		if strings.HasPrefix(k, "profile.") {
			profileData[strings.TrimPrefix(k, "profile.")] = v
			continue
		}
		identity[k] = v
	}
	return identity, profileData
}
