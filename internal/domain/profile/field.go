package profile

import (
	"fmt"
	"strconv"
	"time"
)

// FieldType constrains the value an onboarding form field may carry.
type FieldType string

const (
	FieldTypeText    FieldType = "TEXT"
	FieldTypeNumber  FieldType = "NUMBER"
	FieldTypeDate    FieldType = "DATE"
	FieldTypeBoolean FieldType = "BOOLEAN"
	FieldTypeChoice  FieldType = "CHOICE"
)

func (ft FieldType) IsValid() bool {
	switch ft {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeBoolean, FieldTypeChoice:
		return true
	}
	return false
}

func ParseFieldType(raw string) (FieldType, error) {
	ft := FieldType(raw)
	if !ft.IsValid() {
		return "", fmt.Errorf("invalid field type: %s", raw)
	}
	return ft, nil
}

// FieldSpec is one entry of a registration or admin form schema. Keys use
// dotted paths; anything under "profile." lands in the profile payload,
// everything else on the identity record.
type FieldSpec struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Section  string    `json:"section"`
	Options  []string  `json:"options,omitempty"`
}

// Validate checks a submitted value against the field's type and options.
// A nil value passes here; required-field presence is the caller's check.
func (f FieldSpec) Validate(value any) error {
	if value == nil {
		return nil
	}
	switch f.Type {
	case FieldTypeText:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("field %s must be a string", f.Key)
		}
	case FieldTypeNumber:
		switch v := value.(type) {
		case float64, int, int64, uint:
		case string:
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return fmt.Errorf("field %s must be numeric", f.Key)
			}
		default:
			return fmt.Errorf("field %s must be numeric", f.Key)
		}
	case FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("field %s must be a boolean", f.Key)
		}
	case FieldTypeDate:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s must be a date string", f.Key)
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return fmt.Errorf("field %s must be a date in YYYY-MM-DD format", f.Key)
		}
	case FieldTypeChoice:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s must be one of the allowed options", f.Key)
		}
		for _, opt := range f.Options {
			if s == opt {
				return nil
			}
		}
		return fmt.Errorf("field %s must be one of the allowed options", f.Key)
	}
	return nil
}
