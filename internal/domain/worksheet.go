package domain

import (
	"errors"
	"fmt"
)

// WorksheetFieldType enumerates the closed set of input kinds a worksheet
// field can take. There is no plugin mechanism; the renderer switches over
// exactly these values.
type WorksheetFieldType string

const (
	FieldText          WorksheetFieldType = "text"
	FieldTextarea      WorksheetFieldType = "textarea"
	FieldNumber        WorksheetFieldType = "number"
	FieldRating0To10   WorksheetFieldType = "rating_0_10"
	FieldCheckbox      WorksheetFieldType = "checkbox"
	FieldCheckboxGroup WorksheetFieldType = "checkbox_group"
	FieldSelect        WorksheetFieldType = "select"
	FieldMultiSelect   WorksheetFieldType = "multi_select"
	FieldDate          WorksheetFieldType = "date"
	FieldTime          WorksheetFieldType = "time"
	FieldLikert        WorksheetFieldType = "likert"
)

var fieldTypes = map[WorksheetFieldType]bool{
	FieldText:          true,
	FieldTextarea:      true,
	FieldNumber:        true,
	FieldRating0To10:   true,
	FieldCheckbox:      true,
	FieldCheckboxGroup: true,
	FieldSelect:        true,
	FieldMultiSelect:   true,
	FieldDate:          true,
	FieldTime:          true,
	FieldLikert:        true,
}

// IsValidFieldType reports whether s names one of the supported field types.
func IsValidFieldType(s string) bool {
	return fieldTypes[WorksheetFieldType(s)]
}

// Modality is a therapy-approach category used to group worksheet templates.
type Modality string

const (
	ModalityCBT  Modality = "CBT"
	ModalityERP  Modality = "ERP"
	ModalityDBT  Modality = "DBT"
	ModalityCBTJ Modality = "CBT-J"
	ModalitySUD  Modality = "SUD"
)

// WorksheetFieldOption is one selectable choice for option-backed field types.
type WorksheetFieldOption struct {
	Value string `bson:"value" json:"value"`
	Label string `bson:"label" json:"label"`
}

// WorksheetField is a single input definition within a worksheet template.
type WorksheetField struct {
	ID          string             `bson:"id" json:"id"`
	Label       string             `bson:"label" json:"label"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Placeholder string             `bson:"placeholder,omitempty" json:"placeholder,omitempty"`
	Type        WorksheetFieldType `bson:"type" json:"type"`
	Required    bool               `bson:"required,omitempty" json:"required,omitempty"`

	// Options is required for select, multi_select, checkbox_group and likert
	// fields, and must be absent for every other type.
	Options []WorksheetFieldOption `bson:"options,omitempty" json:"options,omitempty"`

	// Min/Max are numeric bounds for number and rating fields.
	Min *float64 `bson:"min,omitempty" json:"min,omitempty"`
	Max *float64 `bson:"max,omitempty" json:"max,omitempty"`

	// ClinicianConfigurable marks fields a therapist may pre-fill before the
	// client ever sees the worksheet.
	ClinicianConfigurable bool `bson:"clinicianConfigurable,omitempty" json:"clinicianConfigurable,omitempty"`
}

// NeedsOptions reports whether this field's type requires an option list.
func (f WorksheetField) NeedsOptions() bool {
	switch f.Type {
	case FieldSelect, FieldMultiSelect, FieldCheckboxGroup, FieldLikert:
		return true
	default:
		return false
	}
}

// HasOption reports whether value is one of the field's option values.
func (f WorksheetField) HasOption(value string) bool {
	for _, opt := range f.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants of a single field definition.
func (f WorksheetField) Validate() error {
	if f.ID == "" {
		return errors.New("field id is required")
	}
	if f.Label == "" {
		return fmt.Errorf("field %q: label is required", f.ID)
	}
	if !IsValidFieldType(string(f.Type)) {
		return fmt.Errorf("field %q: unknown type %q", f.ID, f.Type)
	}
	if f.NeedsOptions() && len(f.Options) == 0 {
		return fmt.Errorf("field %q: type %q requires options", f.ID, f.Type)
	}
	if !f.NeedsOptions() && len(f.Options) > 0 {
		return fmt.Errorf("field %q: type %q must not carry options", f.ID, f.Type)
	}
	if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
		return fmt.Errorf("field %q: min %v greater than max %v", f.ID, *f.Min, *f.Max)
	}
	return nil
}

// WorksheetTemplate is an immutable catalog entry: ordered field definitions
// plus the metadata used for browsing and filtering. Templates are created at
// seed time and never mutated by user action.
type WorksheetTemplate struct {
	ID             string           `bson:"id" json:"id"`
	Title          string           `bson:"title" json:"title"`
	Modality       Modality         `bson:"modality" json:"modality"`
	Modules        []string         `bson:"modules" json:"modules"`
	ProblemDomains []string         `bson:"problemDomains" json:"problemDomains"`
	EvidenceTag    string           `bson:"evidenceTag,omitempty" json:"evidenceTag,omitempty"`
	Description    string           `bson:"description,omitempty" json:"description,omitempty"`
	Fields         []WorksheetField `bson:"fields" json:"fields"`
}

// Field returns the field with the given id, or nil if the template has none.
func (t *WorksheetTemplate) Field(id string) *WorksheetField {
	for i := range t.Fields {
		if t.Fields[i].ID == id {
			return &t.Fields[i]
		}
	}
	return nil
}

// Validate checks the structural invariants of a template: non-empty
// identity, valid fields, and field ids unique within the template.
func (t *WorksheetTemplate) Validate() error {
	if t.ID == "" {
		return errors.New("template id is required")
	}
	if t.Title == "" {
		return fmt.Errorf("template %q: title is required", t.ID)
	}
	if t.Modality == "" {
		return fmt.Errorf("template %q: modality is required", t.ID)
	}
	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("template %q: %w", t.ID, err)
		}
		if seen[f.ID] {
			return fmt.Errorf("template %q: duplicate field id %q", t.ID, f.ID)
		}
		seen[f.ID] = true
	}
	return nil
}
