// Package form implements the schema-driven worksheet form engine: per-type
// value normalization, a declarative rendering of each field, and
// required-field validation at submit time. The engine never persists
// anything; the caller owns the submit seam.
package form

import (
	"errors"

	"stepladder/practice-app/internal/domain"
)

// Values is a collected value map, keyed by WorksheetField id.
type Values map[string]any

// Errors maps a failing field id to a human-readable message.
type Errors map[string]string

var (
	// ErrReadOnly is returned when a caller edits or submits a read-only form.
	ErrReadOnly = errors.New("form is read-only")
	// ErrUnknownField is returned when a value targets a field id the form
	// does not render.
	ErrUnknownField = errors.New("unknown field id")
)

// Form holds the in-flight state of one worksheet being filled in: the field
// list, the collected values, and errors from the last submit attempt.
type Form struct {
	template *domain.WorksheetTemplate
	fields   []domain.WorksheetField
	values   Values
	errors   Errors
	readOnly bool
}

// New creates an editable form over every field of the template. Default
// values (typically the assignment's effective values) are normalized on the
// way in; values that do not survive normalization are dropped.
func New(template *domain.WorksheetTemplate, defaults Values) *Form {
	return build(template, template.Fields, defaults, false)
}

// NewReadOnly creates a display-only form: SetValue and Submit are inert and
// Render purely shows the given values.
func NewReadOnly(template *domain.WorksheetTemplate, values Values) *Form {
	return build(template, template.Fields, values, true)
}

// NewConfig creates an editable form restricted to the template's clinician
// configurable fields. Therapists use it to pre-fill an assignment before
// the client sees the worksheet.
func NewConfig(template *domain.WorksheetTemplate, defaults Values) *Form {
	var fields []domain.WorksheetField
	for _, f := range template.Fields {
		if f.ClinicianConfigurable {
			fields = append(fields, f)
		}
	}
	return build(template, fields, defaults, false)
}

func build(template *domain.WorksheetTemplate, fields []domain.WorksheetField, defaults Values, readOnly bool) *Form {
	f := &Form{
		template: template,
		fields:   fields,
		values:   make(Values, len(defaults)),
		errors:   make(Errors),
		readOnly: readOnly,
	}
	for _, field := range f.fields {
		raw, ok := defaults[field.ID]
		if !ok {
			continue
		}
		if v, set := normalizeValue(field, raw); set {
			f.values[field.ID] = v
		}
	}
	return f
}

// ReadOnly reports whether the form accepts edits.
func (f *Form) ReadOnly() bool { return f.readOnly }

// Template returns the template the form renders.
func (f *Form) Template() *domain.WorksheetTemplate { return f.template }

// SetValue records an edit for one field, normalizing the raw value per the
// field's type. Values that normalize to "unset" (empty strings, unparsable
// numbers, unknown option values, empty selections) clear the field instead
// of storing junk. Any pending error on the field is cleared.
func (f *Form) SetValue(fieldID string, raw any) error {
	if f.readOnly {
		return ErrReadOnly
	}
	field := f.fieldByID(fieldID)
	if field == nil {
		return ErrUnknownField
	}
	if v, set := normalizeValue(*field, raw); set {
		f.values[fieldID] = v
	} else {
		delete(f.values, fieldID)
	}
	delete(f.errors, fieldID)
	return nil
}

// Value returns the current normalized value of a field, with ok=false when
// the field is unset.
func (f *Form) Value(fieldID string) (any, bool) {
	v, ok := f.values[fieldID]
	return v, ok
}

// Values returns a copy of the collected value map.
func (f *Form) Values() Values {
	out := make(Values, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Submit runs required-field validation over the collected values. On
// success it returns the value map and a nil error map; on failure it
// returns nil values and one message per failing field. Validation failure
// is a value, never a panic, and nothing is partially submitted.
func (f *Form) Submit() (Values, Errors, error) {
	if f.readOnly {
		return nil, nil, ErrReadOnly
	}
	f.errors = make(Errors)
	for _, field := range f.fields {
		if !field.Required {
			continue
		}
		v, ok := f.values[field.ID]
		if !ok || v == nil || v == "" {
			f.errors[field.ID] = field.Label + " is required"
		}
	}
	if len(f.errors) > 0 {
		errs := make(Errors, len(f.errors))
		for k, v := range f.errors {
			errs[k] = v
		}
		return nil, errs, nil
	}
	return f.Values(), nil, nil
}

func (f *Form) fieldByID(id string) *domain.WorksheetField {
	for i := range f.fields {
		if f.fields[i].ID == id {
			return &f.fields[i]
		}
	}
	return nil
}
