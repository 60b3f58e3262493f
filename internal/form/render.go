package form

import (
	"strconv"

	"stepladder/practice-app/internal/domain"
)

// ControlKind names the interactive control a field renders as. The kinds
// form a closed set mirroring the field types; a frontend switches over
// these instead of re-deriving control choice from field type.
type ControlKind string

const (
	ControlTextInput     ControlKind = "text_input"
	ControlTextArea      ControlKind = "text_area"
	ControlNumberInput   ControlKind = "number_input"
	ControlRatingScale   ControlKind = "rating_scale" // 11 discrete buckets, not free entry
	ControlCheckbox      ControlKind = "checkbox"
	ControlCheckboxGroup ControlKind = "checkbox_group"
	ControlDropdown      ControlKind = "dropdown"
	ControlMultiSelect   ControlKind = "multi_select"
	ControlDateInput     ControlKind = "date_input"
	ControlTimeInput     ControlKind = "time_input"
	ControlRadioGroup    ControlKind = "radio_group" // likert renders as buttons, not a dropdown
)

// Choice is one selectable item of an option-backed control, carrying its
// current selection state.
type Choice struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// RenderedField is the declarative rendering of one field: everything a UI
// needs to draw the control and its current state, with no behavior attached.
type RenderedField struct {
	FieldID     string      `json:"fieldId"`
	Label       string      `json:"label"`
	Description string      `json:"description,omitempty"`
	Placeholder string      `json:"placeholder,omitempty"`
	Required    bool        `json:"required,omitempty"`
	ReadOnly    bool        `json:"readOnly,omitempty"`
	Control     ControlKind `json:"control"`
	Value       any         `json:"value,omitempty"`
	Choices     []Choice    `json:"choices,omitempty"`
	Min         *float64    `json:"min,omitempty"`
	Max         *float64    `json:"max,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Render produces one RenderedField per form field, in template order,
// carrying current values and any errors from the last submit attempt.
func (f *Form) Render() []RenderedField {
	out := make([]RenderedField, 0, len(f.fields))
	for _, field := range f.fields {
		value := f.values[field.ID]
		rendered := renderField(field, value)
		rendered.ReadOnly = f.readOnly
		rendered.Error = f.errors[field.ID]
		out = append(out, rendered)
	}
	return out
}

// renderField dispatches to one render path per field type.
func renderField(field domain.WorksheetField, value any) RenderedField {
	switch field.Type {
	case domain.FieldText:
		return renderInput(field, value, ControlTextInput)
	case domain.FieldTextarea:
		return renderInput(field, value, ControlTextArea)
	case domain.FieldNumber:
		return renderNumber(field, value)
	case domain.FieldRating0To10:
		return renderRating(field, value)
	case domain.FieldCheckbox:
		return renderCheckbox(field, value)
	case domain.FieldCheckboxGroup:
		return renderOptionList(field, value, ControlCheckboxGroup)
	case domain.FieldSelect:
		return renderOptionValue(field, value, ControlDropdown)
	case domain.FieldMultiSelect:
		return renderOptionList(field, value, ControlMultiSelect)
	case domain.FieldDate:
		return renderInput(field, value, ControlDateInput)
	case domain.FieldTime:
		return renderInput(field, value, ControlTimeInput)
	case domain.FieldLikert:
		return renderOptionValue(field, value, ControlRadioGroup)
	default:
		// Unreachable for a validated template.
		return base(field, ControlTextInput)
	}
}

func base(field domain.WorksheetField, kind ControlKind) RenderedField {
	return RenderedField{
		FieldID:     field.ID,
		Label:       field.Label,
		Description: field.Description,
		Placeholder: field.Placeholder,
		Required:    field.Required,
		Control:     kind,
	}
}

func renderInput(field domain.WorksheetField, value any, kind ControlKind) RenderedField {
	r := base(field, kind)
	r.Value = value
	return r
}

func renderNumber(field domain.WorksheetField, value any) RenderedField {
	r := base(field, ControlNumberInput)
	r.Value = value
	r.Min = field.Min
	r.Max = field.Max
	return r
}

// renderRating draws the 0-10 scale as eleven buckets with the current
// bucket marked selected.
func renderRating(field domain.WorksheetField, value any) RenderedField {
	r := base(field, ControlRatingScale)
	current, hasValue := value.(int)
	r.Choices = make([]Choice, 0, 11)
	for i := 0; i <= 10; i++ {
		r.Choices = append(r.Choices, Choice{
			Value:    strconv.Itoa(i),
			Label:    strconv.Itoa(i),
			Selected: hasValue && current == i,
		})
	}
	r.Value = value
	return r
}

func renderCheckbox(field domain.WorksheetField, value any) RenderedField {
	r := base(field, ControlCheckbox)
	checked, _ := value.(bool) // unset renders unchecked
	r.Value = checked
	return r
}

func renderOptionList(field domain.WorksheetField, value any, kind ControlKind) RenderedField {
	r := base(field, kind)
	selected := make(map[string]bool)
	if vs, ok := value.([]string); ok {
		for _, v := range vs {
			selected[v] = true
		}
	}
	r.Choices = make([]Choice, 0, len(field.Options))
	for _, opt := range field.Options {
		r.Choices = append(r.Choices, Choice{Value: opt.Value, Label: opt.Label, Selected: selected[opt.Value]})
	}
	r.Value = value
	return r
}

func renderOptionValue(field domain.WorksheetField, value any, kind ControlKind) RenderedField {
	r := base(field, kind)
	current, _ := value.(string)
	r.Choices = make([]Choice, 0, len(field.Options))
	for _, opt := range field.Options {
		r.Choices = append(r.Choices, Choice{Value: opt.Value, Label: opt.Label, Selected: current == opt.Value})
	}
	r.Value = value
	return r
}
