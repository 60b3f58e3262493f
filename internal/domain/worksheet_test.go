package domain

import (
	"strings"
	"testing"
)

func validTemplate() WorksheetTemplate {
	return WorksheetTemplate{
		ID:       "tpl",
		Title:    "Template",
		Modality: ModalityCBT,
		Fields: []WorksheetField{
			{ID: "a", Label: "A", Type: FieldText},
			{ID: "b", Label: "B", Type: FieldSelect,
				Options: []WorksheetFieldOption{{Value: "x", Label: "X"}}},
		},
	}
}

func TestTemplateValidateOK(t *testing.T) {
	tpl := validTemplate()
	if err := tpl.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestTemplateValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*WorksheetTemplate)
		wantSub string
	}{
		{"missing id", func(tpl *WorksheetTemplate) { tpl.ID = "" }, "template id"},
		{"missing title", func(tpl *WorksheetTemplate) { tpl.Title = "" }, "title"},
		{"missing modality", func(tpl *WorksheetTemplate) { tpl.Modality = "" }, "modality"},
		{"unknown field type", func(tpl *WorksheetTemplate) { tpl.Fields[0].Type = "slider" }, "unknown type"},
		{"duplicate field id", func(tpl *WorksheetTemplate) { tpl.Fields[1].ID = "a" }, "duplicate field id"},
		{"select without options", func(tpl *WorksheetTemplate) { tpl.Fields[1].Options = nil }, "requires options"},
		{"text with options", func(tpl *WorksheetTemplate) {
			tpl.Fields[0].Options = []WorksheetFieldOption{{Value: "y", Label: "Y"}}
		}, "must not carry options"},
		{"min above max", func(tpl *WorksheetTemplate) {
			lo, hi := 10.0, 5.0
			tpl.Fields[0].Type = FieldNumber
			tpl.Fields[0].Min = &lo
			tpl.Fields[0].Max = &hi
		}, "min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := validTemplate()
			tt.mutate(&tpl)
			err := tpl.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestIsValidFieldType(t *testing.T) {
	for _, ft := range []WorksheetFieldType{
		FieldText, FieldTextarea, FieldNumber, FieldRating0To10, FieldCheckbox,
		FieldCheckboxGroup, FieldSelect, FieldMultiSelect, FieldDate, FieldTime, FieldLikert,
	} {
		if !IsValidFieldType(string(ft)) {
			t.Errorf("IsValidFieldType(%q) = false", ft)
		}
	}
	if IsValidFieldType("signature") {
		t.Error("IsValidFieldType accepted an unknown type")
	}
}

func TestTemplateFieldLookup(t *testing.T) {
	tpl := validTemplate()
	if f := tpl.Field("b"); f == nil || f.Label != "B" {
		t.Errorf("Field(b) = %+v", f)
	}
	if f := tpl.Field("missing"); f != nil {
		t.Errorf("Field(missing) = %+v, want nil", f)
	}
}
