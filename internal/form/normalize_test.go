package form

import (
	"reflect"
	"testing"

	"stepladder/practice-app/internal/domain"
)

func optField(ft domain.WorksheetFieldType, values ...string) domain.WorksheetField {
	f := domain.WorksheetField{ID: "f", Label: "F", Type: ft}
	for _, v := range values {
		f.Options = append(f.Options, domain.WorksheetFieldOption{Value: v, Label: v})
	}
	return f
}

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name    string
		field   domain.WorksheetField
		raw     any
		want    any
		wantSet bool
	}{
		{"text keeps string", optField(domain.FieldText), "hello", "hello", true},
		{"text empty unsets", optField(domain.FieldText), "", nil, false},
		{"text non-string unsets", optField(domain.FieldText), 7, nil, false},
		{"textarea keeps string", optField(domain.FieldTextarea), "long form", "long form", true},

		{"number float64", optField(domain.FieldNumber), 42.5, 42.5, true},
		{"number int", optField(domain.FieldNumber), 7, 7.0, true},
		{"number int32", optField(domain.FieldNumber), int32(42), 42.0, true},
		{"number int64", optField(domain.FieldNumber), int64(42), 42.0, true},
		{"number uint32", optField(domain.FieldNumber), uint32(42), 42.0, true},
		{"number numeric string", optField(domain.FieldNumber), "12.5", 12.5, true},
		{"number garbage string unsets", optField(domain.FieldNumber), "abc", nil, false},
		{"number empty string unsets", optField(domain.FieldNumber), "", nil, false},
		{"number bool unsets", optField(domain.FieldNumber), true, nil, false},

		{"rating integral", optField(domain.FieldRating0To10), 7.0, 7, true},
		{"rating int32", optField(domain.FieldRating0To10), int32(7), 7, true},
		{"rating zero", optField(domain.FieldRating0To10), 0, 0, true},
		{"rating ten", optField(domain.FieldRating0To10), 10, 10, true},
		{"rating fractional unsets", optField(domain.FieldRating0To10), 6.5, nil, false},
		{"rating above range unsets", optField(domain.FieldRating0To10), 11, nil, false},
		{"rating negative unsets", optField(domain.FieldRating0To10), -1, nil, false},

		{"checkbox true", optField(domain.FieldCheckbox), true, true, true},
		{"checkbox false is a value", optField(domain.FieldCheckbox), false, false, true},
		{"checkbox string unsets", optField(domain.FieldCheckbox), "true", nil, false},

		{"select known option", optField(domain.FieldSelect, "a", "b"), "b", "b", true},
		{"select unknown option unsets", optField(domain.FieldSelect, "a", "b"), "c", nil, false},
		{"likert known option", optField(domain.FieldLikert, "low", "high"), "low", "low", true},

		{"date valid", optField(domain.FieldDate), "2025-03-01", "2025-03-01", true},
		{"date invalid unsets", optField(domain.FieldDate), "03/01/2025", nil, false},
		{"time valid", optField(domain.FieldTime), "22:30", "22:30", true},
		{"time invalid unsets", optField(domain.FieldTime), "10:30 PM", nil, false},

		{"nil unsets everything", optField(domain.FieldText), nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, set := normalizeValue(tt.field, tt.raw)
			if set != tt.wantSet {
				t.Fatalf("set = %v, want %v", set, tt.wantSet)
			}
			if set && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("value = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestNormalizeOptionListReordersToOptionOrder(t *testing.T) {
	field := optField(domain.FieldMultiSelect, "first", "second", "third")

	got, set := normalizeValue(field, []string{"third", "first"})
	if !set {
		t.Fatal("selection did not survive normalization")
	}
	if !reflect.DeepEqual(got, []string{"first", "third"}) {
		t.Errorf("selection = %v, want option order", got)
	}
}

func TestNormalizeOptionListFiltersUnknown(t *testing.T) {
	field := optField(domain.FieldCheckboxGroup, "a", "b")

	got, set := normalizeValue(field, []any{"b", "zzz"})
	if !set || !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("got %v (set=%v), want [b]", got, set)
	}

	// All-unknown selections collapse to unset.
	if _, set := normalizeValue(field, []string{"zzz"}); set {
		t.Error("selection of only unknown values stayed set")
	}
	if _, set := normalizeValue(field, []string{}); set {
		t.Error("empty selection stayed set")
	}
}
