package form

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"stepladder/practice-app/internal/domain"
)

// normalizeValue coerces a raw (JSON-decoded) value into the canonical shape
// for the field's type. The second return is false when the value does not
// survive normalization, in which case the field is treated as unset rather
// than erroring: edit-time input problems are not validation failures.
// One case per field type; adding a type means adding a case here.
func normalizeValue(field domain.WorksheetField, raw any) (any, bool) {
	if raw == nil {
		return nil, false
	}
	switch field.Type {
	case domain.FieldText, domain.FieldTextarea:
		return normalizeText(raw)
	case domain.FieldNumber:
		return normalizeNumber(raw)
	case domain.FieldRating0To10:
		return normalizeRating(raw)
	case domain.FieldCheckbox:
		return normalizeCheckbox(raw)
	case domain.FieldCheckboxGroup, domain.FieldMultiSelect:
		return normalizeOptionList(field, raw)
	case domain.FieldSelect, domain.FieldLikert:
		return normalizeOptionValue(field, raw)
	case domain.FieldDate:
		return normalizeLexical(raw, "2006-01-02")
	case domain.FieldTime:
		return normalizeLexical(raw, "15:04")
	default:
		return nil, false
	}
}

// Empty string normalizes to unset so that required-checks treat cleared
// inputs and never-touched inputs identically.
func normalizeText(raw any) (any, bool) {
	s, ok := raw.(string)
	if !ok || s == "" {
		return nil, false
	}
	return s, true
}

// Invalid or empty numeric input is unset, not an error; the required check
// at submit time is the only gate.
func normalizeNumber(raw any) (any, bool) {
	f, ok := toFloat(raw)
	if !ok {
		return nil, false
	}
	return f, true
}

// Ratings are 11 discrete buckets; anything outside [0,10] or fractional is
// not a bucket and therefore unset.
func normalizeRating(raw any) (any, bool) {
	f, ok := toFloat(raw)
	if !ok || f != math.Trunc(f) || f < 0 || f > 10 {
		return nil, false
	}
	return int(f), true
}

// An explicit false is a recorded answer, distinct from unset.
func normalizeCheckbox(raw any) (any, bool) {
	b, ok := raw.(bool)
	if !ok {
		return nil, false
	}
	return b, true
}

// Selections are filtered to the field's known option values and re-ordered
// to option order, which keeps the stored list deterministic and
// round-trippable regardless of click order. Empty selections are unset.
func normalizeOptionList(field domain.WorksheetField, raw any) (any, bool) {
	selected := make(map[string]bool)
	switch vs := raw.(type) {
	case []string:
		for _, v := range vs {
			selected[v] = true
		}
	case []any:
		for _, item := range vs {
			if s, ok := item.(string); ok {
				selected[s] = true
			}
		}
	default:
		return nil, false
	}
	var out []string
	for _, opt := range field.Options {
		if selected[opt.Value] {
			out = append(out, opt.Value)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

func normalizeOptionValue(field domain.WorksheetField, raw any) (any, bool) {
	s, ok := raw.(string)
	if !ok || !field.HasOption(s) {
		return nil, false
	}
	return s, true
}

// Dates and times are fixed lexical formats (ISO date, 24h clock), no
// timezone handling. The parsed value is discarded; the string is canonical.
func normalizeLexical(raw any, layout string) (any, bool) {
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	if _, err := time.Parse(layout, s); err != nil {
		return nil, false
	}
	return s, true
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	// Mongo decodes small BSON integers inside map[string]any as int32, so
	// stored ratings and numbers come back in these widths.
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		if v == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
