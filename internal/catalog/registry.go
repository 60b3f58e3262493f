package catalog

import (
	"fmt"
	"sort"
	"strings"

	"stepladder/practice-app/internal/domain"
)

// ModalityAll is the sentinel filter value meaning "do not filter by modality".
const ModalityAll = "All"

// Registry holds the full worksheet template catalog. It is loaded once,
// validated, and immutable thereafter; lookups never touch I/O.
type Registry struct {
	templates []domain.WorksheetTemplate
	byID      map[string]*domain.WorksheetTemplate
}

// NewRegistry builds a registry from the given templates, validating each
// template and rejecting duplicate template ids.
func NewRegistry(templates []domain.WorksheetTemplate) (*Registry, error) {
	r := &Registry{
		templates: templates,
		byID:      make(map[string]*domain.WorksheetTemplate, len(templates)),
	}
	for i := range r.templates {
		t := &r.templates[i]
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, exists := r.byID[t.ID]; exists {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		r.byID[t.ID] = t
	}
	return r, nil
}

// Default returns a registry loaded with the built-in catalog.
// The seed data is static; an invalid seed is a programming error.
func Default() *Registry {
	r, err := NewRegistry(seedTemplates())
	if err != nil {
		panic("catalog: invalid seed data: " + err.Error())
	}
	return r
}

// All returns every template in catalog order. The returned slice is the
// caller's to reorder or truncate; the templates themselves (including their
// Fields and Options slices) are shared catalog data and must be treated as
// read-only.
func (r *Registry) All() []domain.WorksheetTemplate {
	out := make([]domain.WorksheetTemplate, len(r.templates))
	copy(out, r.templates)
	return out
}

// GetByID returns the template with the given id, or nil if the catalog has
// no such template. Absence is not an error. The returned template is shared
// catalog data and must be treated as read-only.
func (r *Registry) GetByID(id string) *domain.WorksheetTemplate {
	return r.byID[id]
}

// GetByModality returns all templates of the given modality, preserving
// catalog insertion order. Like All, the slice is fresh but the templates
// are shared read-only catalog data.
func (r *Registry) GetByModality(m domain.Modality) []domain.WorksheetTemplate {
	var out []domain.WorksheetTemplate
	for _, t := range r.templates {
		if t.Modality == m {
			out = append(out, t)
		}
	}
	return out
}

// Domains returns the sorted, de-duplicated union of problem domains across
// the whole catalog.
func (r *Registry) Domains() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range r.templates {
		for _, d := range t.ProblemDomains {
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Filter describes the three browse dimensions. Zero values (and the
// ModalityAll sentinel) disable their dimension; active dimensions compose
// with logical AND.
type Filter struct {
	Modality string   // exact match, "" or "All" = no-op
	Domains  []string // template matches if ANY of its domains is selected
	Search   string   // case-insensitive substring over title/description/modules/domains
}

// Filter applies f to the whole catalog.
func (r *Registry) Filter(f Filter) []domain.WorksheetTemplate {
	return FilterTemplates(r.templates, f)
}

// FilterTemplates applies f to an arbitrary template list, preserving order.
func FilterTemplates(templates []domain.WorksheetTemplate, f Filter) []domain.WorksheetTemplate {
	filtered := templates

	if f.Modality != "" && f.Modality != ModalityAll {
		var next []domain.WorksheetTemplate
		for _, t := range filtered {
			if t.Modality == domain.Modality(f.Modality) {
				next = append(next, t)
			}
		}
		filtered = next
	}

	if len(f.Domains) > 0 {
		selected := make(map[string]bool, len(f.Domains))
		for _, d := range f.Domains {
			selected[d] = true
		}
		var next []domain.WorksheetTemplate
		for _, t := range filtered {
			for _, d := range t.ProblemDomains {
				if selected[d] {
					next = append(next, t)
					break
				}
			}
		}
		filtered = next
	}

	if term := strings.TrimSpace(f.Search); term != "" {
		needle := strings.ToLower(term)
		var next []domain.WorksheetTemplate
		for _, t := range filtered {
			if templateMatchesSearch(t, needle) {
				next = append(next, t)
			}
		}
		filtered = next
	}

	return filtered
}

func templateMatchesSearch(t domain.WorksheetTemplate, needle string) bool {
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), needle) {
		return true
	}
	for _, m := range t.Modules {
		if strings.Contains(strings.ToLower(m), needle) {
			return true
		}
	}
	for _, d := range t.ProblemDomains {
		if strings.Contains(strings.ToLower(d), needle) {
			return true
		}
	}
	return false
}
