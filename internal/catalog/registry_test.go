package catalog

import (
	"reflect"
	"sort"
	"testing"

	"stepladder/practice-app/internal/domain"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	r := Default()
	if len(r.All()) == 0 {
		t.Fatal("default catalog is empty")
	}
}

func TestGetByIDIdentityRoundTrip(t *testing.T) {
	r := Default()
	for _, tpl := range r.All() {
		got := r.GetByID(tpl.ID)
		if got == nil {
			t.Fatalf("GetByID(%q) = nil", tpl.ID)
		}
		if !reflect.DeepEqual(*got, tpl) {
			t.Errorf("GetByID(%q) differs from the catalog entry", tpl.ID)
		}
	}
}

func TestAllReturnsDetachedSlice(t *testing.T) {
	r := Default()

	got := r.All()
	original := got[0].ID
	got[0] = domain.WorksheetTemplate{ID: "clobbered"}

	if r.All()[0].ID != original {
		t.Error("mutating the slice returned by All reached the catalog")
	}
	if r.GetByID(original) == nil {
		t.Errorf("template %q lost after caller-side mutation", original)
	}
}

func TestGetByID(t *testing.T) {
	r := Default()

	tpl := r.GetByID("cbt-thought-record")
	if tpl == nil {
		t.Fatal("GetByID(cbt-thought-record) = nil")
	}
	if tpl.Modality != domain.ModalityCBT {
		t.Errorf("modality = %q, want CBT", tpl.Modality)
	}

	if got := r.GetByID("no-such-worksheet"); got != nil {
		t.Errorf("GetByID(no-such-worksheet) = %+v, want nil", got)
	}
}

func TestGetByModality(t *testing.T) {
	r := Default()
	for _, tpl := range r.GetByModality(domain.ModalityERP) {
		if tpl.Modality != domain.ModalityERP {
			t.Errorf("template %q has modality %q", tpl.ID, tpl.Modality)
		}
	}
	if len(r.GetByModality(domain.ModalityERP)) == 0 {
		t.Error("no ERP templates in the seed catalog")
	}
}

func TestDomainsSortedAndDeduplicated(t *testing.T) {
	r := Default()
	domains := r.Domains()
	if !sort.StringsAreSorted(domains) {
		t.Errorf("Domains() not sorted: %v", domains)
	}
	seen := make(map[string]bool)
	for _, d := range domains {
		if seen[d] {
			t.Errorf("Domains() contains %q twice", d)
		}
		seen[d] = true
	}
	if !seen["Depression"] || !seen["OCD"] {
		t.Errorf("Domains() = %v, missing expected entries", domains)
	}
}

func TestFilterModality(t *testing.T) {
	r := Default()

	got := r.Filter(Filter{Modality: "DBT"})
	if len(got) == 0 {
		t.Fatal("no DBT templates matched")
	}
	for _, tpl := range got {
		if tpl.Modality != domain.ModalityDBT {
			t.Errorf("template %q leaked through DBT filter", tpl.ID)
		}
	}

	// "All" and empty string both disable the dimension.
	if len(r.Filter(Filter{Modality: ModalityAll})) != len(r.All()) {
		t.Error("Modality=All filtered templates out")
	}
	if len(r.Filter(Filter{})) != len(r.All()) {
		t.Error("zero filter filtered templates out")
	}
}

func TestFilterDomainsAnyMatch(t *testing.T) {
	r := Default()
	got := r.Filter(Filter{Domains: []string{"Insomnia", "Substance Use"}})

	ids := make(map[string]bool)
	for _, tpl := range got {
		ids[tpl.ID] = true
	}
	if !ids["cbtj-sleep-diary"] || !ids["sud-craving-log"] {
		t.Errorf("domain OR filter matched %v", ids)
	}
	if ids["cbt-thought-record"] {
		t.Error("unrelated template matched domain filter")
	}
}

func TestFilterSearch(t *testing.T) {
	r := Default()

	got := r.Filter(Filter{Search: "thought"})
	if len(got) == 0 {
		t.Fatal("search 'thought' matched nothing")
	}
	for _, tpl := range got {
		if tpl.ID == "sud-craving-log" {
			t.Error("search 'thought' matched the craving log")
		}
	}

	// Case-insensitive, and module names are searched too.
	if len(r.Filter(Filter{Search: "EXPOSURE"})) == 0 {
		t.Error("uppercase search term matched nothing")
	}
}

func TestFilterDimensionsCompose(t *testing.T) {
	r := Default()
	got := r.Filter(Filter{Modality: "CBT", Domains: []string{"Depression"}, Search: "activity"})
	if len(got) != 1 || got[0].ID != "cbt-behavioral-activation" {
		t.Errorf("composed filter = %v, want only cbt-behavioral-activation", got)
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	tpl := domain.WorksheetTemplate{
		ID: "dup", Title: "Dup", Modality: domain.ModalityCBT,
		Fields: []domain.WorksheetField{{ID: "a", Label: "A", Type: domain.FieldText}},
	}
	if _, err := NewRegistry([]domain.WorksheetTemplate{tpl, tpl}); err == nil {
		t.Fatal("NewRegistry accepted duplicate template ids")
	}
}

func TestNewRegistryRejectsInvalidTemplate(t *testing.T) {
	bad := domain.WorksheetTemplate{ID: "bad", Title: "Bad", Modality: domain.ModalityCBT,
		Fields: []domain.WorksheetField{{ID: "a", Label: "A", Type: "hologram"}}}
	if _, err := NewRegistry([]domain.WorksheetTemplate{bad}); err == nil {
		t.Fatal("NewRegistry accepted an invalid template")
	}
}
