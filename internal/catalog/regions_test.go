package catalog

import (
	"sort"
	"testing"

	"github.com/licitapp/licitapp/internal/models"
)

func TestRegionsDedupedAndSorted(t *testing.T) {
	records := []models.Tender{
		{Provincia: "Sevilla"},
		{Provincia: "Madrid"},
		{Provincia: "Sevilla"},
		{Provincia: "Barcelona"},
	}

	got := Regions(records)
	expected := []string{"Barcelona", "Madrid", "Sevilla"}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, got)
		}
	}
	if !sort.StringsAreSorted(got) {
		t.Errorf("regions not sorted: %v", got)
	}
}

func TestRegionsFallbackToCCAA(t *testing.T) {
	records := []models.Tender{
		{Provincia: "Madrid", CCAA: "Comunidad de Madrid"},
		{CCAA: "Cataluña"},
		{}, // no location at all, contributes nothing
	}

	got := Regions(records)
	expected := []string{"Cataluña", "Madrid"}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, got)
		}
	}
}

func TestRegionsEmptyInput(t *testing.T) {
	if got := Regions(nil); len(got) != 0 {
		t.Fatalf("expected no regions, got %v", got)
	}
}
