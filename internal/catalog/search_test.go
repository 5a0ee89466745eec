package catalog

import (
	"testing"

	"github.com/licitapp/licitapp/internal/models"
)

func fptr(v float64) *float64 { return &v }

func ids(tenders []models.Tender) []string {
	out := make([]string, len(tenders))
	for i, t := range tenders {
		out[i] = t.ID
	}
	return out
}

func assertIDs(t *testing.T, got []models.Tender, expected ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(expected) {
		t.Fatalf("expected ids %v, got %v", expected, gotIDs)
	}
	for i := range expected {
		if gotIDs[i] != expected[i] {
			t.Fatalf("expected ids %v, got %v", expected, gotIDs)
		}
	}
}

func TestSearchEmptyCriteriaIsIdentityReordered(t *testing.T) {
	records := []models.Tender{
		{ID: "a", FechaLimite: "01/03/2024"},
		{ID: "b", FechaLimite: "01/01/2024"},
		{ID: "c", FechaLimite: "01/02/2024"},
	}

	got := Search(records, Criteria{})
	assertIDs(t, got, "b", "c", "a")
}

func TestRegionGateSubstringCaseInsensitive(t *testing.T) {
	records := []models.Tender{{ID: "madrid", Provincia: "Madrid"}}

	for _, region := range []string{"adri", "MADRID", "madrid"} {
		got := Search(records, Criteria{Region: region})
		if len(got) != 1 {
			t.Errorf("region %q should match provincia Madrid", region)
		}
	}

	if got := Search(records, Criteria{Region: "Sevilla"}); len(got) != 0 {
		t.Errorf("region Sevilla should not match Madrid, got %v", ids(got))
	}
}

func TestRegionGateFallsBackToCCAA(t *testing.T) {
	records := []models.Tender{{ID: "cat", CCAA: "Cataluña"}}

	if got := Search(records, Criteria{Region: "cataluña"}); len(got) != 1 {
		t.Error("region gate should resolve ccaa when provincia is empty")
	}
}

func TestAmountGateInclusiveBoundary(t *testing.T) {
	records := []models.Tender{{ID: "t", Importe: fptr(1000)}}

	if got := Search(records, Criteria{MinImporte: "1000"}); len(got) != 1 {
		t.Error("importe 1000 should pass minImporte 1000")
	}
	if got := Search(records, Criteria{MinImporte: "1000.01"}); len(got) != 0 {
		t.Error("importe 1000 should fail minImporte 1000.01")
	}
}

func TestAmountGateAbsentImporteIsZero(t *testing.T) {
	records := []models.Tender{{ID: "t"}}

	if got := Search(records, Criteria{MinImporte: "0"}); len(got) != 1 {
		t.Error("absent importe counts as 0 and passes minImporte 0")
	}
	if got := Search(records, Criteria{MinImporte: "1"}); len(got) != 0 {
		t.Error("absent importe counts as 0 and fails minImporte 1")
	}
}

func TestAmountGateUnparseableRejectsAll(t *testing.T) {
	records := []models.Tender{
		{ID: "a", Importe: fptr(100)},
		{ID: "b", Importe: fptr(1e9)},
	}

	if got := Search(records, Criteria{MinImporte: "abc"}); len(got) != 0 {
		t.Errorf("unparseable minImporte must reject every record, got %v", ids(got))
	}
}

func TestTextGateMatchesAnyField(t *testing.T) {
	records := []models.Tender{
		{ID: "title", Titulo: "Servicio de limpieza"},
		{ID: "organo", Organo: "Ayuntamiento de Sevilla"},
		{ID: "cpv", Titulo: "Otra cosa", Organo: "Otro ente", CPV: "45000000"},
	}

	assertIDs(t, Search(records, Criteria{Query: "LIMPIEZA"}), "title")
	assertIDs(t, Search(records, Criteria{Query: "sevilla"}), "organo")
	assertIDs(t, Search(records, Criteria{Query: "45000000"}), "cpv")
}

func TestTextGateSkipsAbsentFields(t *testing.T) {
	// A record with no text fields at all must not match a non-empty
	// query, even though "" is a substring of anything.
	records := []models.Tender{{ID: "bare"}}

	if got := Search(records, Criteria{Query: "obras"}); len(got) != 0 {
		t.Error("record with no text fields should never match a text query")
	}
}

func TestSearchOrderingWithDatelessRecord(t *testing.T) {
	records := []models.Tender{
		{ID: "march", FechaLimite: "01/03/2024"},
		{ID: "dateless"},
		{ID: "january", FechaLimite: "01/01/2024"},
	}

	got := Search(records, Criteria{})
	assertIDs(t, got, "dateless", "january", "march")
}

func TestSearchOrderingStableOnTies(t *testing.T) {
	records := []models.Tender{
		{ID: "first", FechaLimite: "01/06/2024"},
		{ID: "second", FechaLimite: "01/06/2024"},
		{ID: "third", FechaLimite: "01/06/2024"},
	}

	got := Search(records, Criteria{})
	assertIDs(t, got, "first", "second", "third")
}

func TestSearchConcreteScenario(t *testing.T) {
	records := []models.Tender{
		{ID: "1", Provincia: "Madrid", Importe: fptr(500), Titulo: "Limpieza"},
		{ID: "2", CCAA: "Cataluña", Importe: fptr(2000), Titulo: "Obras"},
	}

	got := Search(records, Criteria{Query: "obras"})
	assertIDs(t, got, "2")
}

func TestSearchGatesAreConjunctive(t *testing.T) {
	records := []models.Tender{
		{ID: "match", Provincia: "Madrid", Importe: fptr(5000), Titulo: "Obras de reforma"},
		{ID: "wrong-region", Provincia: "Sevilla", Importe: fptr(5000), Titulo: "Obras de reforma"},
		{ID: "too-cheap", Provincia: "Madrid", Importe: fptr(100), Titulo: "Obras de reforma"},
		{ID: "wrong-text", Provincia: "Madrid", Importe: fptr(5000), Titulo: "Suministro"},
	}

	got := Search(records, Criteria{Query: "obras", Region: "madrid", MinImporte: "1000"})
	assertIDs(t, got, "match")
}

func TestSearchDoesNotMutateInput(t *testing.T) {
	records := []models.Tender{
		{ID: "a", FechaLimite: "01/03/2024"},
		{ID: "b", FechaLimite: "01/01/2024"},
	}

	Search(records, Criteria{})
	if records[0].ID != "a" || records[1].ID != "b" {
		t.Error("Search must not reorder the input slice")
	}
}
