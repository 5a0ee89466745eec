package placsp

import (
	"testing"
	"time"

	"github.com/licitapp/licitapp/internal/models"
)

func TestIsActive(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		tender   models.Tender
		expected bool
	}{
		{
			name:     "published with future deadline",
			tender:   models.Tender{Estado: "Publicada", FechaLimite: "01/09/2025"},
			expected: true,
		},
		{
			name:     "deadline today still active",
			tender:   models.Tender{Estado: "Publicada", FechaLimite: "15/08/2025"},
			expected: true,
		},
		{
			name:     "past deadline",
			tender:   models.Tender{Estado: "Publicada", FechaLimite: "14/08/2025"},
			expected: false,
		},
		{
			name:     "cancelled regardless of deadline",
			tender:   models.Tender{Estado: "Anulada", FechaLimite: "01/09/2025"},
			expected: false,
		},
		{
			name:     "suspended regardless of deadline",
			tender:   models.Tender{Estado: "Suspendida"},
			expected: false,
		},
		{
			name:     "no deadline stays active",
			tender:   models.Tender{Estado: "Publicada"},
			expected: true,
		},
		{
			name:     "unparseable deadline stays active",
			tender:   models.Tender{Estado: "Publicada", FechaLimite: "pendiente"},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsActive(tt.tender, now); got != tt.expected {
				t.Errorf("IsActive = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestMonths(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	months := Months(2024, now)

	if len(months) != 15 {
		t.Fatalf("expected 15 months from 2024-01 through 2025-03, got %d", len(months))
	}
	if months[0] != "202401" {
		t.Errorf("first month: got %q", months[0])
	}
	if months[len(months)-1] != "202503" {
		t.Errorf("last month: got %q", months[len(months)-1])
	}
}

func TestFormatPattern(t *testing.T) {
	got := formatPattern("licitacionesPerfilesContratanteCompleto3_{ym}.zip", "202501")
	if got != "licitacionesPerfilesContratanteCompleto3_202501.zip" {
		t.Errorf("got %q", got)
	}
}
