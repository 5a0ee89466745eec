package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSnapshot = `[
  {"id": "t1", "titulo": "Obras de pavimentación", "organo": "Ayuntamiento de Madrid",
   "ccaa": "Comunidad de Madrid", "provincia": "Madrid", "importe": 50000,
   "fechaPublicacion": "01/03/2025", "fechaLimite": "15/04/2025"},
  {"id": "t2", "titulo": "Suministro de equipos informáticos", "organo": "Generalitat de Catalunya",
   "ccaa": "Cataluña", "provincia": "Barcelona", "importe": 120000,
   "fechaPublicacion": "05/03/2025", "fechaLimite": "01/04/2025"},
  {"id": "t3", "titulo": "Servicio de limpieza viaria", "organo": "Diputación de Sevilla",
   "ccaa": "Andalucía", "provincia": "Sevilla",
   "fechaPublicacion": "10/03/2025"}
]`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tenders-active.json")
	if err := os.WriteFile(path, []byte(testSnapshot), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewServer(nil, path, nil)
	if err := s.ReloadSnapshot(); err != nil {
		t.Fatalf("ReloadSnapshot: %v", err)
	}
	return s
}

func doRequest(s *Server, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

type tendersResponse struct {
	Tenders []struct {
		ID string `json:"id"`
	} `json:"tenders"`
	Total int `json:"total"`
}

func decodeTenders(t *testing.T, rec *httptest.ResponseRecorder) tendersResponse {
	t.Helper()
	var resp tendersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func TestTendersUnavailableWithoutSnapshot(t *testing.T) {
	s := NewServer(nil, filepath.Join(t.TempDir(), "missing.json"), nil)
	if err := s.ReloadSnapshot(); err == nil {
		t.Fatal("expected load error for missing snapshot file")
	}

	for _, target := range []string{"/api/v1/tenders", "/api/v1/tenders/latest", "/api/v1/regions", "/api/v1/stats"} {
		rec := doRequest(s, http.MethodGet, target, nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s: got status %d, want 503", target, rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("GET %s: decoding body: %v", target, err)
		}
		if body["error"] == "" {
			t.Errorf("GET %s: expected an error message", target)
		}
	}
}

func TestListTendersFilters(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"no filters, ascending by effective date", "/api/v1/tenders", []string{"t3", "t2", "t1"}},
		{"region matches provincia", "/api/v1/tenders?region=barcelona", []string{"t2"}},
		{"region matches ccaa fallback", "/api/v1/tenders?region=andaluc", []string{"t3"}},
		{"min importe inclusive", "/api/v1/tenders?min_importe=120000", []string{"t2"}},
		{"text over titulo", "/api/v1/tenders?q=pavimenta", []string{"t1"}},
		{"text over organo", "/api/v1/tenders?q=diputaci", []string{"t3"}},
		{"conjunctive gates", "/api/v1/tenders?region=madrid&q=obras&min_importe=10000", []string{"t1"}},
		{"unparseable min importe rejects all", "/api/v1/tenders?min_importe=mucho", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, http.MethodGet, tt.target, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("got status %d, want 200", rec.Code)
			}
			resp := decodeTenders(t, rec)
			if resp.Total != len(tt.want) {
				t.Fatalf("got total %d, want %d", resp.Total, len(tt.want))
			}
			for i, want := range tt.want {
				if resp.Tenders[i].ID != want {
					t.Errorf("position %d: got %q, want %q", i, resp.Tenders[i].ID, want)
				}
			}
		})
	}
}

func TestLatestTendersDescending(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/v1/tenders/latest", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	resp := decodeTenders(t, rec)
	want := []string{"t3", "t2", "t1"}
	if resp.Total != len(want) {
		t.Fatalf("got total %d, want %d", resp.Total, len(want))
	}
	for i, id := range want {
		if resp.Tenders[i].ID != id {
			t.Errorf("position %d: got %q, want %q", i, resp.Tenders[i].ID, id)
		}
	}
}

func TestRegionsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/v1/regions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	var resp struct {
		Regions []string `json:"regions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	want := []string{"Barcelona", "Madrid", "Sevilla"}
	if len(resp.Regions) != len(want) {
		t.Fatalf("got %v, want %v", resp.Regions, want)
	}
	for i := range want {
		if resp.Regions[i] != want[i] {
			t.Fatalf("got %v, want %v", resp.Regions, want)
		}
	}
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/v1/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	var resp struct {
		Total   int    `json:"total"`
		Regions int    `json:"regions"`
		Source  string `json:"source"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 3 || resp.Regions != 3 {
		t.Errorf("got total=%d regions=%d, want 3 and 3", resp.Total, resp.Regions)
	}
	if !strings.HasSuffix(resp.Source, "tenders-active.json") {
		t.Errorf("unexpected source %q", resp.Source)
	}
}

func TestSubscribeValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"keywords": ["obras"]}`},
		{"email without at sign", `{"email": "not-an-email"}`},
		{"negative importeMin", `{"email": "a@b.es", "importeMin": -1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/subscribers", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			s.Echo.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("got status %d, want 400", rec.Code)
			}
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	t.Setenv("ADMIN_SECRET", "test-admin-secret")
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/v1/reload", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("without secret: got status %d, want 401", rec.Code)
	}

	rec = doRequest(s, http.MethodPost, "/api/v1/reload", map[string]string{"X-Admin-Secret": "test-admin-secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("with header secret: got status %d, want 200", rec.Code)
	}

	rec = doRequest(s, http.MethodPost, "/api/v1/reload", map[string]string{"Authorization": "Bearer test-admin-secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("with bearer secret: got status %d, want 200", rec.Code)
	}

	rec = doRequest(s, http.MethodGet, "/api/v1/admin/job/none", map[string]string{"X-Admin-Secret": "test-admin-secret"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown job: got status %d, want 404", rec.Code)
	}
}
