package turnos

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"figaros/internal/models"
	turnoscore "figaros/internal/turnos"
	"figaros/internal/ws"
)

// stubStore is a minimal in-memory turnos.Store for handler tests.
type stubStore struct {
	rows    map[string]models.Turno
	batches [][]models.Turno
	deleted []string
}

func newStubStore(rows ...models.Turno) *stubStore {
	s := &stubStore{rows: make(map[string]models.Turno)}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *stubStore) CreateBatch(_ context.Context, rows []models.Turno) error {
	s.batches = append(s.batches, rows)
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return nil
}

func (s *stubStore) GetByID(_ context.Context, id string) (*models.Turno, error) {
	r, ok := s.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (s *stubStore) Update(_ context.Context, t *models.Turno) error {
	if _, ok := s.rows[t.ID]; !ok {
		return sql.ErrNoRows
	}
	s.rows[t.ID] = *t
	return nil
}

func (s *stubStore) ListByGroup(_ context.Context, grupoID string) ([]models.Turno, error) {
	var out []models.Turno
	for _, r := range s.rows {
		if r.GrupoID != nil && *r.GrupoID == grupoID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TurnoIndex < out[j].TurnoIndex })
	return out, nil
}

func (s *stubStore) ListActive(_ context.Context, now time.Time) ([]models.Turno, error) {
	var out []models.Turno
	for _, r := range s.rows {
		if r.ExpiresAt.After(now) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubStore) DeleteByIDs(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(s.rows, id)
		s.deleted = append(s.deleted, id)
	}
	return nil
}

func (s *stubStore) Delete(_ context.Context, id string) error {
	if _, ok := s.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.rows, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubStore) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func newTestRouter(store turnoscore.Store) http.Handler {
	rec := turnoscore.NewReconciler(store)
	hub := ws.NewHub()
	validate := validator.New()

	r := chi.NewRouter()
	r.Post("/turnos/batch", (&BatchHandler{Rec: rec, Hub: hub, Validate: validate}).ServeHTTP)
	r.Get("/turnos", (&ListHandler{Rec: rec}).ServeHTTP)
	r.Patch("/turnos/{id}", (&UpdateHandler{Rec: rec, Hub: hub, Validate: validate}).ServeHTTP)
	r.Delete("/turnos/{id}", (&DeleteHandler{Rec: rec, Hub: hub}).ServeHTTP)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestBatchHandlerAcceptsStringCount(t *testing.T) {
	store := newStubStore()
	router := newTestRouter(store)

	rr := doRequest(t, router, http.MethodPost, "/turnos/batch",
		`{"nombre":"Ana","servicio":"corte","fecha":"2025-03-01","hora":"10:00","nTurnos":"3"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["count"] != float64(3) {
		t.Fatalf("expected count 3, got %v", body["count"])
	}
	if body["groupId"] == "" || body["groupId"] == nil {
		t.Fatal("expected a groupId")
	}
	if len(store.batches) != 1 || len(store.batches[0]) != 3 {
		t.Fatalf("expected one batch of 3 rows, got %+v", store.batches)
	}
}

func TestBatchHandlerAcceptsTurnoAlias(t *testing.T) {
	store := newStubStore()
	router := newTestRouter(store)

	rr := doRequest(t, router, http.MethodPost, "/turnos/batch",
		`{"nombre":"Ana","servicio":"corte","fecha":"2025-03-01","hora":"10:00","turno":2}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["count"] != float64(2) {
		t.Fatalf("expected count 2, got %v", body["count"])
	}
}

func TestBatchHandlerValidation(t *testing.T) {
	router := newTestRouter(newStubStore())

	cases := []struct {
		name string
		body string
	}{
		{"missing nombre", `{"servicio":"corte","fecha":"2025-03-01","hora":"10:00","nTurnos":1}`},
		{"bad fecha", `{"nombre":"Ana","servicio":"corte","fecha":"01-03-2025","hora":"10:00","nTurnos":1}`},
		{"bad hora", `{"nombre":"Ana","servicio":"corte","fecha":"2025-03-01","hora":"10.00","nTurnos":1}`},
		{"count missing", `{"nombre":"Ana","servicio":"corte","fecha":"2025-03-01","hora":"10:00"}`},
		{"count too big", `{"nombre":"Ana","servicio":"corte","fecha":"2025-03-01","hora":"10:00","nTurnos":21}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(t, router, http.MethodPost, "/turnos/batch", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
			if body := decodeBody(t, rr); body["error"] == nil {
				t.Fatal("expected an error message")
			}
		})
	}
}

func seedRow() models.Turno {
	grupo := "g1"
	return models.Turno{
		ID:         "t1",
		Nombre:     "Ana",
		Servicio:   "corte",
		Fecha:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Hora:       "10:00",
		GrupoID:    &grupo,
		TurnoIndex: 1,
		ExpiresAt:  time.Now().UTC().Add(24 * time.Hour),
	}
}

func TestUpdateHandlerIgnoresEmptyStrings(t *testing.T) {
	store := newStubStore(seedRow())
	router := newTestRouter(store)

	// A blank form field arrives as "" and must not trip format validation
	rr := doRequest(t, router, http.MethodPatch, "/turnos/t1", `{"nombre":"","fecha":"","hora":""}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	item := body["item"].(map[string]interface{})
	if item["nombre"] != "Ana" {
		t.Fatalf("blank nombre must not overwrite, got %v", item["nombre"])
	}
	if item["fecha"] != "2025-03-01" {
		t.Fatalf("fecha must render as calendar date, got %v", item["fecha"])
	}
}

func TestUpdateHandlerBlankOptionalFieldsPreserveData(t *testing.T) {
	row := seedRow()
	otro := "tinte"
	tel := "600111222"
	row.OtroServicio = &otro
	row.Telefono = &tel
	store := newStubStore(row)
	router := newTestRouter(store)

	// "" means the field was not touched, never "clear what is stored"
	rr := doRequest(t, router, http.MethodPatch, "/turnos/t1", `{"otroServicio":"","telefono":""}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	item := decodeBody(t, rr)["item"].(map[string]interface{})
	if item["otroServicio"] != "tinte" {
		t.Fatalf("blank otroServicio must not clear stored value, got %v", item["otroServicio"])
	}
	if item["telefono"] != "600111222" {
		t.Fatalf("blank telefono must not clear stored value, got %v", item["telefono"])
	}

	// A whitespace-only value is an explicit clear
	rr = doRequest(t, router, http.MethodPatch, "/turnos/t1", `{"telefono":"  "}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	item = decodeBody(t, rr)["item"].(map[string]interface{})
	if item["telefono"] != nil {
		t.Fatalf("whitespace telefono must clear, got %v", item["telefono"])
	}
}

func TestUpdateHandlerRejectsBadFecha(t *testing.T) {
	router := newTestRouter(newStubStore(seedRow()))
	rr := doRequest(t, router, http.MethodPatch, "/turnos/t1", `{"fecha":"mañana"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestUpdateHandlerUnknownID(t *testing.T) {
	router := newTestRouter(newStubStore())
	rr := doRequest(t, router, http.MethodPatch, "/turnos/nope", `{"nombre":"Ana"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestUpdateHandlerResizesGroup(t *testing.T) {
	store := newStubStore(seedRow())
	router := newTestRouter(store)

	rr := doRequest(t, router, http.MethodPatch, "/turnos/t1", `{"nTurnos":"3"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	rows, _ := store.ListByGroup(context.Background(), "g1")
	if len(rows) != 3 {
		t.Fatalf("expected group of 3 after resize, got %d", len(rows))
	}
}

func TestListHandlerShape(t *testing.T) {
	store := newStubStore(seedRow())
	router := newTestRouter(store)

	rr := doRequest(t, router, http.MethodGet, "/turnos", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	items := body["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0].(map[string]interface{})
	if item["fecha"] != "2025-03-01" {
		t.Fatalf("expected plain calendar date, got %v", item["fecha"])
	}
}

func TestListHandlerEmptyIsArray(t *testing.T) {
	router := newTestRouter(newStubStore())
	rr := doRequest(t, router, http.MethodGet, "/turnos", "")
	if !strings.Contains(rr.Body.String(), `"items":[]`) {
		t.Fatalf("expected empty array, got %s", rr.Body.String())
	}
}

func TestDeleteHandler(t *testing.T) {
	store := newStubStore(seedRow())
	router := newTestRouter(store)

	rr := doRequest(t, router, http.MethodDelete, "/turnos/t1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "t1" {
		t.Fatalf("expected t1 deleted, got %v", store.deleted)
	}

	rr = doRequest(t, router, http.MethodDelete, "/turnos/t1", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rr.Code)
	}
}
