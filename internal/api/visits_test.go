package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/themobileprof/mhaas-be/internal/audit"
)

func newVisitRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, mock := newTestDB(t)
	handler := NewVisitHandler(database, audit.NewLogger(database, nil))

	r := gin.New()
	r.GET("/api/visits/:id", handler.GetVisit)
	return r, mock
}

func TestVisitHandler_GetVisit(t *testing.T) {
	router, mock := newVisitRouter(t)

	notes := "BP normal, fetal heartbeat strong"
	rows := sqlmock.NewRows([]string{
		"id", "patient_id", "hospital_id", "type", "notes", "visit_date", "recorded_by", "created_at",
	}).AddRow("v1", "p1", "h1", "Antenatal", notes,
		time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC), "staff-1", time.Now())

	mock.ExpectQuery(`FROM visits`).
		WithArgs("v1").
		WillReturnRows(rows)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/visits/v1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var got VisitResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != "v1" || got.Type != "Antenatal" {
		t.Errorf("unexpected response: %+v", got)
	}
	if got.Notes == nil || *got.Notes != notes {
		t.Errorf("notes = %v, want %q", got.Notes, notes)
	}
}

func TestVisitHandler_GetVisit_NotFound(t *testing.T) {
	router, mock := newVisitRouter(t)

	mock.ExpectQuery(`FROM visits`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/visits/missing", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
