package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
)

type stubFactStore struct {
	rows    []domain.FactRow
	listErr error
}

func (s *stubFactStore) ReplaceAll(ctx context.Context, rows []domain.FactRow) error {
	s.rows = rows
	return nil
}

func (s *stubFactStore) List(ctx context.Context) ([]domain.FactRow, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.rows, nil
}

func TestFactsHandler_List(t *testing.T) {
	e := echo.New()
	store := &stubFactStore{rows: []domain.FactRow{
		{TempRange: "0-10", AvgFuelConsumption: 12.5, SampleCount: 4},
		{TempRange: "10-20", AvgFuelConsumption: 15, SampleCount: 2},
	}}
	h := NewFactsHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/v1/facts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp factsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 2 || len(resp.Facts) != 2 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp.Facts[1].TempRange != "10-20" || resp.Facts[1].AvgFuelConsumption != 15 {
		t.Fatalf("unexpected fact row: %+v", resp.Facts[1])
	}
}

func TestFactsHandler_List_Empty(t *testing.T) {
	e := echo.New()
	h := NewFactsHandler(&stubFactStore{})

	req := httptest.NewRequest(http.MethodGet, "/v1/facts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp factsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 0 {
		t.Fatalf("expected empty fact list, got %+v", resp)
	}
	if resp.Facts == nil {
		t.Fatalf("facts should serialize as [], not null")
	}
}

func TestFactsHandler_List_StoreError(t *testing.T) {
	e := echo.New()
	h := NewFactsHandler(&stubFactStore{listErr: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/v1/facts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err == nil {
		t.Fatalf("expected error to propagate to the error handler")
	}
}
