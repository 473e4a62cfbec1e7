package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/ports"
)

type stubPipeline struct {
	report *ports.RunReport
	err    error
}

func (s *stubPipeline) Run(ctx context.Context) (*ports.RunReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

type stubCollector struct {
	report *ports.CollectReport
	err    error
	date   time.Time
}

func (s *stubCollector) Collect(ctx context.Context, date time.Time) (*ports.CollectReport, error) {
	s.date = date
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func TestRunHandler_Run_Success(t *testing.T) {
	e := echo.New()
	h := NewRunHandler(&stubPipeline{report: &ports.RunReport{
		RunID:     "run-1",
		Shipments: 2,
		Matched:   2,
		Facts:     []domain.FactRow{{TempRange: "10-20", AvgFuelConsumption: 15, SampleCount: 2}},
	}}, &stubCollector{})

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Run(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp ports.RunReport
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.RunID != "run-1" || resp.Matched != 2 || len(resp.Facts) != 1 {
		t.Fatalf("unexpected report: %+v", resp)
	}
}

func TestRunHandler_Run_InProgress(t *testing.T) {
	e := echo.New()
	h := NewRunHandler(&stubPipeline{err: domain.ErrRunInProgress}, &stubCollector{})

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Run(c)
	if err == nil {
		t.Fatalf("expected error")
	}
	// The sentinel must survive to the error handler for the 409 mapping.
	if !errors.Is(err, domain.ErrRunInProgress) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunHandler_Collect_Success(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	collector := &stubCollector{report: &ports.CollectReport{
		Date:      time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC),
		Cities:    3,
		Collected: 3,
	}}
	h := NewRunHandler(&stubPipeline{}, collector)

	body := strings.NewReader(`{"date":"2025-03-24"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/collections", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Collect(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	want := time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC)
	if !collector.date.Equal(want) {
		t.Fatalf("expected collect date %v, got %v", want, collector.date)
	}
}

func TestRunHandler_Collect_InvalidDate(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	h := NewRunHandler(&stubPipeline{}, &stubCollector{})

	for _, body := range []string{`{}`, `{"date":"24-03-2025"}`, `{"date":"not a date"}`} {
		req := httptest.NewRequest(http.MethodPost, "/v1/collections", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := h.Collect(c)
		if err == nil {
			t.Fatalf("expected error for body %s", body)
		}
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for body %s, got %v", body, err)
		}
	}
}
