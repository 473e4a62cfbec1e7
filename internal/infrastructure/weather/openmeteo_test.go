package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
)

var monterrey = domain.City{Name: "Monterrey", Latitude: 25.67, Longitude: -100.31, HasCoordinates: true}

const archiveBody = `{
	"hourly": {
		"time": ["2025-03-24T00:00", "2025-03-24T01:00", "2025-03-24T02:00"],
		"temperature_2m": [18.2, 17.9, 17.5],
		"relativehumidity_2m": [60, 62, 65],
		"weathercode": [0, 2, 61]
	}
}`

func TestOpenMeteoClient_FetchDay(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Encode())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(archiveBody))
	}))
	defer srv.Close()

	c := NewOpenMeteoClient(srv.URL, srv.Client())
	obs, err := c.FetchDay(context.Background(), monterrey, time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchDay: %v", err)
	}
	if len(obs) != 3 {
		t.Fatalf("got %d observations, want 3", len(obs))
	}

	o := obs[0]
	if o.City != "Monterrey" || o.TemperatureC != 18.2 || o.HumidityPct != 60 {
		t.Fatalf("unexpected observation: %+v", o)
	}
	if o.Description != "clear sky" {
		t.Fatalf("description = %q, want %q", o.Description, "clear sky")
	}
	if obs[2].Description != "rain" {
		t.Fatalf("description = %q, want %q", obs[2].Description, "rain")
	}
	if !o.Timestamp.Equal(time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("timestamp = %v", o.Timestamp)
	}

	q := gotQuery.Load().(string)
	for _, want := range []string{"start_date=2025-03-24", "end_date=2025-03-24", "timezone=UTC"} {
		if !strings.Contains(q, want) {
			t.Fatalf("query %q missing %q", q, want)
		}
	}
}

func TestOpenMeteoClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(archiveBody))
	}))
	defer srv.Close()

	c := NewOpenMeteoClient(srv.URL, srv.Client())
	if _, err := c.FetchDay(context.Background(), monterrey, time.Now()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("got %d calls, want 3", calls.Load())
	}
}

func TestOpenMeteoClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewOpenMeteoClient(srv.URL, srv.Client())
	if _, err := c.FetchDay(context.Background(), monterrey, time.Now()); err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("got %d calls, want 1", calls.Load())
	}
}

func TestOpenMeteoClient_RejectsCityWithoutCoordinates(t *testing.T) {
	c := NewOpenMeteoClient("http://unused", http.DefaultClient)
	if _, err := c.FetchDay(context.Background(), domain.City{Name: "Nowhere"}, time.Now()); err == nil {
		t.Fatalf("expected error for city without coordinates")
	}
}

func TestOpenMeteoClient_IncompleteHourlyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hourly": {"time": [], "temperature_2m": []}}`))
	}))
	defer srv.Close()

	c := NewOpenMeteoClient(srv.URL, srv.Client())
	if _, err := c.FetchDay(context.Background(), monterrey, time.Now()); err == nil {
		t.Fatalf("expected error for empty hourly data")
	}
}
