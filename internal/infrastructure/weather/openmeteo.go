// Package weather implements the ports.WeatherProvider against the
// Open-Meteo historical archive API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/ports"
)

const (
	DefaultBaseURL = "https://archive-api.open-meteo.com/v1/archive"

	hourlyTimeLayout = "2006-01-02T15:04"
	dateLayout       = "2006-01-02"

	maxRetries      = 3
	initialInterval = 500 * time.Millisecond
	maxInterval     = 5 * time.Second
)

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
)

// OpenMeteoClient fetches hourly historical weather. Calls go through a
// circuit breaker so a degraded upstream fails fast instead of stalling a
// whole collection pass, and retriable statuses (429, 5xx) are retried
// with exponential backoff.
type OpenMeteoClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

var _ ports.WeatherProvider = (*OpenMeteoClient)(nil)

func NewOpenMeteoClient(baseURL string, client *http.Client) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo-archive",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &OpenMeteoClient{baseURL: baseURL, http: client, breaker: cb}
}

type archiveResponse struct {
	Hourly struct {
		Time             []string  `json:"time"`
		Temperature2m    []float64 `json:"temperature_2m"`
		RelativeHumidity []float64 `json:"relativehumidity_2m"`
		WeatherCode      []int     `json:"weathercode"`
	} `json:"hourly"`
}

// FetchDay returns the hourly observations for city on the given UTC date.
func (c *OpenMeteoClient) FetchDay(ctx context.Context, city domain.City, date time.Time) ([]domain.WeatherObservation, error) {
	if !city.HasCoordinates {
		return nil, fmt.Errorf("openmeteo: city %q has no coordinates", city.Name)
	}

	dateStr := date.UTC().Format(dateLayout)
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(city.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(city.Longitude, 'f', -1, 64))
	values.Set("start_date", dateStr)
	values.Set("end_date", dateStr)
	values.Set("hourly", "temperature_2m,relativehumidity_2m,weathercode")
	values.Set("timezone", "UTC")
	reqURL := c.baseURL + "?" + values.Encode()

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("openmeteo: fetch %s on %s: %w", city.Name, dateStr, err)
	}

	var parsed archiveResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("openmeteo: decode response for %s: %w", city.Name, err)
	}

	h := parsed.Hourly
	if len(h.Time) == 0 || len(h.Temperature2m) != len(h.Time) {
		return nil, fmt.Errorf("openmeteo: incomplete hourly data for %s on %s", city.Name, dateStr)
	}

	obs := make([]domain.WeatherObservation, 0, len(h.Time))
	for i, raw := range h.Time {
		ts, err := time.ParseInLocation(hourlyTimeLayout, raw, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("openmeteo: parse time %q: %w", raw, err)
		}
		o := domain.WeatherObservation{
			City:         city.Name,
			Timestamp:    ts,
			Latitude:     city.Latitude,
			Longitude:    city.Longitude,
			TemperatureC: h.Temperature2m[i],
		}
		if i < len(h.RelativeHumidity) {
			o.HumidityPct = h.RelativeHumidity[i]
		}
		if i < len(h.WeatherCode) {
			o.Description = describeWeatherCode(h.WeatherCode[i])
		}
		obs = append(obs, o)
	}
	return obs, nil
}

// get runs the request through the breaker, retrying retriable failures
// with capped exponential backoff.
func (c *OpenMeteoClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	interval := initialInterval
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(interval):
			}
			interval *= 2
			if interval > maxInterval {
				interval = maxInterval
			}
		}

		result, err := c.breaker.Execute(func() (any, error) {
			return c.doOnce(ctx, reqURL)
		})
		if err == nil {
			return result.([]byte), nil
		}
		lastErr = err

		// Breaker-open and non-retriable failures end the loop early.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, err
		}
		if !errors.Is(err, errRateLimited) && !errors.Is(err, errServerError) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("retries exhausted: %w", lastErr)
}

func (c *OpenMeteoClient) doOnce(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return io.ReadAll(resp.Body)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", errServerError, resp.StatusCode)
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

// describeWeatherCode maps WMO weather interpretation codes to short text.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code <= 3:
		return "partly cloudy"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code <= 57:
		return "drizzle"
	case code >= 61 && code <= 67:
		return "rain"
	case code >= 71 && code <= 77:
		return "snow"
	case code >= 80 && code <= 82:
		return "rain showers"
	case code >= 85 && code <= 86:
		return "snow showers"
	case code >= 95:
		return "thunderstorm"
	default:
		return "unknown"
	}
}
