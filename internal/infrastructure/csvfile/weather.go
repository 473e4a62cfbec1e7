package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/ports"
)

// Open-Meteo reports hourly timestamps without seconds or zone.
const observationTimeLayout = "2006-01-02T15:04"

var observationHeader = []string{
	"city", "time", "latitude", "longitude",
	"temperature_celsius", "relative_humidity", "description",
}

// ObservationFileSource is a ports.WeatherSource backed by the collected
// weather CSV.
type ObservationFileSource struct {
	path string
}

var _ ports.WeatherSource = (*ObservationFileSource)(nil)

func NewObservationFileSource(path string) *ObservationFileSource {
	return &ObservationFileSource{path: path}
}

func (s *ObservationFileSource) ListObservations(ctx context.Context) ([]domain.WeatherObservation, error) {
	_ = ctx

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open weather csv %q: %w", s.path, err)
	}
	defer f.Close()

	obs, parseErr := ParseObservationsCSV(f)
	if len(obs) == 0 && parseErr != nil {
		return nil, fmt.Errorf("parse weather csv %q: %w", s.path, parseErr)
	}
	if parseErr != nil {
		return obs, fmt.Errorf("parse weather csv %q: %w", s.path, parseErr)
	}
	return obs, nil
}

// ParseObservationsCSV parses weather observations from r. Duplicate
// (city, timestamp) rows violate the observation identity and are reported
// as row errors; the first occurrence wins.
func ParseObservationsCSV(r io.Reader) ([]domain.WeatherObservation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if err := expectHeader(cr, observationHeader); err != nil {
		return nil, err
	}

	var (
		obs     []domain.WeatherObservation
		rowErrs []error
		rowNum  = 1
	)
	seen := make(map[string]struct{})

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: read: %w", rowNum, err))
			continue
		}
		if len(row) < len(observationHeader)-1 { // description may be absent
			rowErrs = append(rowErrs, fmt.Errorf("row %d: expected at least %d columns, got %d", rowNum, len(observationHeader)-1, len(row)))
			continue
		}

		ts, err := time.ParseInLocation(observationTimeLayout, strings.TrimSpace(row[1]), time.UTC)
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: parse time %q: %w", rowNum, row[1], err))
			continue
		}
		lat, err := parseFloatField(row[2])
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: parse latitude %q: %w", rowNum, row[2], err))
			continue
		}
		lon, err := parseFloatField(row[3])
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: parse longitude %q: %w", rowNum, row[3], err))
			continue
		}
		temp, err := parseFloatField(row[4])
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: parse temperature %q: %w", rowNum, row[4], err))
			continue
		}
		humidity, err := parseFloatField(row[5])
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: parse humidity %q: %w", rowNum, row[5], err))
			continue
		}

		o := domain.WeatherObservation{
			City:         strings.TrimSpace(row[0]),
			Timestamp:    ts,
			Latitude:     lat,
			Longitude:    lon,
			TemperatureC: temp,
			HumidityPct:  humidity,
		}
		if len(row) > 6 {
			o.Description = strings.TrimSpace(row[6])
		}

		if _, dup := seen[o.Key()]; dup {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: duplicate observation for %s", rowNum, o.Key()))
			continue
		}
		seen[o.Key()] = struct{}{}
		obs = append(obs, o)
	}

	if obs == nil {
		obs = []domain.WeatherObservation{}
	}
	return obs, errors.Join(rowErrs...)
}

// WriteObservationsCSV writes observations in the format read back by
// ParseObservationsCSV.
func WriteObservationsCSV(w io.Writer, obs []domain.WeatherObservation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(observationHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, o := range obs {
		row := []string{
			o.City,
			o.Timestamp.UTC().Format(observationTimeLayout),
			formatFloat(o.Latitude),
			formatFloat(o.Longitude),
			formatFloat(o.TemperatureC),
			formatFloat(o.HumidityPct),
			o.Description,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
