package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/ports"
)

var cityHeader = []string{"name", "latitude", "longitude"}

// CityFileSource is a ports.CitySource backed by the exported cities table.
type CityFileSource struct {
	path string
}

var _ ports.CitySource = (*CityFileSource)(nil)

func NewCityFileSource(path string) *CityFileSource {
	return &CityFileSource{path: path}
}

func (s *CityFileSource) ListCities(ctx context.Context) ([]domain.City, error) {
	_ = ctx

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open cities csv %q: %w", s.path, err)
	}
	defer f.Close()

	cities, parseErr := ParseCitiesCSV(f)
	if len(cities) == 0 && parseErr != nil {
		return nil, fmt.Errorf("parse cities csv %q: %w", s.path, parseErr)
	}
	if parseErr != nil {
		return cities, fmt.Errorf("parse cities csv %q: %w", s.path, parseErr)
	}
	return cities, nil
}

// ParseCitiesCSV parses gazetteer entries from r. Blank coordinates are
// not an error: the city is kept with HasCoordinates unset, so callers can
// still resolve its name while skipping it for weather collection.
func ParseCitiesCSV(r io.Reader) ([]domain.City, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if err := expectHeader(cr, cityHeader); err != nil {
		return nil, err
	}

	var (
		cities  []domain.City
		rowErrs []error
		rowNum  = 1
	)

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
		if len(row) < 1 || strings.TrimSpace(row[0]) == "" {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: missing city name", rowNum))
			continue
		}

		city := domain.City{Name: strings.TrimSpace(row[0])}
		if len(row) >= 3 && strings.TrimSpace(row[1]) != "" && strings.TrimSpace(row[2]) != "" {
			lat, latErr := parseFloatField(row[1])
			lon, lonErr := parseFloatField(row[2])
			if latErr != nil || lonErr != nil {
				rowErrs = append(rowErrs, fmt.Errorf("row %d: invalid coordinates for %q", rowNum, city.Name))
				continue
			}
			city.Latitude, city.Longitude, city.HasCoordinates = lat, lon, true
		}
		cities = append(cities, city)
	}

	if cities == nil {
		cities = []domain.City{}
	}
	return cities, errors.Join(rowErrs...)
}

// WriteCitiesCSV writes gazetteer entries in the format read back by
// ParseCitiesCSV. Cities without coordinates get blank columns.
func WriteCitiesCSV(w io.Writer, cities []domain.City) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cityHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, c := range cities {
		lat, lon := "", ""
		if c.HasCoordinates {
			lat, lon = formatFloat(c.Latitude), formatFloat(c.Longitude)
		}
		if err := cw.Write([]string{c.Name, lat, lon}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
