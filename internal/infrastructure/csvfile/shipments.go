// Package csvfile reads and writes the flat-file exports that connect the
// pipeline stages: shipment and city tables exported from the restored
// backup, and the collected weather observations.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/ports"
)

const shipmentTimeLayout = "2006-01-02 15:04:05"

var shipmentHeader = []string{
	"truck_id", "driver_id", "start_time", "end_time",
	"start_location", "end_location", "shipment_distance", "consumed_fuel",
}

// ShipmentFileSource is a ports.ShipmentSource backed by a CSV export.
// The file is read on every ListShipments call so a rerun picks up a fresh
// export without restarting the process.
type ShipmentFileSource struct {
	path string
}

var _ ports.ShipmentSource = (*ShipmentFileSource)(nil)

func NewShipmentFileSource(path string) *ShipmentFileSource {
	return &ShipmentFileSource{path: path}
}

func (s *ShipmentFileSource) ListShipments(ctx context.Context) ([]domain.ShipmentRecord, error) {
	_ = ctx // file reads are not cancellation-aware

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open shipments csv %q: %w", s.path, err)
	}
	defer f.Close()

	records, parseErr := ParseShipmentsCSV(f)
	if len(records) == 0 && parseErr != nil {
		return nil, fmt.Errorf("parse shipments csv %q: %w", s.path, parseErr)
	}
	// Partial success: return what parsed, surface the row errors too.
	if parseErr != nil {
		return records, fmt.Errorf("parse shipments csv %q: %w", s.path, parseErr)
	}
	return records, nil
}

// ParseShipmentsCSV parses shipment records from r.
//
// Expected header: truck_id,driver_id,start_time,end_time,start_location,
// end_location,shipment_distance,consumed_fuel. Times use layout
// "2006-01-02 15:04:05" and are interpreted as UTC.
//
// Invalid rows are skipped and accumulated into a joined error.
func ParseShipmentsCSV(r io.Reader) ([]domain.ShipmentRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if err := expectHeader(cr, shipmentHeader); err != nil {
		return nil, err
	}

	var (
		records []domain.ShipmentRecord
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
		if len(row) < len(shipmentHeader) {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: expected %d columns, got %d", rowNum, len(shipmentHeader), len(row)))
			continue
		}

		start, err := time.ParseInLocation(shipmentTimeLayout, strings.TrimSpace(row[2]), time.UTC)
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: parse start_time %q: %w", rowNum, row[2], err))
			continue
		}
		end, err := time.ParseInLocation(shipmentTimeLayout, strings.TrimSpace(row[3]), time.UTC)
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: parse end_time %q: %w", rowNum, row[3], err))
			continue
		}
		if end.Before(start) {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: end_time before start_time", rowNum))
			continue
		}

		distance, err := parseFloatField(row[6])
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: parse shipment_distance %q: %w", rowNum, row[6], err))
			continue
		}
		fuel, err := parseFloatField(row[7])
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: parse consumed_fuel %q: %w", rowNum, row[7], err))
			continue
		}
		if fuel < 0 {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: negative consumed_fuel %v", rowNum, fuel))
			continue
		}

		records = append(records, domain.ShipmentRecord{
			TruckID:       strings.TrimSpace(row[0]),
			DriverID:      strings.TrimSpace(row[1]),
			StartTime:     start,
			EndTime:       end,
			StartLocation: strings.TrimSpace(row[4]),
			EndLocation:   strings.TrimSpace(row[5]),
			DistanceKm:    distance,
			FuelConsumed:  fuel,
		})
	}

	if records == nil {
		records = []domain.ShipmentRecord{}
	}
	return records, errors.Join(rowErrs...)
}

// WriteShipmentsCSV writes records in the export format read back by
// ParseShipmentsCSV.
func WriteShipmentsCSV(w io.Writer, records []domain.ShipmentRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(shipmentHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.TruckID,
			rec.DriverID,
			rec.StartTime.UTC().Format(shipmentTimeLayout),
			rec.EndTime.UTC().Format(shipmentTimeLayout),
			rec.StartLocation,
			rec.EndLocation,
			formatFloat(rec.DistanceKm),
			formatFloat(rec.FuelConsumed),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func expectHeader(cr *csv.Reader, want []string) error {
	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(header) < len(want) {
		return fmt.Errorf("unexpected header %q (want %q)", strings.Join(header, ","), strings.Join(want, ","))
	}
	for i, col := range want {
		if strings.ToLower(strings.TrimSpace(header[i])) != col {
			return fmt.Errorf("unexpected header %q (want %q)", strings.Join(header, ","), strings.Join(want, ","))
		}
	}
	return nil
}

func parseFloatField(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %v", f)
	}
	return f, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
