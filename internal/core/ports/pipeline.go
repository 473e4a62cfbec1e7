package ports

import (
	"context"
	"time"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
)

// RunReport summarizes one pipeline run. Unmatched and RowErrors are
// data-quality metrics, not errors: shipments without a usable weather
// observation, and input rows a source could not parse, are excluded from
// aggregation but never abort the run.
type RunReport struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Shipments  int              `json:"shipments"`
	Matched    int              `json:"matched"`
	Unmatched  int              `json:"unmatched"`
	Skipped    int              `json:"skipped"`
	RowErrors  int              `json:"row_errors"`
	EmptyInput bool             `json:"empty_input"`
	Facts      []domain.FactRow `json:"facts"`
}

// PipelineService runs the join-and-aggregate batch: load both snapshots,
// match each shipment to a weather observation, bucket its temperature,
// fold the fuel figure, and persist the finalized per-bucket averages.
type PipelineService interface {
	Run(ctx context.Context) (*RunReport, error)
}

// CollectReport summarizes one weather collection pass.
type CollectReport struct {
	Date            time.Time `json:"date"`
	Cities          int       `json:"cities"`
	Collected       int       `json:"collected"`
	SkippedNoCoords int       `json:"skipped_no_coordinates"`
	Failed          int       `json:"failed"`
}

// CollectorService fetches one weather observation per city for a target
// date and lands them in the observation store.
type CollectorService interface {
	Collect(ctx context.Context, date time.Time) (*CollectReport, error)
}
