package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/api/metrics"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/ports"
)

// RunHandler triggers pipeline and collection runs on demand.
type RunHandler struct {
	pipeline  ports.PipelineService
	collector ports.CollectorService
}

func NewRunHandler(pipeline ports.PipelineService, collector ports.CollectorService) *RunHandler {
	return &RunHandler{pipeline: pipeline, collector: collector}
}

type collectRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// Run handles POST /v1/runs. The run is synchronous: the response carries
// the full report including the facts that were written.
func (h *RunHandler) Run(c echo.Context) error {
	start := time.Now()

	report, err := h.pipeline.Run(c.Request().Context())
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues(runResult(err)).Inc()
		return err
	}

	metrics.PipelineRunDuration.Observe(time.Since(start).Seconds())
	recordRunReport(report)

	return c.JSON(http.StatusCreated, report)
}

// Collect handles POST /v1/collections, fetching weather for one date.
func (h *RunHandler) Collect(c echo.Context) error {
	var req collectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	report, err := h.collector.Collect(c.Request().Context(), date)
	if err != nil {
		return err
	}

	metrics.CollectorCitiesTotal.WithLabelValues("collected").Add(float64(report.Collected))
	metrics.CollectorCitiesTotal.WithLabelValues("skipped").Add(float64(report.SkippedNoCoords))
	metrics.CollectorCitiesTotal.WithLabelValues("failed").Add(float64(report.Failed))

	return c.JSON(http.StatusCreated, report)
}

func runResult(err error) string {
	if errors.Is(err, domain.ErrRunInProgress) {
		return "locked"
	}
	return "error"
}

func recordRunReport(report *ports.RunReport) {
	result := "success"
	if report.EmptyInput {
		result = "empty_input"
	}
	metrics.PipelineRunsTotal.WithLabelValues(result).Inc()
	metrics.ShipmentsProcessedTotal.WithLabelValues("matched").Add(float64(report.Matched))
	metrics.ShipmentsProcessedTotal.WithLabelValues("unmatched").Add(float64(report.Unmatched))
	metrics.ShipmentsProcessedTotal.WithLabelValues("skipped").Add(float64(report.Skipped))
	metrics.FactRows.Set(float64(len(report.Facts)))
}
