package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/domain"
	"github.com/lohkna007/BTTF-DATA-PLATFORM/internal/core/ports"
)

// FactsHandler serves the fuel consumption fact table.
type FactsHandler struct {
	store ports.FactStore
}

func NewFactsHandler(store ports.FactStore) *FactsHandler {
	return &FactsHandler{store: store}
}

type factsResponse struct {
	Facts []domain.FactRow `json:"facts"`
	Count int              `json:"count"`
}

// List handles GET /v1/facts.
func (h *FactsHandler) List(c echo.Context) error {
	rows, err := h.store.List(c.Request().Context())
	if err != nil {
		return err
	}

	if rows == nil {
		rows = []domain.FactRow{}
	}
	return c.JSON(http.StatusOK, factsResponse{Facts: rows, Count: len(rows)})
}
