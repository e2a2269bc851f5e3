package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-enricher/internal/dto"
	"github.com/octobees/leads-enricher/internal/entity"
	"github.com/octobees/leads-enricher/internal/service"
)

// EnrichRunner runs the enrichment pipeline and serves stored results.
type EnrichRunner interface {
	Run(ctx context.Context, req dto.EnrichRequest) (dto.EnrichSummary, error)
	Enrichment(ctx context.Context, businessID string) (*entity.Enrichment, error)
}

// EnrichHandler exposes the website enrichment endpoints.
type EnrichHandler struct {
	service EnrichRunner
}

// NewEnrichHandler wires a new EnrichHandler instance.
func NewEnrichHandler(service EnrichRunner) *EnrichHandler {
	return &EnrichHandler{service: service}
}

// Run handles POST /enrich requests.
func (h *EnrichHandler) Run(c echo.Context) error {
	var req dto.EnrichRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	summary, err := h.service.Run(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidBusinessID):
			return Error(c, http.StatusBadRequest, "invalid business id")
		case errors.Is(err, service.ErrNoBusinesses):
			return Error(c, http.StatusNotFound, "no businesses matched the request")
		default:
			return Error(c, http.StatusInternalServerError, "enrichment run failed")
		}
	}

	return Success(c, http.StatusOK, "enrichment completed", summary)
}

// GetResult handles GET /enrich/:business_id requests.
func (h *EnrichHandler) GetResult(c echo.Context) error {
	businessID := c.Param("business_id")
	if businessID == "" {
		return Error(c, http.StatusBadRequest, "business_id is required")
	}

	result, err := h.service.Enrichment(c.Request().Context(), businessID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidBusinessID):
			return Error(c, http.StatusBadRequest, "invalid business_id")
		case errors.Is(err, service.ErrEnrichmentNotFound):
			return Error(c, http.StatusNotFound, "enrichment not found")
		default:
			return Error(c, http.StatusInternalServerError, "failed to fetch enrichment")
		}
	}

	return Success(c, http.StatusOK, "ok", result)
}
