package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-enricher/internal/dto"
	"github.com/octobees/leads-enricher/internal/entity"
)

// BusinessLister is the read side of the businesses repository used by the
// listing endpoint.
type BusinessLister interface {
	List(ctx context.Context, filter dto.ListFilter) ([]entity.Business, error)
}

// BusinessesHandler exposes the business catalogue endpoint.
type BusinessesHandler struct {
	repo BusinessLister
}

// NewBusinessesHandler creates a new handler instance.
func NewBusinessesHandler(repo BusinessLister) *BusinessesHandler {
	return &BusinessesHandler{repo: repo}
}

// List handles GET /businesses requests.
func (h *BusinessesHandler) List(c echo.Context) error {
	filter := dto.ListFilter{
		Q:             strings.TrimSpace(c.QueryParam("q")),
		Category:      strings.TrimSpace(c.QueryParam("category")),
		Area:          strings.TrimSpace(c.QueryParam("area")),
		City:          strings.TrimSpace(c.QueryParam("city")),
		Country:       strings.TrimSpace(c.QueryParam("country")),
		WebsiteStatus: strings.TrimSpace(c.QueryParam("website_status")),
		Sort:          strings.TrimSpace(c.QueryParam("sort")),
		Page:          parseIntDefault(c.QueryParam("page"), 1),
		PerPage:       parseIntDefault(c.QueryParam("per_page"), 20),
	}

	if minRatingStr := strings.TrimSpace(c.QueryParam("min_rating")); minRatingStr != "" {
		if minRating, err := strconv.ParseFloat(minRatingStr, 64); err == nil {
			filter.MinRating = &minRating
		}
	}

	if runIDParam := strings.TrimSpace(c.QueryParam("lookup_run_id")); runIDParam != "" {
		parsed, err := uuid.Parse(runIDParam)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid lookup_run_id")
		}
		filter.LookupRunID = &parsed
	}

	if updatedSinceStr := strings.TrimSpace(c.QueryParam("updated_since")); updatedSinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, updatedSinceStr)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid updated_since (use RFC3339)")
		}
		filter.UpdatedSince = &parsed
	}

	businesses, err := h.repo.List(c.Request().Context(), filter)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list businesses")
	}

	return Success(c, http.StatusOK, "businesses retrieved", businesses)
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}
