package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-enricher/internal/dto"
	"github.com/octobees/leads-enricher/internal/middleware"
)

// LookupRunner executes a lookup request against the scraper service.
type LookupRunner interface {
	Run(ctx context.Context, req dto.LookupRequest, requestID string) (dto.LookupSummary, error)
}

// LookupHandler triggers business lookup runs on the scraper service.
type LookupHandler struct {
	service LookupRunner
}

// NewLookupHandler constructs a lookup handler.
func NewLookupHandler(service LookupRunner) *LookupHandler {
	return &LookupHandler{service: service}
}

// Run handles POST /lookup requests.
func (h *LookupHandler) Run(c echo.Context) error {
	var req dto.LookupRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.Prompt = strings.TrimSpace(req.Prompt)
	req.Category = strings.TrimSpace(req.Category)
	req.City = strings.TrimSpace(req.City)
	req.Country = strings.TrimSpace(req.Country)
	if req.MinRating < 0 {
		req.MinRating = 0
	}

	if req.Category == "" && req.Prompt == "" {
		return Error(c, http.StatusBadRequest, "category or prompt is required")
	}

	if req.City == "" || req.Country == "" {
		if req.Location != "" {
			parts := strings.Split(req.Location, ",")
			if len(parts) >= 2 {
				req.City = strings.TrimSpace(parts[0])
				req.Country = strings.TrimSpace(parts[1])
			}
		}
	}

	// A prompt can carry its own location; the planner falls back to its
	// defaults when it does not.
	if req.Prompt == "" && (req.City == "" || req.Country == "") {
		return Error(c, http.StatusBadRequest, "city and country are required")
	}

	summary, err := h.service.Run(c.Request().Context(), req, middleware.RequestIDFromContext(c))
	if err != nil {
		return Error(c, http.StatusBadGateway, err.Error())
	}

	return Success(c, http.StatusOK, "lookup completed", summary)
}
