package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-enricher/internal/dto"
	"github.com/octobees/leads-enricher/internal/export"
	"github.com/octobees/leads-enricher/internal/repository"
)

// exportBatchLimit caps how many leads a single export request can pull.
const exportBatchLimit = 1000

// SheetAppender pushes lead rows to a spreadsheet.
type SheetAppender interface {
	Append(ctx context.Context, records []export.LeadRecord) (int, error)
}

// AdminDataHandler handles JSONL ingestion and lead exports for
// administrators.
type AdminDataHandler struct {
	repo   repository.BusinessesRepository
	sheets SheetAppender
}

// NewAdminDataHandler wires a handler backed by the businesses repository.
// The sheets exporter may be nil when no spreadsheet is configured.
func NewAdminDataHandler(repo repository.BusinessesRepository, sheets SheetAppender) *AdminDataHandler {
	return &AdminDataHandler{repo: repo, sheets: sheets}
}

// ImportJSONL handles POST /admin/import-jsonl requests.
func (h *AdminDataHandler) ImportJSONL(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing jsonl file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	businesses, err := export.ReadBusinessesJSONL(file)
	if err != nil {
		var validationErr export.JSONLValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to process jsonl")
	}

	inserted, updated := 0, 0
	ctx := c.Request().Context()
	for i := range businesses {
		wasInsert, err := h.repo.Upsert(ctx, &businesses[i])
		if err != nil {
			return Error(c, http.StatusInternalServerError, "failed to store businesses")
		}
		if wasInsert {
			inserted++
		} else {
			updated++
		}
	}

	return Success(c, http.StatusOK, "businesses JSONL processed", map[string]int{
		"inserted": inserted,
		"updated":  updated,
		"total":    len(businesses),
	})
}

// ExportJSONL handles GET /admin/export/jsonl requests.
func (h *AdminDataHandler) ExportJSONL(c echo.Context) error {
	records, err := h.collectRecords(c)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to collect leads")
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/x-ndjson")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="leads.jsonl"`)
	c.Response().WriteHeader(http.StatusOK)
	return export.WriteJSONL(c.Response(), records)
}

// ExportCSV handles GET /admin/export/csv requests.
func (h *AdminDataHandler) ExportCSV(c echo.Context) error {
	records, err := h.collectRecords(c)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to collect leads")
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="leads.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return export.WriteCSV(c.Response(), records)
}

// ExportSheets handles POST /admin/export/sheets requests.
func (h *AdminDataHandler) ExportSheets(c echo.Context) error {
	if h.sheets == nil {
		return Error(c, http.StatusServiceUnavailable, "sheets export is not configured")
	}

	records, err := h.collectRecords(c)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to collect leads")
	}

	appended, err := h.sheets.Append(c.Request().Context(), records)
	if err != nil {
		if errors.Is(err, export.ErrSheetNotConfigured) {
			return Error(c, http.StatusServiceUnavailable, "sheets export is not configured")
		}
		return Error(c, http.StatusBadGateway, "failed to append to sheet")
	}

	return Success(c, http.StatusOK, "leads exported", map[string]int{"appended": appended})
}

func (h *AdminDataHandler) collectRecords(c echo.Context) ([]export.LeadRecord, error) {
	filter := dto.ListFilter{
		Category: strings.TrimSpace(c.QueryParam("category")),
		City:     strings.TrimSpace(c.QueryParam("city")),
		Country:  strings.TrimSpace(c.QueryParam("country")),
		Limit:    exportBatchLimit,
	}

	if limitStr := strings.TrimSpace(c.QueryParam("limit")); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit < exportBatchLimit {
			filter.Limit = limit
		}
	}

	ctx := c.Request().Context()
	businesses, err := h.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	records := make([]export.LeadRecord, 0, len(businesses))
	for _, business := range businesses {
		enrichment, err := h.repo.GetEnrichment(ctx, business.ID)
		if err != nil && !errors.Is(err, repository.ErrEnrichmentNotFound) {
			return nil, err
		}
		records = append(records, export.BuildRecord(business, enrichment))
	}
	return records, nil
}
