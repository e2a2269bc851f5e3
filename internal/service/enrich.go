package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/octobees/leads-enricher/internal/dto"
	"github.com/octobees/leads-enricher/internal/entity"
	"github.com/octobees/leads-enricher/internal/pipeline"
	"github.com/octobees/leads-enricher/internal/repository"
)

// Errors surfaced to handlers.
var (
	ErrInvalidBusinessID  = errors.New("invalid business id")
	ErrEnrichmentNotFound = errors.New("enrichment not found")
	ErrNoBusinesses       = errors.New("no businesses matched the request")
)

const defaultEnrichBatch = 50

// BatchRunner runs the crawl pipeline over a set of records.
type BatchRunner interface {
	Run(ctx context.Context, records []entity.Business) []pipeline.Result
}

// EnrichService selects stored businesses, runs the crawl pipeline over them
// and persists the cleaned enrichments.
type EnrichService struct {
	repo    repository.BusinessesRepository
	runner  BatchRunner
	cleaner *ContactCleaner
}

// NewEnrichService wires an enrichment service.
func NewEnrichService(repo repository.BusinessesRepository, runner BatchRunner, cleaner *ContactCleaner) *EnrichService {
	return &EnrichService{repo: repo, runner: runner, cleaner: cleaner}
}

// Run loads the requested businesses, crawls their websites and stores the
// results. Per-record crawl failures are reported in the summary, never as
// an error.
func (s *EnrichService) Run(ctx context.Context, req dto.EnrichRequest) (dto.EnrichSummary, error) {
	records, err := s.selectBusinesses(ctx, req)
	if err != nil {
		return dto.EnrichSummary{}, err
	}
	if len(records) == 0 {
		return dto.EnrichSummary{}, ErrNoBusinesses
	}

	results := s.runner.Run(ctx, records)

	for _, result := range results {
		if result.Enrichment == nil {
			continue
		}
		s.cleaner.Clean(ctx, result.Enrichment)
		if err := s.repo.UpsertEnrichment(ctx, result.Enrichment); err != nil {
			log.Printf("store enrichment failed business_id=%s err=%v", result.Business.ID, err)
		}
	}

	summary := pipeline.Summarize(len(records), results)
	return dto.EnrichSummary{
		Total:      summary.Total,
		Filtered:   summary.Filtered,
		Enriched:   summary.Enriched,
		Unenriched: summary.Unenriched,
	}, nil
}

// Enrichment returns the stored enrichment for a business.
func (s *EnrichService) Enrichment(ctx context.Context, businessID string) (*entity.Enrichment, error) {
	id, err := uuid.Parse(businessID)
	if err != nil {
		return nil, ErrInvalidBusinessID
	}

	record, err := s.repo.GetEnrichment(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEnrichmentNotFound) {
			return nil, ErrEnrichmentNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *EnrichService) selectBusinesses(ctx context.Context, req dto.EnrichRequest) ([]entity.Business, error) {
	if len(req.IDs) > 0 {
		ids := make([]uuid.UUID, 0, len(req.IDs))
		for _, raw := range req.IDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidBusinessID, raw)
			}
			ids = append(ids, id)
		}
		return s.repo.ListByIDs(ctx, ids)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultEnrichBatch
	}

	return s.repo.List(ctx, dto.ListFilter{
		Category:      req.Category,
		City:          req.City,
		Country:       req.Country,
		WebsiteStatus: "available",
		Limit:         limit,
	})
}
