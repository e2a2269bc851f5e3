package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/leads-enricher/internal/dto"
	"github.com/octobees/leads-enricher/internal/lookup"
	"github.com/octobees/leads-enricher/internal/repository"
)

// PlaceSearcher abstracts the external scraper client.
type PlaceSearcher interface {
	Search(ctx context.Context, q lookup.Query, requestID string) ([]lookup.Place, error)
}

// LookupService runs lookup queries against the scraper and stores the
// resulting business records.
type LookupService struct {
	searcher PlaceSearcher
	repo     repository.BusinessesRepository
	planner  *QueryPlanner
}

// NewLookupService wires a lookup service.
func NewLookupService(searcher PlaceSearcher, repo repository.BusinessesRepository, planner *QueryPlanner) *LookupService {
	return &LookupService{searcher: searcher, repo: repo, planner: planner}
}

// Run plans the queries for a request, executes them sequentially against
// the scraper and upserts every returned place. A query that fails mid-run
// is logged and skipped; the run fails only when every query failed.
func (s *LookupService) Run(ctx context.Context, req dto.LookupRequest, requestID string) (dto.LookupSummary, error) {
	queries, err := s.planner.Plan(PlanInput{
		Prompt:    req.Prompt,
		Category:  req.Category,
		City:      req.City,
		Country:   req.Country,
		Areas:     req.Areas,
		MinRating: req.MinRating,
		MaxPlaces: req.MaxPlaces,
	})
	if err != nil {
		return dto.LookupSummary{}, err
	}

	runID := uuid.New()
	summary := dto.LookupSummary{RunID: runID.String(), Queries: len(queries)}
	failed := 0

	for _, q := range queries {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		places, err := s.searcher.Search(ctx, q, requestID)
		if err != nil {
			failed++
			log.Printf("lookup query failed run_id=%s query=%q err=%v", runID, q.SearchTerm(), err)
			continue
		}

		scrapedAt := time.Now()
		for _, place := range places {
			summary.Found++
			business := place.ToBusiness(runID, q, scrapedAt)
			inserted, err := s.repo.Upsert(ctx, &business)
			if err != nil {
				log.Printf("store business failed run_id=%s name=%q err=%v", runID, business.Name, err)
				continue
			}
			if inserted {
				summary.Stored++
			} else {
				summary.Duplicate++
			}
		}
	}

	if failed == len(queries) {
		return summary, errors.New("all lookup queries failed")
	}
	if failed > 0 {
		log.Printf("lookup run finished with partial failures run_id=%s failed=%d/%d", runID, failed, len(queries))
	}

	return summary, nil
}
