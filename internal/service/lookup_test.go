package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/octobees/leads-enricher/internal/dto"
	"github.com/octobees/leads-enricher/internal/entity"
	"github.com/octobees/leads-enricher/internal/lookup"
	"github.com/octobees/leads-enricher/internal/repository"
)

type stubSearcher struct {
	results map[string][]lookup.Place
	errs    map[string]error
	queries []lookup.Query
}

func (s *stubSearcher) Search(_ context.Context, q lookup.Query, _ string) ([]lookup.Place, error) {
	s.queries = append(s.queries, q)
	term := q.SearchTerm()
	if err, ok := s.errs[term]; ok {
		return nil, err
	}
	return s.results[term], nil
}

type memoryRepo struct {
	businesses  []entity.Business
	upsertErr   error
	seenPlaces  map[string]bool
	enrichments map[uuid.UUID]*entity.Enrichment
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		seenPlaces:  make(map[string]bool),
		enrichments: make(map[uuid.UUID]*entity.Enrichment),
	}
}

func (m *memoryRepo) Upsert(_ context.Context, business *entity.Business) (bool, error) {
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	if business.PlaceID != nil {
		if m.seenPlaces[*business.PlaceID] {
			return false, nil
		}
		m.seenPlaces[*business.PlaceID] = true
	}
	m.businesses = append(m.businesses, *business)
	return true, nil
}

func (m *memoryRepo) List(_ context.Context, _ dto.ListFilter) ([]entity.Business, error) {
	return m.businesses, nil
}

func (m *memoryRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Business, error) {
	var out []entity.Business
	for _, b := range m.businesses {
		for _, id := range ids {
			if b.ID == id {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

func (m *memoryRepo) UpsertEnrichment(_ context.Context, enrichment *entity.Enrichment) error {
	m.enrichments[enrichment.BusinessID] = enrichment
	return nil
}

func (m *memoryRepo) GetEnrichment(_ context.Context, businessID uuid.UUID) (*entity.Enrichment, error) {
	if enrichment, ok := m.enrichments[businessID]; ok {
		return enrichment, nil
	}
	return nil, repository.ErrEnrichmentNotFound
}

func TestLookupService_Run(t *testing.T) {
	searcher := &stubSearcher{
		results: map[string][]lookup.Place{
			"plumber in Mitte, Berlin, Germany": {
				{Name: "Acme", PlaceID: "pid-1", Website: "acme.test"},
				{Name: "Beta", PlaceID: "pid-2"},
			},
			"plumber in Wedding, Berlin, Germany": {
				{Name: "Acme again", PlaceID: "pid-1"},
			},
		},
	}
	repo := newMemoryRepo()
	svc := NewLookupService(searcher, repo, NewQueryPlanner("", ""))

	summary, err := svc.Run(context.Background(), dto.LookupRequest{
		Category: "plumber",
		City:     "Berlin",
		Country:  "Germany",
		Areas:    []string{"Mitte", "Wedding"},
	}, "rid-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Queries != 2 {
		t.Fatalf("expected 2 queries, got %d", summary.Queries)
	}
	if summary.Found != 3 {
		t.Fatalf("expected 3 found, got %d", summary.Found)
	}
	if summary.Stored != 2 || summary.Duplicate != 1 {
		t.Fatalf("expected 2 stored and 1 duplicate, got %d/%d", summary.Stored, summary.Duplicate)
	}
	if summary.RunID == "" {
		t.Fatalf("expected run id in summary")
	}
	if len(repo.businesses) != 2 {
		t.Fatalf("expected 2 stored businesses, got %d", len(repo.businesses))
	}
	for _, b := range repo.businesses {
		if b.LookupRunID == nil || b.LookupRunID.String() != summary.RunID {
			t.Fatalf("expected businesses tagged with run id")
		}
	}
}

func TestLookupService_PromptRun(t *testing.T) {
	searcher := &stubSearcher{
		results: map[string][]lookup.Place{
			"coffee shops in Lisbon, USA": {{Name: "Acme Coffee", PlaceID: "pid-1"}},
		},
	}
	repo := newMemoryRepo()
	svc := NewLookupService(searcher, repo, NewQueryPlanner("", ""))

	summary, err := svc.Run(context.Background(), dto.LookupRequest{
		Prompt: "find me all coffee shops in lisbon",
	}, "rid-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Queries != 1 || summary.Stored != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(searcher.queries) != 1 {
		t.Fatalf("expected one query, got %d", len(searcher.queries))
	}
	if searcher.queries[0].Category != "coffee shops" || searcher.queries[0].City != "Lisbon" {
		t.Fatalf("expected query derived from prompt, got %+v", searcher.queries[0])
	}
}

func TestLookupService_PromptWithoutCategory(t *testing.T) {
	svc := NewLookupService(&stubSearcher{}, newMemoryRepo(), NewQueryPlanner("", ""))

	if _, err := svc.Run(context.Background(), dto.LookupRequest{Prompt: "in lisbon"}, ""); err == nil {
		t.Fatalf("expected error when prompt yields no category")
	}
}

func TestLookupService_PartialFailure(t *testing.T) {
	searcher := &stubSearcher{
		results: map[string][]lookup.Place{
			"plumber in Mitte, Berlin, Germany": {{Name: "Acme", PlaceID: "pid-1"}},
		},
		errs: map[string]error{
			"plumber in Wedding, Berlin, Germany": errors.New("scraper timeout"),
		},
	}
	svc := NewLookupService(searcher, newMemoryRepo(), NewQueryPlanner("", ""))

	summary, err := svc.Run(context.Background(), dto.LookupRequest{
		Category: "plumber",
		City:     "Berlin",
		Country:  "Germany",
		Areas:    []string{"Mitte", "Wedding"},
	}, "")
	if err != nil {
		t.Fatalf("expected partial failure to succeed, got %v", err)
	}
	if summary.Stored != 1 {
		t.Fatalf("expected 1 stored, got %d", summary.Stored)
	}
}

func TestLookupService_AllQueriesFail(t *testing.T) {
	searcher := &stubSearcher{
		errs: map[string]error{
			"plumber in Berlin, Germany": errors.New("scraper down"),
		},
	}
	svc := NewLookupService(searcher, newMemoryRepo(), NewQueryPlanner("", ""))

	if _, err := svc.Run(context.Background(), dto.LookupRequest{
		Category: "plumber",
		City:     "Berlin",
		Country:  "Germany",
	}, ""); err == nil {
		t.Fatalf("expected error when every query fails")
	}
}

func TestLookupService_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	searcher := &stubSearcher{}
	svc := NewLookupService(searcher, newMemoryRepo(), NewQueryPlanner("", ""))

	if _, err := svc.Run(ctx, dto.LookupRequest{Category: "plumber", City: "Berlin", Country: "Germany"}, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if len(searcher.queries) != 0 {
		t.Fatalf("expected no queries after cancellation")
	}
}
