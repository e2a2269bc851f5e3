package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/octobees/leads-enricher/internal/dto"
	"github.com/octobees/leads-enricher/internal/entity"
	"github.com/octobees/leads-enricher/internal/pipeline"
)

type stubBatchRunner struct {
	lastRecords []entity.Business
	results     func(records []entity.Business) []pipeline.Result
}

func (s *stubBatchRunner) Run(_ context.Context, records []entity.Business) []pipeline.Result {
	s.lastRecords = records
	if s.results != nil {
		return s.results(records)
	}
	return nil
}

func enrichAllResults(records []entity.Business) []pipeline.Result {
	results := make([]pipeline.Result, len(records))
	for i, record := range records {
		results[i] = pipeline.Result{
			Business: record,
			Enrichment: &entity.Enrichment{
				BusinessID: record.ID,
				Website:    record.WebsiteURL(),
				Emails:     []string{"Hello@ACME.test"},
			},
		}
	}
	return results
}

func seedBusinesses(repo *memoryRepo, n int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		website := "https://acme.test"
		business := entity.Business{ID: uuid.New(), Name: "Acme", Website: &website}
		repo.businesses = append(repo.businesses, business)
		ids = append(ids, business.ID)
	}
	return ids
}

func TestEnrichService_Run(t *testing.T) {
	repo := newMemoryRepo()
	seedBusinesses(repo, 2)
	runner := &stubBatchRunner{results: enrichAllResults}
	svc := NewEnrichService(repo, runner, NewContactCleaner("US", WithoutMXVerification()))

	summary, err := svc.Run(context.Background(), dto.EnrichRequest{Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total != 2 || summary.Enriched != 2 || summary.Unenriched != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(runner.lastRecords) != 2 {
		t.Fatalf("expected runner invoked with 2 records, got %d", len(runner.lastRecords))
	}
	if len(repo.enrichments) != 2 {
		t.Fatalf("expected 2 stored enrichments, got %d", len(repo.enrichments))
	}
	for _, enrichment := range repo.enrichments {
		if len(enrichment.Emails) != 1 || enrichment.Emails[0] != "hello@acme.test" {
			t.Fatalf("expected cleaned email, got %v", enrichment.Emails)
		}
	}
}

func TestEnrichService_RunByIDs(t *testing.T) {
	repo := newMemoryRepo()
	ids := seedBusinesses(repo, 3)
	runner := &stubBatchRunner{results: enrichAllResults}
	svc := NewEnrichService(repo, runner, NewContactCleaner("US", WithoutMXVerification()))

	summary, err := svc.Run(context.Background(), dto.EnrichRequest{IDs: []string{ids[0].String()}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total != 1 {
		t.Fatalf("expected single record run, got %+v", summary)
	}
}

func TestEnrichService_InvalidID(t *testing.T) {
	svc := NewEnrichService(newMemoryRepo(), &stubBatchRunner{}, NewContactCleaner("US", WithoutMXVerification()))

	if _, err := svc.Run(context.Background(), dto.EnrichRequest{IDs: []string{"nope"}}); !errors.Is(err, ErrInvalidBusinessID) {
		t.Fatalf("expected ErrInvalidBusinessID, got %v", err)
	}
}

func TestEnrichService_NoBusinesses(t *testing.T) {
	svc := NewEnrichService(newMemoryRepo(), &stubBatchRunner{}, NewContactCleaner("US", WithoutMXVerification()))

	if _, err := svc.Run(context.Background(), dto.EnrichRequest{}); !errors.Is(err, ErrNoBusinesses) {
		t.Fatalf("expected ErrNoBusinesses, got %v", err)
	}
}

func TestEnrichService_FailedCrawlsCountedNotFatal(t *testing.T) {
	repo := newMemoryRepo()
	seedBusinesses(repo, 3)
	runner := &stubBatchRunner{results: func(records []entity.Business) []pipeline.Result {
		results := enrichAllResults(records)
		results[1].Enrichment = nil
		results[1].Err = errors.New("fetch timeout")
		return results
	}}
	svc := NewEnrichService(repo, runner, NewContactCleaner("US", WithoutMXVerification()))

	summary, err := svc.Run(context.Background(), dto.EnrichRequest{Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Enriched != 2 || summary.Unenriched != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(repo.enrichments) != 2 {
		t.Fatalf("expected failed crawl not persisted, got %d enrichments", len(repo.enrichments))
	}
}

func TestEnrichService_Enrichment(t *testing.T) {
	repo := newMemoryRepo()
	id := uuid.New()
	repo.enrichments[id] = &entity.Enrichment{BusinessID: id, Website: "https://acme.test"}
	svc := NewEnrichService(repo, &stubBatchRunner{}, NewContactCleaner("US", WithoutMXVerification()))

	record, err := svc.Enrichment(context.Background(), id.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Website != "https://acme.test" {
		t.Fatalf("unexpected record: %+v", record)
	}

	if _, err := svc.Enrichment(context.Background(), "nope"); !errors.Is(err, ErrInvalidBusinessID) {
		t.Fatalf("expected ErrInvalidBusinessID, got %v", err)
	}
	if _, err := svc.Enrichment(context.Background(), uuid.NewString()); !errors.Is(err, ErrEnrichmentNotFound) {
		t.Fatalf("expected ErrEnrichmentNotFound, got %v", err)
	}
}
