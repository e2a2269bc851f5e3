package pipeline

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/octobees/leads-enricher/internal/entity"
)

const (
	defaultConcurrency = 5
	defaultCrawlRate   = rate.Limit(2) // crawls per second across all workers
)

// ContactCrawler fetches a website and extracts contact signals.
type ContactCrawler interface {
	Crawl(ctx context.Context, businessID uuid.UUID, website string) (*entity.Enrichment, error)
}

// Result pairs a business with its enrichment. Enrichment is nil when the
// crawl failed and the record passed through unenriched.
type Result struct {
	Business   entity.Business
	Enrichment *entity.Enrichment
	Err        error
}

// Runner coordinates concurrent crawling of filtered business records.
type Runner struct {
	crawler     ContactCrawler
	concurrency int
	limiter     *rate.Limiter
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithConcurrency bounds the number of concurrent crawls.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRateLimiter replaces the shared crawl rate limiter. The limiter is the
// only state shared between workers and is always passed in explicitly.
func WithRateLimiter(limiter *rate.Limiter) RunnerOption {
	return func(r *Runner) {
		if limiter != nil {
			r.limiter = limiter
		}
	}
}

// NewRunner builds a pipeline runner around the given crawler.
func NewRunner(crawler ContactCrawler, opts ...RunnerOption) *Runner {
	r := &Runner{
		crawler:     crawler,
		concurrency: defaultConcurrency,
		limiter:     rate.NewLimiter(defaultCrawlRate, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run filters the records to those with valid websites and crawls them with a
// bounded worker pool. Results keep the input order. A failed crawl yields an
// unenriched passthrough result; it never aborts the batch. Cancelling ctx
// stops issuing new crawls while in-flight fetches finish within their own
// timeouts.
func (r *Runner) Run(ctx context.Context, records []entity.Business) []Result {
	filtered := FilterWithWebsites(records)
	if len(filtered) == 0 {
		return nil
	}

	results := make([]Result, len(filtered))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	start := time.Now()
	for i, record := range filtered {
		results[i] = Result{Business: record}

		g.Go(func() error {
			if err := r.limiter.Wait(gctx); err != nil {
				results[i].Err = err
				return nil
			}

			enrichment, err := r.crawler.Crawl(gctx, record.ID, record.WebsiteURL())
			if err != nil {
				// Record passes through unenriched; the failure is logged only.
				log.Printf("crawl failed business_id=%s website=%s err=%v", record.ID, record.WebsiteURL(), err)
				results[i].Err = err
				return nil
			}

			results[i].Enrichment = enrichment
			return nil
		})
	}

	// Workers never return errors, so this only waits for completion.
	_ = g.Wait()

	log.Printf("pipeline run records=%d crawled=%d duration=%s", len(records), len(filtered), time.Since(start))
	return results
}

// Summary tallies a finished run.
type Summary struct {
	Total      int
	Filtered   int
	Enriched   int
	Unenriched int
}

// Summarize counts enriched and unenriched results for a batch of the given
// original size.
func Summarize(total int, results []Result) Summary {
	s := Summary{Total: total, Filtered: total - len(results)}
	for _, result := range results {
		if result.Enrichment != nil {
			s.Enriched++
		} else {
			s.Unenriched++
		}
	}
	return s
}
