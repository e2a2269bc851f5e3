package crawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/leads-enricher/internal/entity"
)

const (
	defaultFetchTimeout = 10 * time.Second
	defaultMaxRedirects = 5
	defaultMaxBodyBytes = 2 << 20
	defaultUserAgent    = "leads-enricher/1.0 (+https://github.com/octobees/leads-enricher)"
	retryBackoff        = 500 * time.Millisecond
)

// subPaths are common contact locations fetched in addition to the landing page.
var subPaths = []string{"/contact", "/contact-us", "/about", "/impressum"}

// FetchError reports a failed page fetch. Callers treat it as "no enrichment"
// for the affected record, never as a batch-fatal condition.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
}

// Unwrap exposes the underlying transport error.
func (e *FetchError) Unwrap() error { return e.Err }

// Crawler fetches business websites and extracts contact signals.
type Crawler struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	fetchSubs    bool
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithHTTPClient overrides the default HTTP client (useful for tests).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Crawler) {
		if client != nil {
			c.client = client
		}
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Crawler) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodyBytes caps how much of each response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// WithoutSubPaths restricts the crawl to the landing page only.
func WithoutSubPaths() Option {
	return func(c *Crawler) {
		c.fetchSubs = false
	}
}

// New builds a crawler with bounded timeout and redirect limits.
func New(timeout time.Duration, maxRedirects int, opts ...Option) *Crawler {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	if maxRedirects <= 0 {
		maxRedirects = defaultMaxRedirects
	}

	c := &Crawler{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent:    defaultUserAgent,
		maxBodyBytes: defaultMaxBodyBytes,
		fetchSubs:    true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Crawl fetches the website landing page plus common contact sub-paths and
// returns the merged contact signals. A successful landing-page fetch always
// yields an enrichment, even when nothing was extracted; sub-path failures
// are ignored. The landing-page fetch is retried once after a short backoff.
func (c *Crawler) Crawl(ctx context.Context, businessID uuid.UUID, website string) (*entity.Enrichment, error) {
	base, err := url.Parse(website)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &FetchError{URL: website, Err: errors.New("invalid website url")}
	}

	body, err := c.fetchWithRetry(ctx, base.String())
	if err != nil {
		return nil, err
	}

	signals := extractSignals(base, body)
	pages := 1

	if c.fetchSubs {
		for _, path := range subPaths {
			if ctx.Err() != nil {
				break
			}
			sub := *base
			sub.Path = strings.TrimRight(base.Path, "/") + path
			subBody, subErr := c.fetch(ctx, sub.String())
			if subErr != nil {
				continue
			}
			signals.merge(extractSignals(base, subBody))
			pages++
		}
	}

	return &entity.Enrichment{
		BusinessID:     businessID,
		Website:        website,
		Emails:         signals.emailList(),
		Phones:         signals.phoneList(),
		Socials:        signals.socials,
		ContactFormURL: signals.contactForm(),
		PagesCrawled:   pages,
	}, nil
}

func (c *Crawler) fetchWithRetry(ctx context.Context, target string) (string, error) {
	body, err := c.fetch(ctx, target)
	if err == nil {
		return body, nil
	}
	if ctx.Err() != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", &FetchError{URL: target, Err: ctx.Err()}
	case <-time.After(retryBackoff):
	}

	return c.fetch(ctx, target)
}

func (c *Crawler) fetch(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", &FetchError{URL: target, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{URL: target, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return "", &FetchError{URL: target, Err: err}
	}

	return string(data), nil
}
