package service

import (
	"context"
	"errors"
	"net"
	"reflect"
	"testing"

	"github.com/octobees/leads-enricher/internal/entity"
)

type stubResolver struct {
	domains map[string]bool
	calls   int
}

func (s *stubResolver) LookupMX(_ context.Context, domain string) ([]*net.MX, error) {
	s.calls++
	if s.domains[domain] {
		return []*net.MX{{Host: "mx." + domain}}, nil
	}
	return nil, errors.New("no mx records")
}

func TestContactCleaner_CleanEmails(t *testing.T) {
	resolver := &stubResolver{domains: map[string]bool{"acme.test": true}}
	cleaner := NewContactCleaner("US", WithDNSResolver(resolver))

	enrichment := &entity.Enrichment{
		Emails: []string{
			"Hello@ACME.test",
			"hello@acme.test",
			"noreply@dead.test",
			"not-an-email",
			"bad@-domain.test",
		},
	}
	cleaner.Clean(context.Background(), enrichment)

	if !reflect.DeepEqual(enrichment.Emails, []string{"hello@acme.test"}) {
		t.Fatalf("unexpected emails: %v", enrichment.Emails)
	}
}

func TestContactCleaner_MXCacheByDomain(t *testing.T) {
	resolver := &stubResolver{domains: map[string]bool{"acme.test": true}}
	cleaner := NewContactCleaner("US", WithDNSResolver(resolver))

	enrichment := &entity.Enrichment{
		Emails: []string{"a@acme.test", "b@acme.test", "c@acme.test"},
	}
	cleaner.Clean(context.Background(), enrichment)

	if len(enrichment.Emails) != 3 {
		t.Fatalf("expected all emails kept, got %v", enrichment.Emails)
	}
	if resolver.calls != 1 {
		t.Fatalf("expected a single MX lookup per domain, got %d", resolver.calls)
	}
}

func TestContactCleaner_WithoutMXVerification(t *testing.T) {
	cleaner := NewContactCleaner("US", WithoutMXVerification())

	enrichment := &entity.Enrichment{Emails: []string{"hello@unresolvable.test"}}
	cleaner.Clean(context.Background(), enrichment)

	if len(enrichment.Emails) != 1 {
		t.Fatalf("expected syntax-valid email to survive, got %v", enrichment.Emails)
	}
}

func TestContactCleaner_NormalizePhones(t *testing.T) {
	cleaner := NewContactCleaner("US", WithoutMXVerification())

	enrichment := &entity.Enrichment{
		Phones: []string{
			"(415) 555-2671",
			"+1 415 555 2671",
			"12345",
			"garbage",
		},
	}
	cleaner.Clean(context.Background(), enrichment)

	if !reflect.DeepEqual(enrichment.Phones, []string{"+14155552671"}) {
		t.Fatalf("unexpected phones: %v", enrichment.Phones)
	}
}

func TestContactCleaner_CleanSocials(t *testing.T) {
	cleaner := NewContactCleaner("US", WithoutMXVerification())

	enrichment := &entity.Enrichment{
		Socials: map[string]string{
			"facebook":  "https://www.facebook.com/acme?utm_source=site",
			"twitter":   "https://x.com/acme",
			"instagram": "https://example.com/acme",
			"linkedin":  "not a url at all ://",
		},
	}
	cleaner.Clean(context.Background(), enrichment)

	if len(enrichment.Socials) != 2 {
		t.Fatalf("unexpected socials: %v", enrichment.Socials)
	}
	if enrichment.Socials["facebook"] != "https://www.facebook.com/acme" {
		t.Fatalf("expected tracking params stripped, got %q", enrichment.Socials["facebook"])
	}
	if enrichment.Socials["twitter"] != "https://x.com/acme" {
		t.Fatalf("expected x.com link kept for twitter, got %q", enrichment.Socials["twitter"])
	}
}

func TestContactCleaner_ContactForm(t *testing.T) {
	cleaner := NewContactCleaner("US", WithoutMXVerification())

	form := "acme.test/contact?utm_campaign=x"
	enrichment := &entity.Enrichment{ContactFormURL: &form}
	cleaner.Clean(context.Background(), enrichment)

	if enrichment.ContactFormURL == nil || *enrichment.ContactFormURL != "https://acme.test/contact" {
		t.Fatalf("unexpected contact form url: %v", enrichment.ContactFormURL)
	}

	bad := "   "
	enrichment = &entity.Enrichment{ContactFormURL: &bad}
	cleaner.Clean(context.Background(), enrichment)
	if enrichment.ContactFormURL != nil {
		t.Fatalf("expected invalid contact form url dropped")
	}
}

func TestContactCleaner_NilEnrichment(t *testing.T) {
	cleaner := NewContactCleaner("", WithoutMXVerification())
	cleaner.Clean(context.Background(), nil)

	if cleaner.DefaultRegion != "US" {
		t.Fatalf("expected default region fallback, got %q", cleaner.DefaultRegion)
	}
}
