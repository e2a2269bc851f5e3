package service

import (
	"context"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/octobees/leads-enricher/internal/entity"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "US"
	mxLookupTimeout    = 3 * time.Second
)

var allowedSocialDomains = map[string]string{
	"linkedin.com":  "linkedin",
	"facebook.com":  "facebook",
	"instagram.com": "instagram",
	"twitter.com":   "twitter",
	"x.com":         "twitter",
	"youtube.com":   "youtube",
	"youtu.be":      "youtube",
	"tiktok.com":    "tiktok",
}

// DNSResolver abstracts DNS lookups to simplify testing.
type DNSResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// ContactCleaner validates and normalizes raw crawler output before it is
// persisted or exported.
type ContactCleaner struct {
	DefaultRegion string
	dnsResolver   DNSResolver
	verifyMX      bool
}

// CleanerOption configures optional dependencies.
type CleanerOption func(*ContactCleaner)

// WithDNSResolver overrides the default DNS resolver.
func WithDNSResolver(resolver DNSResolver) CleanerOption {
	return func(c *ContactCleaner) {
		if resolver != nil {
			c.dnsResolver = resolver
		}
	}
}

// WithoutMXVerification disables the MX lookup on email domains.
func WithoutMXVerification() CleanerOption {
	return func(c *ContactCleaner) {
		c.verifyMX = false
	}
}

// NewContactCleaner builds a cleaner with sensible defaults.
func NewContactCleaner(defaultRegion string, opts ...CleanerOption) *ContactCleaner {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	c := &ContactCleaner{
		DefaultRegion: region,
		dnsResolver:   systemDNSResolver{},
		verifyMX:      true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean applies all validation rules to an enrichment in place: emails are
// lowercased, syntax- and MX-checked; phones normalized to E.164; social
// links restricted to the allow-list with tracking parameters stripped.
func (c *ContactCleaner) Clean(ctx context.Context, enrichment *entity.Enrichment) {
	if enrichment == nil {
		return
	}
	enrichment.Emails = c.cleanEmails(ctx, enrichment.Emails)
	enrichment.Phones = c.normalizePhones(enrichment.Phones)
	enrichment.Socials = c.cleanSocials(enrichment.Socials)
	if enrichment.ContactFormURL != nil {
		cleaned := c.sanitizeContactForm(*enrichment.ContactFormURL)
		if cleaned == "" {
			enrichment.ContactFormURL = nil
		} else {
			enrichment.ContactFormURL = &cleaned
		}
	}
}

func (c *ContactCleaner) cleanEmails(ctx context.Context, emails []string) []string {
	if len(emails) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(emails))
	domainCache := make(map[string]bool)
	valid := make([]string, 0, len(emails))

	for _, raw := range emails {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" || !emailPattern.MatchString(email) {
			continue
		}
		parts := strings.SplitN(email, "@", 2)
		domain := parts[1]
		if !isDomainValid(domain) {
			continue
		}
		asciiDomain, err := idnaProfile.ToASCII(domain)
		if err != nil || asciiDomain == "" {
			continue
		}
		if c.verifyMX {
			if ok, cached := domainCache[asciiDomain]; cached {
				if !ok {
					continue
				}
			} else {
				hasMX := c.hasMXRecord(ctx, asciiDomain)
				domainCache[asciiDomain] = hasMX
				if !hasMX {
					continue
				}
			}
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		valid = append(valid, email)
	}
	if len(valid) == 0 {
		return nil
	}
	return valid
}

func (c *ContactCleaner) normalizePhones(phones []string) []string {
	if len(phones) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(phones))
	valid := make([]string, 0, len(phones))

	for _, raw := range phones {
		normalized := normalizePhone(raw, c.DefaultRegion)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		valid = append(valid, normalized)
	}
	if len(valid) == 0 {
		return nil
	}
	return valid
}

func (c *ContactCleaner) cleanSocials(socials map[string]string) map[string]string {
	if len(socials) == 0 {
		return nil
	}
	result := make(map[string]string, len(socials))
	for key, raw := range socials {
		platform := strings.ToLower(strings.TrimSpace(key))
		u, err := sanitizeURL(raw)
		if err != nil {
			continue
		}
		hostPlatform, ok := hostMatchesAllowed(u.Hostname())
		if !ok || hostPlatform != platform {
			continue
		}
		stripTracking(u)
		result[platform] = u.String()
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func (c *ContactCleaner) sanitizeContactForm(raw string) string {
	u, err := sanitizeURL(raw)
	if err != nil {
		return ""
	}
	stripTracking(u)
	return u.String()
}

func (c *ContactCleaner) hasMXRecord(ctx context.Context, domain string) bool {
	if c.dnsResolver == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, mxLookupTimeout)
	defer cancel()
	records, err := c.dnsResolver.LookupMX(ctx, domain)
	return err == nil && len(records) > 0
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}

type systemDNSResolver struct{}

func (systemDNSResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return net.DefaultResolver.LookupMX(ctx, domain)
}
