package pipeline

import (
	"net/url"
	"strings"

	"github.com/octobees/leads-enricher/internal/entity"
)

// NormalizeWebsite validates a website URL, prepending https:// when the
// scheme is missing. It returns the normalized URL and whether it is usable.
func NormalizeWebsite(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}
	return u.String(), true
}

// FilterWithWebsites keeps only records carrying a syntactically valid
// website URL. Malformed URLs are dropped, never fatal. The returned records
// carry the normalized website. Idempotent under repeated application.
func FilterWithWebsites(records []entity.Business) []entity.Business {
	filtered := make([]entity.Business, 0, len(records))
	for _, record := range records {
		normalized, ok := NormalizeWebsite(record.WebsiteURL())
		if !ok {
			continue
		}
		record.Website = &normalized
		filtered = append(filtered, record)
	}
	return filtered
}
