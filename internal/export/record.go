package export

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/leads-enricher/internal/entity"
	"github.com/octobees/leads-enricher/internal/service/scoring"
)

// LeadRecord is the flattened export row combining a business with its
// enrichment, if one exists.
type LeadRecord struct {
	BusinessID     uuid.UUID         `json:"business_id"`
	Name           string            `json:"name"`
	Category       string            `json:"category,omitempty"`
	Address        string            `json:"address,omitempty"`
	City           string            `json:"city,omitempty"`
	Country        string            `json:"country,omitempty"`
	Website        string            `json:"website,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	Rating         *float64          `json:"rating,omitempty"`
	Reviews        *int              `json:"reviews,omitempty"`
	Emails         []string          `json:"emails,omitempty"`
	Phones         []string          `json:"phones,omitempty"`
	Socials        map[string]string `json:"socials,omitempty"`
	ContactFormURL string            `json:"contact_form_url,omitempty"`
	Score          int               `json:"score"`
	EnrichedAt     *time.Time        `json:"enriched_at,omitempty"`
}

// BuildRecord flattens a business and its optional enrichment into a lead row.
func BuildRecord(business entity.Business, enrichment *entity.Enrichment) LeadRecord {
	record := LeadRecord{
		BusinessID: business.ID,
		Name:       business.Name,
		Category:   deref(business.Category),
		Address:    deref(business.Address),
		City:       deref(business.City),
		Country:    deref(business.Country),
		Website:    business.WebsiteURL(),
		Phone:      deref(business.Phone),
		Rating:     business.Rating,
		Reviews:    business.Reviews,
	}

	features := scoring.LeadFeatures{
		Address: record.Address,
		Website: record.Website,
	}
	if business.Rating != nil {
		features.Rating = *business.Rating
	}
	if business.Reviews != nil {
		features.Reviews = *business.Reviews
	}

	if enrichment != nil {
		record.Emails = enrichment.Emails
		record.Phones = enrichment.Phones
		record.Socials = enrichment.Socials
		record.ContactFormURL = deref(enrichment.ContactFormURL)
		updated := enrichment.UpdatedAt
		record.EnrichedAt = &updated

		features.Emails = enrichment.Emails
		features.Phones = enrichment.Phones
		features.Socials = enrichment.Socials
		features.HasContactForm = record.ContactFormURL != ""
	}

	record.Score = scoring.ComputeScore(features).Total
	return record
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func joinList(values []string) string {
	return strings.Join(values, "; ")
}

func joinSocials(socials map[string]string) string {
	if len(socials) == 0 {
		return ""
	}

	platforms := make([]string, 0, len(socials))
	for platform := range socials {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)

	pairs := make([]string, 0, len(platforms))
	for _, platform := range platforms {
		pairs = append(pairs, platform+"="+socials[platform])
	}
	return strings.Join(pairs, "; ")
}
