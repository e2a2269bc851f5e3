package entity

import (
	"time"

	"github.com/google/uuid"
)

// Enrichment stores contact details extracted from a business website.
// Website always equals the website of the source business record.
type Enrichment struct {
	BusinessID     uuid.UUID         `json:"business_id"`
	Website        string            `json:"website"`
	Emails         []string          `json:"emails"`
	Phones         []string          `json:"phones"`
	Socials        map[string]string `json:"socials"`
	ContactFormURL *string           `json:"contact_form_url,omitempty"`
	PagesCrawled   int               `json:"pages_crawled"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
