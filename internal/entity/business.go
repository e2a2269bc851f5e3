package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Business represents a single business returned by the lookup stage.
// Records are immutable once stored; enrichment lives in a separate row.
type Business struct {
	ID          uuid.UUID       `json:"id"`
	PlaceID     *string         `json:"place_id,omitempty"`
	LookupRunID *uuid.UUID      `json:"lookup_run_id,omitempty"`
	Name        string          `json:"name"`
	Category    *string         `json:"category,omitempty"`
	Area        *string         `json:"area,omitempty"`
	Address     *string         `json:"address,omitempty"`
	City        *string         `json:"city,omitempty"`
	Country     *string         `json:"country,omitempty"`
	Website     *string         `json:"website,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	Rating      *float64        `json:"rating,omitempty"`
	Reviews     *int            `json:"reviews,omitempty"`
	Longitude   *float64        `json:"longitude,omitempty"`
	Latitude    *float64        `json:"latitude,omitempty"`
	Raw         json.RawMessage `json:"raw"`
	ScrapedAt   *time.Time      `json:"scraped_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// WebsiteURL returns the website or an empty string when absent.
func (b *Business) WebsiteURL() string {
	if b.Website == nil {
		return ""
	}
	return *b.Website
}
