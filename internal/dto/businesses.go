package dto

import (
	"time"

	"github.com/google/uuid"
)

// ListFilter contains query parameters for business listing endpoints.
type ListFilter struct {
	Q             string
	Category      string
	Area          string
	City          string
	Country       string
	MinRating     *float64
	WebsiteStatus string
	LookupRunID   *uuid.UUID
	UpdatedSince  *time.Time
	Sort          string
	Page          int
	PerPage       int
	Limit         int
}
