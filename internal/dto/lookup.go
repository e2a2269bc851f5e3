package dto

// LookupRequest is the payload used by the business lookup endpoint. Either
// an explicit category or a free-form prompt must be present; explicit
// fields win over whatever the prompt parser derives.
type LookupRequest struct {
	Prompt    string   `json:"prompt,omitempty"`
	Category  string   `json:"category,omitempty"`
	Location  string   `json:"location,omitempty"`
	City      string   `json:"city,omitempty"`
	Country   string   `json:"country,omitempty"`
	Areas     []string `json:"areas,omitempty"`
	MinRating float64  `json:"min_rating,omitempty"`
	MaxPlaces int      `json:"max_places,omitempty"`
}

// LookupSummary reports how many records a lookup run produced.
type LookupSummary struct {
	RunID     string `json:"run_id"`
	Queries   int    `json:"queries"`
	Found     int    `json:"found"`
	Stored    int    `json:"stored"`
	Duplicate int    `json:"duplicate"`
}
