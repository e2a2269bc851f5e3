package dto

// EnrichRequest selects which stored businesses to enrich.
type EnrichRequest struct {
	Category string   `json:"category,omitempty"`
	City     string   `json:"city,omitempty"`
	Country  string   `json:"country,omitempty"`
	IDs      []string `json:"ids,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// EnrichSummary reports the outcome of a pipeline run.
type EnrichSummary struct {
	Total      int `json:"total"`
	Filtered   int `json:"filtered"`
	Enriched   int `json:"enriched"`
	Unenriched int `json:"unenriched"`
}
