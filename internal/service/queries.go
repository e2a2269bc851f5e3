package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/octobees/leads-enricher/internal/lookup"
)

var (
	stopwordExpr    = regexp.MustCompile(`(?i)\b(find|please|need|want|looking|for|me|all|some|list)\b`)
	locationPattern = regexp.MustCompile(`(?i)\b(?:in|near|around)\s+([a-zA-Z\s]+)`)
)

// QueryPlanner turns a free-form prompt plus a set of areas into the
// per-area lookup queries issued against the scraper. Area enumeration
// itself happens upstream; the planner only partitions the search.
type QueryPlanner struct {
	DefaultCountry string
	DefaultCity    string
}

// PlanInput carries the parameters for a planned lookup run.
type PlanInput struct {
	Prompt    string
	Category  string
	City      string
	Country   string
	Areas     []string
	MinRating float64
	MaxPlaces int
}

// NewQueryPlanner creates a planner with sensible defaults.
func NewQueryPlanner(defaultCity, defaultCountry string) *QueryPlanner {
	if strings.TrimSpace(defaultCity) == "" {
		defaultCity = "New York"
	}
	if strings.TrimSpace(defaultCountry) == "" {
		defaultCountry = "USA"
	}
	return &QueryPlanner{DefaultCity: defaultCity, DefaultCountry: defaultCountry}
}

// Plan expands the input into one query per area, or a single city-wide
// query when no areas are given. Explicit category/city fields win over
// whatever the prompt parser derives.
func (p *QueryPlanner) Plan(input PlanInput) ([]lookup.Query, error) {
	category := strings.TrimSpace(input.Category)
	city := strings.TrimSpace(input.City)

	if category == "" || city == "" {
		promptCity, promptCategory := extractCityAndCategory(input.Prompt)
		if category == "" {
			category = promptCategory
		}
		if city == "" {
			city = promptCity
		}
	}
	if category == "" {
		return nil, errors.New("category is required")
	}
	if city == "" {
		city = p.DefaultCity
	}

	country := strings.TrimSpace(input.Country)
	if country == "" {
		country = p.DefaultCountry
	}

	base := lookup.Query{
		Category:  category,
		City:      city,
		Country:   country,
		MinRating: maxFloat(0, input.MinRating),
		MaxPlaces: input.MaxPlaces,
	}

	areas := dedupeAreas(input.Areas)
	if len(areas) == 0 {
		return []lookup.Query{base}, nil
	}

	queries := make([]lookup.Query, 0, len(areas))
	for _, area := range areas {
		q := base
		q.Area = area
		queries = append(queries, q)
	}
	return queries, nil
}

func extractCityAndCategory(prompt string) (string, string) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ""
	}

	match := locationPattern.FindStringSubmatch(prompt)
	city := ""
	if len(match) > 1 {
		city = titleCase(match[1])
	}

	lower := strings.ToLower(prompt)
	if len(match) > 0 {
		idx := strings.Index(lower, strings.ToLower(match[0]))
		if idx >= 0 {
			prompt = strings.TrimSpace(prompt[:idx])
		}
	}

	category := stopwordExpr.ReplaceAllString(prompt, "")
	category = strings.Join(strings.Fields(category), " ")
	return city, category
}

func dedupeAreas(areas []string) []string {
	if len(areas) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(areas))
	result := make([]string, 0, len(areas))
	for _, raw := range areas {
		area := titleCase(raw)
		if area == "" {
			continue
		}
		key := strings.ToLower(area)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, area)
	}
	return result
}

func titleCase(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	parts := strings.Fields(value)
	for i, p := range parts {
		lower := strings.ToLower(p)
		if len(lower) == 0 {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
