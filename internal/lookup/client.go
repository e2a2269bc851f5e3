// Package lookup talks to the external Google Maps scraper service and
// converts its place payloads into business records.
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"

	"github.com/octobees/leads-enricher/internal/entity"
)

// Query describes a single lookup request against the scraper.
type Query struct {
	Category  string  `json:"type_business"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Area      string  `json:"area,omitempty"`
	MinRating float64 `json:"min_rating,omitempty"`
	MaxPlaces int     `json:"max_places,omitempty"`
}

// SearchTerm renders the query the way the scraper expects it, partitioned
// by area when one is set.
func (q Query) SearchTerm() string {
	location := q.City
	if q.Area != "" {
		location = q.Area + ", " + q.City
	}
	return fmt.Sprintf("%s in %s, %s", q.Category, location, q.Country)
}

// Place mirrors the payload the scraper emits per business.
type Place struct {
	Name         string      `json:"name"`
	PlaceID      string      `json:"place_id,omitempty"`
	Address      string      `json:"address,omitempty"`
	Website      string      `json:"website,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	Rating       *float64    `json:"rating,omitempty"`
	ReviewsCount *int        `json:"reviews_count,omitempty"`
	Categories   []string    `json:"categories,omitempty"`
	Coordinates  *Coordinate `json:"coordinates,omitempty"`
}

// Coordinate carries a latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ToBusiness converts a scraped place into a business record tagged with the
// lookup run and the queried area.
func (p Place) ToBusiness(runID uuid.UUID, q Query, scrapedAt time.Time) entity.Business {
	business := entity.Business{
		ID:          uuid.New(),
		LookupRunID: &runID,
		Name:        p.Name,
		Category:    optional(firstOr(p.Categories, q.Category)),
		Area:        optional(q.Area),
		Address:     optional(p.Address),
		City:        optional(q.City),
		Country:     optional(q.Country),
		Website:     optional(p.Website),
		Phone:       optional(p.Phone),
		Rating:      p.Rating,
		Reviews:     p.ReviewsCount,
		ScrapedAt:   &scrapedAt,
	}
	if p.PlaceID != "" {
		placeID := p.PlaceID
		business.PlaceID = &placeID
	}
	if p.Coordinates != nil {
		lat := p.Coordinates.Latitude
		lng := p.Coordinates.Longitude
		business.Latitude = &lat
		business.Longitude = &lng
	}
	if raw, err := json.Marshal(p); err == nil {
		business.Raw = raw
	} else {
		business.Raw = json.RawMessage("{}")
	}
	return business
}

// Client posts lookup queries to the scraper service.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient builds a scraper client, auto-configuring an ID token client for
// service-to-service calls when none is supplied.
func NewClient(client *http.Client, baseURL string) *Client {
	if baseURL == "" {
		panic("baseURL must not be empty")
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), baseURL)
		if err != nil {
			client = &http.Client{Timeout: 10 * time.Second}
		} else {
			client = idc
		}
	}
	return &Client{client: client, baseURL: baseURL}
}

// Search runs one query against the scraper and decodes the resulting places.
func (c *Client) Search(ctx context.Context, q Query, requestID string) ([]Place, error) {
	payload := map[string]any{
		"query":         q.SearchTerm(),
		"type_business": q.Category,
		"city":          q.City,
		"country":       q.Country,
	}
	if q.MinRating > 0 {
		payload["min_rating"] = q.MinRating
	}
	if q.MaxPlaces > 0 {
		payload["max_places"] = q.MaxPlaces
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scrape", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create scraper request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraper request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("scraper error: %s", extractScraperError(resp.Body))
	}

	var scraperResp struct {
		Data struct {
			Places []Place `json:"places"`
		} `json:"data"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&scraperResp); err != nil && err != io.EOF {
		return nil, fmt.Errorf("could not decode scraper response: %w", err)
	}
	if scraperResp.Error != "" {
		return nil, fmt.Errorf("scraper error: %s", scraperResp.Error)
	}

	return scraperResp.Data.Places, nil
}

func extractScraperError(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return "scraper returned an error"
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return string(data)
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func firstOr(values []string, fallback string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return fallback
}
