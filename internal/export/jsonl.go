package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/leads-enricher/internal/entity"
)

// JSONLValidationError indicates that the provided JSONL payload is invalid.
type JSONLValidationError struct {
	Message string
}

func (e JSONLValidationError) Error() string {
	return e.Message
}

// maxJSONLLineBytes bounds a single import line so a malformed upload cannot
// exhaust memory.
const maxJSONLLineBytes = 1 << 20

// WriteJSONL streams lead records as one JSON document per line.
func WriteJSONL(w io.Writer, records []LeadRecord) error {
	encoder := json.NewEncoder(w)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("encode lead record: %w", err)
		}
	}
	return nil
}

// businessLine is the accepted shape of an imported JSONL line. It mirrors
// the scraper place payload so exports from the scraping pipeline can be
// re-imported unchanged.
type businessLine struct {
	PlaceID   string   `json:"place_id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
	Website   string   `json:"website"`
	Phone     string   `json:"phone"`
	Rating    *float64 `json:"rating"`
	Reviews   *int     `json:"reviews_count"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ReadBusinessesJSONL parses an uploaded JSONL document into business
// entities. Blank lines are skipped; a line that is not valid JSON or is
// missing a name aborts the import with a validation error naming the line.
func ReadBusinessesJSONL(r io.Reader) ([]entity.Business, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxJSONLLineBytes)

	var (
		businesses []entity.Business
		lineNum    int
	)
	now := time.Now().UTC()

	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var parsed businessLine
		if err := json.Unmarshal(line, &parsed); err != nil {
			return nil, JSONLValidationError{Message: fmt.Sprintf("invalid JSON on line %d", lineNum)}
		}

		parsed.Name = strings.TrimSpace(parsed.Name)
		if parsed.Name == "" {
			return nil, JSONLValidationError{Message: fmt.Sprintf("missing name on line %d", lineNum)}
		}

		business := entity.Business{
			ID:        uuid.New(),
			Name:      parsed.Name,
			Category:  optionalString(parsed.Category),
			Address:   optionalString(parsed.Address),
			City:      optionalString(parsed.City),
			Country:   optionalString(parsed.Country),
			Website:   optionalString(parsed.Website),
			Phone:     optionalString(parsed.Phone),
			Rating:    parsed.Rating,
			Reviews:   parsed.Reviews,
			Latitude:  parsed.Latitude,
			Longitude: parsed.Longitude,
			Raw:       append(json.RawMessage(nil), line...),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if placeID := strings.TrimSpace(parsed.PlaceID); placeID != "" {
			business.PlaceID = &placeID
		}

		businesses = append(businesses, business)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl: %w", err)
	}
	if lineNum == 0 {
		return nil, JSONLValidationError{Message: "jsonl file is empty"}
	}

	return businesses, nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
