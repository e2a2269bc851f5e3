package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var csvHeader = []string{
	"business_id",
	"name",
	"category",
	"address",
	"city",
	"country",
	"website",
	"phone",
	"rating",
	"reviews",
	"emails",
	"phones",
	"socials",
	"contact_form_url",
	"score",
}

// WriteCSV renders lead records as CSV with a fixed header row. List columns
// are joined with "; " so the file stays one row per lead.
func WriteCSV(w io.Writer, records []LeadRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, record := range records {
		if err := writer.Write(csvRow(record)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvRow(record LeadRecord) []string {
	rating := ""
	if record.Rating != nil {
		rating = strconv.FormatFloat(*record.Rating, 'f', -1, 64)
	}
	reviews := ""
	if record.Reviews != nil {
		reviews = strconv.Itoa(*record.Reviews)
	}

	return []string{
		record.BusinessID.String(),
		record.Name,
		record.Category,
		record.Address,
		record.City,
		record.Country,
		record.Website,
		record.Phone,
		rating,
		reviews,
		joinList(record.Emails),
		joinList(record.Phones),
		joinSocials(record.Socials),
		record.ContactFormURL,
		strconv.Itoa(record.Score),
	}
}
