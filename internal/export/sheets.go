package export

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// defaultSheetRange targets the first tab; the Sheets API appends below the
// last populated row regardless of the row index in the range.
const defaultSheetRange = "Leads!A1"

// ErrSheetNotConfigured is returned when no spreadsheet ID was configured.
var ErrSheetNotConfigured = errors.New("export sheet is not configured")

// valuesAppender is the subset of the Sheets values API the exporter uses,
// extracted so tests can stub the Google client.
type valuesAppender interface {
	Append(ctx context.Context, spreadsheetID, rangeRef string, values *sheets.ValueRange) (*sheets.AppendValuesResponse, error)
}

// SheetsExporter appends lead rows to a Google Sheets spreadsheet.
type SheetsExporter struct {
	appender valuesAppender
	sheetID  string
}

// NewSheetsExporter builds an exporter backed by the Sheets API using
// application default credentials.
func NewSheetsExporter(ctx context.Context, sheetID string, opts ...option.ClientOption) (*SheetsExporter, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsExporter{appender: sheetsValuesAppender{svc: svc}, sheetID: sheetID}, nil
}

// NewSheetsExporterWithAppender allows injecting a custom values client
// (useful for tests).
func NewSheetsExporterWithAppender(appender valuesAppender, sheetID string) *SheetsExporter {
	return &SheetsExporter{appender: appender, sheetID: sheetID}
}

// Append writes one row per lead record below the existing sheet content and
// returns the number of appended rows.
func (e *SheetsExporter) Append(ctx context.Context, records []LeadRecord) (int, error) {
	if e.sheetID == "" {
		return 0, ErrSheetNotConfigured
	}
	if len(records) == 0 {
		return 0, nil
	}

	values := make([][]any, 0, len(records))
	for _, record := range records {
		values = append(values, sheetRow(record))
	}

	_, err := e.appender.Append(ctx, e.sheetID, defaultSheetRange, &sheets.ValueRange{Values: values})
	if err != nil {
		return 0, fmt.Errorf("append to sheet: %w", err)
	}
	return len(values), nil
}

func sheetRow(record LeadRecord) []any {
	row := csvRow(record)
	out := make([]any, len(row))
	for i, cell := range row {
		out[i] = cell
	}
	return out
}

type sheetsValuesAppender struct {
	svc *sheets.Service
}

func (a sheetsValuesAppender) Append(ctx context.Context, spreadsheetID, rangeRef string, values *sheets.ValueRange) (*sheets.AppendValuesResponse, error) {
	return a.svc.Spreadsheets.Values.Append(spreadsheetID, rangeRef, values).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
}
