package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-enricher/internal/dto"
	"github.com/octobees/leads-enricher/internal/middleware"
)

type stubLookupRunner struct {
	lastReq       dto.LookupRequest
	lastRequestID string
	err           error
	calls         int
}

func (s *stubLookupRunner) Run(_ context.Context, req dto.LookupRequest, requestID string) (dto.LookupSummary, error) {
	s.calls++
	s.lastReq = req
	s.lastRequestID = requestID
	if s.err != nil {
		return dto.LookupSummary{}, s.err
	}
	return dto.LookupSummary{RunID: "run-1", Queries: 1, Found: 3, Stored: 3}, nil
}

func TestLookupHandler_Run(t *testing.T) {
	tests := map[string]struct {
		body       string
		runnerErr  error
		expectCode int
		expectRun  bool
	}{
		"success": {
			body:       `{"category":"plumber","city":"Berlin","country":"Germany"}`,
			expectCode: http.StatusOK,
			expectRun:  true,
		},
		"location fallback": {
			body:       `{"category":"plumber","location":"Berlin, Germany"}`,
			expectCode: http.StatusOK,
			expectRun:  true,
		},
		"prompt only": {
			body:       `{"prompt":"find me all plumbers in Berlin"}`,
			expectCode: http.StatusOK,
			expectRun:  true,
		},
		"missing category and prompt": {
			body:       `{"city":"Berlin","country":"Germany"}`,
			expectCode: http.StatusBadRequest,
		},
		"missing location": {
			body:       `{"category":"plumber"}`,
			expectCode: http.StatusBadRequest,
		},
		"scraper failure": {
			body:       `{"category":"plumber","city":"Berlin","country":"Germany"}`,
			runnerErr:  errors.New("scraper unavailable"),
			expectCode: http.StatusBadGateway,
			expectRun:  true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			runner := &stubLookupRunner{err: tt.runnerErr}
			handler := NewLookupHandler(runner)

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/lookup", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.Set(middleware.ContextKeyRequestID, "rid-1")

			if err := handler.Run(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d", tt.expectCode, rec.Code)
			}
			if tt.expectRun && runner.calls != 1 {
				t.Fatalf("expected service to run once, got %d", runner.calls)
			}
			if !tt.expectRun && runner.calls != 0 {
				t.Fatalf("expected validation to short-circuit")
			}
			if tt.expectRun && runner.lastRequestID != "rid-1" {
				t.Fatalf("expected request id forwarded, got %q", runner.lastRequestID)
			}
		})
	}
}

func TestLookupHandler_PromptForwarded(t *testing.T) {
	runner := &stubLookupRunner{}
	handler := NewLookupHandler(runner)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/lookup", strings.NewReader(`{"prompt":" find dentists in Porto "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Run(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if runner.lastReq.Prompt != "find dentists in Porto" {
		t.Fatalf("expected trimmed prompt forwarded, got %q", runner.lastReq.Prompt)
	}
}

func TestLookupHandler_LocationSplit(t *testing.T) {
	runner := &stubLookupRunner{}
	handler := NewLookupHandler(runner)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/lookup", strings.NewReader(`{"category":"dentist","location":"Porto , Portugal"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Run(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runner.lastReq.City != "Porto" || runner.lastReq.Country != "Portugal" {
		t.Fatalf("expected location split into city and country, got %+v", runner.lastReq)
	}
}
