package pipeline

import (
	"testing"

	"github.com/octobees/leads-enricher/internal/entity"
)

func strPtr(s string) *string { return &s }

func TestNormalizeWebsite(t *testing.T) {
	tests := map[string]struct {
		input string
		want  string
		ok    bool
	}{
		"full url":         {input: "https://cafea.example/menu", want: "https://cafea.example/menu", ok: true},
		"http kept":        {input: "http://cafea.example", want: "http://cafea.example", ok: true},
		"scheme added":     {input: "cafea.example", want: "https://cafea.example", ok: true},
		"whitespace":       {input: "  cafea.example  ", want: "https://cafea.example", ok: true},
		"empty":            {input: "", ok: false},
		"scheme only":      {input: "https://", ok: false},
		"ftp rejected":     {input: "ftp://cafea.example", ok: false},
		"garbage rejected": {input: "ht tp://%%%", ok: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := NormalizeWebsite(tc.input)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
			if ok && got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestFilterWithWebsites(t *testing.T) {
	records := []entity.Business{
		{Name: "Cafe A", Website: strPtr("http://cafea.example")},
		{Name: "No Website"},
		{Name: "Bare Domain", Website: strPtr("cafeb.example")},
		{Name: "Broken", Website: strPtr("://nope")},
	}

	filtered := FilterWithWebsites(records)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 records, got %d", len(filtered))
	}
	if filtered[0].Name != "Cafe A" || filtered[1].Name != "Bare Domain" {
		t.Fatalf("unexpected order: %s, %s", filtered[0].Name, filtered[1].Name)
	}
	if *filtered[1].Website != "https://cafeb.example" {
		t.Fatalf("expected normalized website, got %s", *filtered[1].Website)
	}
}

func TestFilterWithWebsitesIsIdempotent(t *testing.T) {
	records := []entity.Business{
		{Name: "Cafe A", Website: strPtr("cafea.example")},
		{Name: "No Website"},
	}

	once := FilterWithWebsites(records)
	twice := FilterWithWebsites(once)

	if len(once) != len(twice) {
		t.Fatalf("filter not idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if *once[i].Website != *twice[i].Website {
			t.Fatalf("website changed on second pass: %s vs %s", *once[i].Website, *twice[i].Website)
		}
	}
}
