package evidence

import (
	"testing"

	"github.com/clinicscan/clinicscan/internal/model"
)

func TestProviderHintsNames(t *testing.T) {
	t.Parallel()

	page := okPage("https://clinic.example/team",
		"Meet the team\nDr. Maria Gonzalez leads the practice.\nJames Porter, LCSW\nAmy Chen Wu, PMHNP\nOur receptionist Kelly")

	hints := providerHints(page)

	byName := make(map[string]model.ProviderHint)
	for _, h := range hints {
		byName[h.Name] = h
	}

	if h, ok := byName["Maria Gonzalez"]; !ok || h.Credential != "Dr" {
		t.Errorf("Dr. Maria Gonzalez not captured: %+v", hints)
	}
	if h, ok := byName["James Porter"]; !ok || h.Credential != "LCSW" {
		t.Errorf("James Porter, LCSW not captured: %+v", hints)
	}
	if h, ok := byName["Amy Chen Wu"]; !ok || h.Credential != "PMHNP" {
		t.Errorf("Amy Chen Wu, PMHNP not captured: %+v", hints)
	}
	if _, ok := byName["Kelly"]; ok {
		t.Error("uncredentialed name captured as a provider")
	}
	for _, h := range hints {
		if h.Source != page.URL {
			t.Errorf("hint Source = %q, want page URL %q", h.Source, page.URL)
		}
	}
}

func TestProviderHintsLongestCredentialWins(t *testing.T) {
	t.Parallel()

	page := okPage("https://clinic.example/team", "Sam Field, PA-C\nDana Reed, LPCC")

	hints := providerHints(page)
	creds := make(map[string]string)
	for _, h := range hints {
		creds[h.Name] = h.Credential
	}
	if creds["Sam Field"] != "PA-C" {
		t.Errorf("Sam Field credential = %q, want PA-C not PA", creds["Sam Field"])
	}
	if creds["Dana Reed"] != "LPCC" {
		t.Errorf("Dana Reed credential = %q, want LPCC not LPC", creds["Dana Reed"])
	}
}

func TestProviderHintsHeadcounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []int
	}{
		{name: "team of N", text: "Our team of 12 works across two offices.", want: []int{12}},
		{name: "N providers", text: "More than 8 providers accept new patients.", want: []int{8}},
		{name: "N plus clinicians", text: "We have 25+ clinicians on staff.", want: []int{25}},
		{name: "case insensitive", text: "A TEAM OF 6 serves the region.", want: []int{6}},
		{name: "zero rejected", text: "team of 0 providers", want: nil},
		{name: "above cap rejected", text: "serving 999 doctors nationwide", want: nil},
		{name: "no headcount phrasing", text: "established in 1985 with 40 beds", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			page := okPage("https://clinic.example/about", tt.text)

			var got []int
			for _, h := range providerHints(page) {
				if h.CountHint > 0 {
					got = append(got, h.CountHint)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("count hints = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("count hints = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestStructuredCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		block  model.StructuredBlock
		want   int
		wantOK bool
	}{
		{
			name:   "bare number",
			block:  model.StructuredBlock{"numberOfEmployees": float64(15)},
			want:   15,
			wantOK: true,
		},
		{
			name:   "numeric string",
			block:  model.StructuredBlock{"employeeCount": "42"},
			want:   42,
			wantOK: true,
		},
		{
			name:   "quantitative value object",
			block:  model.StructuredBlock{"numberOfEmployees": map[string]any{"@type": "QuantitativeValue", "value": float64(30)}},
			want:   30,
			wantOK: true,
		},
		{
			name:   "quantitative value string",
			block:  model.StructuredBlock{"staffCount": map[string]any{"value": "7"}},
			want:   7,
			wantOK: true,
		},
		{
			name:  "non-numeric string",
			block: model.StructuredBlock{"employees": "many"},
		},
		{
			name:  "out of range",
			block: model.StructuredBlock{"numberOfEmployees": float64(5000)},
		},
		{
			name:  "missing key",
			block: model.StructuredBlock{"name": "Clinic"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var key string
			for _, k := range structuredCountKeys {
				if _, ok := tt.block[k]; ok {
					key = k
					break
				}
			}
			if key == "" {
				key = "numberOfEmployees"
			}
			got, ok := structuredCount(tt.block, key)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("structuredCount() = %d, %v, want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestHasCredential(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want bool
	}{
		{line: "Jane Smith, MD", want: true},
		{line: "Dr. Alan Reyes", want: true},
		{line: "Robert Kim PsyD", want: true},
		{line: "Austin, TX", want: false},
		{line: "What to do next", want: false},
	}
	for _, tt := range tests {
		if got := hasCredential(tt.line); got != tt.want {
			t.Errorf("hasCredential(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
