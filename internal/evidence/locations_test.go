package evidence

import (
	"testing"

	"github.com/clinicscan/clinicscan/internal/model"
)

func okPage(url, text string, blocks ...model.StructuredBlock) *model.Page {
	return &model.Page{
		URL:              url,
		Status:           model.FetchOK,
		Text:             text,
		StructuredBlocks: blocks,
	}
}

func TestStructuredLocations(t *testing.T) {
	t.Parallel()

	t.Run("address object", func(t *testing.T) {
		t.Parallel()
		page := okPage("https://clinic.example/", "",
			model.StructuredBlock{
				"@type": "MedicalClinic",
				"address": map[string]any{
					"addressLocality": "Austin",
					"addressRegion":   "TX",
				},
			})

		got := structuredLocations(page)
		if len(got) != 1 {
			t.Fatalf("structuredLocations() = %d candidates, want 1", len(got))
		}
		c := got[0]
		if c.City != "Austin" || c.State != "TX" {
			t.Errorf("candidate = %s, %s, want Austin, TX", c.City, c.State)
		}
		if c.Source != model.SourceStructured {
			t.Errorf("Source = %q, want %q", c.Source, model.SourceStructured)
		}
		if c.Confidence != structuredConfidence {
			t.Errorf("Confidence = %v, want %v", c.Confidence, structuredConfidence)
		}
	})

	t.Run("state name normalized to abbreviation", func(t *testing.T) {
		t.Parallel()
		page := okPage("https://clinic.example/", "",
			model.StructuredBlock{
				"address": map[string]any{
					"addressLocality": "Portland",
					"addressRegion":   "Oregon",
				},
			})

		got := structuredLocations(page)
		if len(got) != 1 || got[0].State != "OR" {
			t.Fatalf("structuredLocations() = %+v, want Portland, OR", got)
		}
	})

	t.Run("address list", func(t *testing.T) {
		t.Parallel()
		page := okPage("https://clinic.example/", "",
			model.StructuredBlock{
				"address": []any{
					map[string]any{"addressLocality": "Dallas", "addressRegion": "TX"},
					map[string]any{"addressLocality": "Plano", "addressRegion": "TX"},
				},
			})

		got := structuredLocations(page)
		if len(got) != 2 {
			t.Fatalf("structuredLocations() = %d candidates, want 2", len(got))
		}
	})

	t.Run("county and empty locality skipped", func(t *testing.T) {
		t.Parallel()
		page := okPage("https://clinic.example/", "",
			model.StructuredBlock{
				"address": []any{
					map[string]any{"addressLocality": "Travis County", "addressRegion": "TX"},
					map[string]any{"addressRegion": "TX"},
				},
			})

		if got := structuredLocations(page); len(got) != 0 {
			t.Errorf("structuredLocations() = %+v, want none", got)
		}
	})

	t.Run("unrecognized region keeps city only", func(t *testing.T) {
		t.Parallel()
		page := okPage("https://clinic.example/", "",
			model.StructuredBlock{
				"address": map[string]any{
					"addressLocality": "Toronto",
					"addressRegion":   "Ontario",
				},
			})

		got := structuredLocations(page)
		if len(got) != 1 || got[0].City != "Toronto" || got[0].State != "" {
			t.Fatalf("structuredLocations() = %+v, want Toronto with empty state", got)
		}
	})
}

func TestTextLocations(t *testing.T) {
	t.Parallel()

	t.Run("city state line", func(t *testing.T) {
		t.Parallel()
		page := okPage("https://clinic.example/about", "Our main office\nSan Antonio, TX 78201\nCall us today")

		got := textLocations(page)
		if len(got) != 1 {
			t.Fatalf("textLocations() = %d candidates, want 1", len(got))
		}
		c := got[0]
		if c.City != "San Antonio" || c.State != "TX" {
			t.Errorf("candidate = %s, %s, want San Antonio, TX", c.City, c.State)
		}
		if c.Source != model.SourceText || c.Confidence != textConfidence {
			t.Errorf("candidate metadata = %q/%v, want %q/%v", c.Source, c.Confidence, model.SourceText, textConfidence)
		}
	})

	t.Run("full state name", func(t *testing.T) {
		t.Parallel()
		page := okPage("https://clinic.example/about", "Serving families in Columbus, Ohio since 1998")

		got := textLocations(page)
		if len(got) != 1 || got[0].City != "Columbus" || got[0].State != "OH" {
			t.Fatalf("textLocations() = %+v, want Columbus, OH", got)
		}
	})

	t.Run("credential line never becomes a city", func(t *testing.T) {
		t.Parallel()
		page := okPage("https://clinic.example/team", "Jane Smith, MD\nRobert Jones, LCSW")

		if got := textLocations(page); len(got) != 0 {
			t.Errorf("textLocations() = %+v, want none from provider listings", got)
		}
	})

	t.Run("county excluded", func(t *testing.T) {
		t.Parallel()
		page := okPage("https://clinic.example/about", "Serving Orange County, CA")

		if got := textLocations(page); len(got) != 0 {
			t.Errorf("textLocations() = %+v, want county mention excluded", got)
		}
	})

	t.Run("bare city heading on directory page", func(t *testing.T) {
		t.Parallel()
		page := okPage("https://clinic.example/locations", "Our Offices\nDallas\nFort Worth\n123 Main Street")

		got := textLocations(page)
		cities := make(map[string]float64)
		for _, c := range got {
			cities[c.City] = c.Confidence
		}
		if conf, ok := cities["Dallas"]; !ok || conf != bareCityConfidence {
			t.Errorf("Dallas not captured as bare city heading: %+v", got)
		}
		if _, ok := cities["Fort Worth"]; !ok {
			t.Errorf("Fort Worth not captured: %+v", got)
		}
	})

	t.Run("bare city ignored off directory pages", func(t *testing.T) {
		t.Parallel()
		page := okPage("https://clinic.example/blog/post", "Dallas\nGreat city for a walk")

		if got := textLocations(page); len(got) != 0 {
			t.Errorf("textLocations() = %+v, want no bare-city candidates on a blog page", got)
		}
	})

	t.Run("bare state name not a city", func(t *testing.T) {
		t.Parallel()
		page := okPage("https://clinic.example/locations", "Texas\nOur flagship region")

		if got := textLocations(page); len(got) != 0 {
			t.Errorf("textLocations() = %+v, want state heading excluded", got)
		}
	})

	t.Run("long prose lines skipped", func(t *testing.T) {
		t.Parallel()
		long := "We are proud to serve patients who travel to see us from every direction, including many who drive in weekly from Houston, TX and the surrounding metro area for specialized treatment programs"
		page := okPage("https://clinic.example/about", long)

		if got := textLocations(page); len(got) != 0 {
			t.Errorf("textLocations() = %+v, want long lines ignored", got)
		}
	})
}

func TestNormalizeState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "TX", want: "TX", wantOK: true},
		{in: "tx", want: "TX", wantOK: true},
		{in: "Texas", want: "TX", wantOK: true},
		{in: "new york", want: "NY", wantOK: true},
		{in: "District of Columbia", want: "DC", wantOK: true},
		{in: "Puerto Rico", want: "PR", wantOK: true},
		{in: " CA ", want: "CA", wantOK: true},
		{in: "Ontario", want: "", wantOK: false},
		{in: "ZZ", want: "", wantOK: false},
		{in: "", want: "", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := NormalizeState(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeState(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
