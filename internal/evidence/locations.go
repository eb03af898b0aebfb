package evidence

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/clinicscan/clinicscan/internal/model"
)

const (
	// maxLocationLineLen bounds the text lines scanned for "City, ST"
	// mentions. Longer lines are running prose, not address lines.
	maxLocationLineLen = 120

	structuredConfidence = 1.0
	textConfidence       = 0.6
	bareCityConfidence   = 0.4
)

// cityStatePattern matches "City, ST" or "City, StateName" in a text
// line. The city may be one to three capitalized words.
var cityStatePattern = regexp.MustCompile(
	`\b([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+){0,2})\s*,\s*([A-Z]{2}\b|[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)

// bareCityPattern matches a line that is nothing but one to three
// capitalized words, the shape of an office-name heading on a locations
// page.
var bareCityPattern = regexp.MustCompile(`^[A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+){0,2}$`)

// locationPathTokens mark pages whose URL suggests an office directory.
// Bare city headings are only trusted on such pages.
var locationPathTokens = []string{"location", "contact", "office", "directions", "visit"}

// structuredLocations reads "City, ST" candidates from the JSON-LD
// address objects of a page.
func structuredLocations(page *model.Page) []model.LocationCandidate {
	var out []model.LocationCandidate
	for _, block := range page.StructuredBlocks {
		for _, addr := range block.Addresses() {
			city := strings.TrimSpace(addr.StringField("addressLocality", "locality"))
			if city == "" || isCounty(city) {
				continue
			}
			state, _ := NormalizeState(addr.StringField("addressRegion", "region"))
			out = append(out, model.LocationCandidate{
				City:       city,
				State:      state,
				Source:     model.SourceStructured,
				Confidence: structuredConfidence,
			})
		}
	}
	return out
}

// textLocations scans the distilled visible text of a page for address
// lines. Lines that read like provider listings (credential-bearing) are
// skipped so "Jane Smith, MD" never becomes a city.
func textLocations(page *model.Page) []model.LocationCandidate {
	var out []model.LocationCandidate
	directory := onLocationPage(page.URL)

	for _, line := range strings.Split(page.Text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len(line) > maxLocationLineLen {
			continue
		}
		if hasCredential(line) {
			continue
		}

		matched := false
		for _, m := range cityStatePattern.FindAllStringSubmatch(line, -1) {
			city := strings.TrimSpace(m[1])
			if isCounty(city) {
				continue
			}
			state, ok := NormalizeState(m[2])
			if !ok {
				// "Dallas, Uptown" style: keep the city, leave the
				// state undetermined.
				state = ""
			}
			matched = true
			out = append(out, model.LocationCandidate{
				City:       city,
				State:      state,
				Source:     model.SourceText,
				Confidence: textConfidence,
			})
		}

		// On an office-directory page a heading that is just "Dallas" is
		// still a location mention.
		if !matched && directory && bareCityPattern.MatchString(line) {
			if isCounty(line) || looksLikeStateName(line) {
				continue
			}
			out = append(out, model.LocationCandidate{
				City:       line,
				Source:     model.SourceText,
				Confidence: bareCityConfidence,
			})
		}
	}
	return out
}

func isCounty(city string) bool {
	return strings.Contains(strings.ToLower(city), "county")
}

func looksLikeStateName(s string) bool {
	_, ok := stateAbbrevs[strings.ToLower(s)]
	return ok
}

func onLocationPage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, token := range locationPathTokens {
		if strings.Contains(path, token) {
			return true
		}
	}
	return false
}
