package evidence

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/clinicscan/clinicscan/internal/model"
)

// credentialTokens lists the clinical credentials recognized after a
// personal name. Longer tokens are listed before their prefixes so the
// alternation matches greedily (PA-C before PA, LPCC before LPC).
var credentialTokens = []string{
	"MBChB", "PMHNP", "LICSW", "LPCC", "LCPC", "LMHC", "LCSW", "LMSW",
	"LMFT", "APRN", "ARNP", "BCBA", "FRCS", "FRCP", "FACC", "MBBS",
	"PsyD", "PA-C", "PhD", "DNP", "FNP", "CNM", "MSW", "MFT", "LPC",
	"LBA", "BSN", "MSN", "EdD", "MD", "DO", "NP", "PA", "RN",
}

var (
	// drNamePattern matches an honorific-led provider name such as
	// "Dr. Jane Smith" with one to three capitalized name words.
	drNamePattern = regexp.MustCompile(`\bDr\.?\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,2}\b`)

	// nameDegreePattern matches "Jane Smith, PsyD" style listings where a
	// name is followed by a recognized credential.
	nameDegreePattern = regexp.MustCompile(
		`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2})\s*,\s*(` + strings.Join(credentialTokens, "|") + `)\b`)

	// credentialPattern is used to exclude provider listings from the
	// location text scan.
	credentialPattern = regexp.MustCompile(`\b(` + strings.Join(credentialTokens, "|") + `)\b`)

	teamOfPattern    = regexp.MustCompile(`(?i)\bteam of (\d{1,3})\b`)
	headcountPattern = regexp.MustCompile(`(?i)\b(\d{1,3})\s*\+?\s*(providers|clinicians|physicians|doctors|therapists|practitioners)\b`)
)

// structuredCountKeys are the JSON-LD properties read as an employee or
// staff headcount.
var structuredCountKeys = []string{"numberOfEmployees", "employeeCount", "employees", "staffCount"}

const (
	minHeadcount = 1
	maxHeadcount = 500
)

// providerHints scans a page for named providers and headcount phrases.
func providerHints(page *model.Page) []model.ProviderHint {
	var hints []model.ProviderHint

	for _, block := range page.StructuredBlocks {
		for _, key := range structuredCountKeys {
			if n, ok := structuredCount(block, key); ok {
				hints = append(hints, model.ProviderHint{
					CountHint: n,
					Source:    page.URL,
				})
			}
		}
	}

	for _, m := range drNamePattern.FindAllString(page.Text, -1) {
		name := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(m, "Dr."), "Dr"))
		hints = append(hints, model.ProviderHint{
			Name:       name,
			Credential: "Dr",
			Source:     page.URL,
		})
	}
	for _, m := range nameDegreePattern.FindAllStringSubmatch(page.Text, -1) {
		hints = append(hints, model.ProviderHint{
			Name:       strings.TrimSpace(m[1]),
			Credential: m[2],
			Source:     page.URL,
		})
	}

	for _, m := range teamOfPattern.FindAllStringSubmatch(page.Text, -1) {
		if n, ok := parseHeadcount(m[1]); ok {
			hints = append(hints, model.ProviderHint{CountHint: n, Source: page.URL})
		}
	}
	for _, m := range headcountPattern.FindAllStringSubmatch(page.Text, -1) {
		if n, ok := parseHeadcount(m[1]); ok {
			hints = append(hints, model.ProviderHint{CountHint: n, Source: page.URL})
		}
	}
	return hints
}

// structuredCount reads a headcount property from a JSON-LD block. The
// value may be a bare number, a numeric string, or a QuantitativeValue
// object with a "value" property.
func structuredCount(block model.StructuredBlock, key string) (int, bool) {
	raw, ok := block[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return validHeadcount(int(v))
	case string:
		return parseHeadcount(v)
	case map[string]any:
		if inner, ok := v["value"]; ok {
			switch n := inner.(type) {
			case float64:
				return validHeadcount(int(n))
			case string:
				return parseHeadcount(n)
			}
		}
	}
	return 0, false
}

func parseHeadcount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return validHeadcount(n)
}

func validHeadcount(n int) (int, bool) {
	if n < minHeadcount || n > maxHeadcount {
		return 0, false
	}
	return n, true
}

// hasCredential reports whether a text line mentions a clinical
// credential or honorific, which marks it as a provider listing rather
// than an address line.
func hasCredential(line string) bool {
	return credentialPattern.MatchString(line) || drNamePattern.MatchString(line)
}
