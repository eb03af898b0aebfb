package model

// Evidence source tags. Structured-data evidence always outranks evidence
// derived from visible text.
const (
	// SourceStructured marks evidence taken from an embedded
	// structured-data block (JSON-LD address fields, employee counts).
	SourceStructured = "structured"

	// SourceText marks evidence derived from visible-text patterns.
	SourceText = "text"
)

// MaxLocationCandidates caps how many location candidates a bundle holds.
// Business sites with many branch offices would otherwise flood the
// extraction payload with near-duplicate addresses.
const MaxLocationCandidates = 5

// LocationCandidate is one possible clinic location derived from a page.
type LocationCandidate struct {
	// City is the locality name, title-cased as found.
	City string `json:"city"`

	// State is the two-letter US state abbreviation, or empty when the
	// text pattern matched a city but no recognizable state.
	State string `json:"state,omitempty"`

	// Source is SourceStructured or SourceText.
	Source string `json:"source"`

	// Confidence is a coarse score in (0, 1]. Structured candidates get
	// 1.0; textual candidates get less.
	Confidence float64 `json:"confidence"`
}

// Display renders the candidate as "City, ST" (or just the city when the
// state is unknown).
func (c LocationCandidate) Display() string {
	if c.State == "" {
		return c.City
	}
	return c.City + ", " + c.State
}

// ProviderHint is one signal about clinic staffing: either a named
// provider with a clinical credential, or an explicit headcount phrase.
type ProviderHint struct {
	// Name is the provider name, or empty for pure headcount hints.
	Name string `json:"name,omitempty"`

	// Credential is the license/degree abbreviation attached to the
	// name (MD, PsyD, LCSW, ...), or empty.
	Credential string `json:"credential,omitempty"`

	// CountHint is a headcount parsed from phrases like "team of 12"
	// or from a structured-data employee count. Zero when absent.
	CountHint int `json:"count_hint,omitempty"`

	// Source is the URL of the page the hint came from.
	Source string `json:"source"`
}

// EvidenceBundle summarizes the location, staffing, and specialty signals
// found across all fetched pages.
//
// A bundle is always rebuilt in full from the current page set. It carries
// no incremental state, so re-deriving it after an expansion round cannot
// double-count anything.
type EvidenceBundle struct {
	// LocationCandidates is ordered: structured sources before textual
	// ones, then by page rank order. Deduplicated by (city, state) and
	// capped at MaxLocationCandidates.
	LocationCandidates []LocationCandidate `json:"location_candidates,omitempty"`

	// ProviderHints is deduplicated by (name, credential, source page).
	ProviderHints []ProviderHint `json:"provider_hints,omitempty"`

	// SpecialtyTokens are controlled-vocabulary specialty terms found in
	// text or structured data, lower-cased, sorted for determinism.
	SpecialtyTokens []string `json:"specialty_tokens,omitempty"`

	// ModalityTokens are treatment/modality terms found in visible text,
	// sorted for determinism. Acronym casing is preserved.
	ModalityTokens []string `json:"modality_tokens,omitempty"`
}

// ProviderCount returns the number of distinct named providers in the
// bundle, ignoring pure headcount hints.
func (e *EvidenceBundle) ProviderCount() int {
	seen := make(map[string]bool)
	for _, h := range e.ProviderHints {
		if h.Name != "" {
			seen[h.Name] = true
		}
	}
	return len(seen)
}

// MaxCountHint returns the largest explicit headcount hint, or 0.
func (e *EvidenceBundle) MaxCountHint() int {
	max := 0
	for _, h := range e.ProviderHints {
		if h.CountHint > max {
			max = h.CountHint
		}
	}
	return max
}
