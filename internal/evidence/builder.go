package evidence

import (
	"sort"
	"strings"

	"github.com/clinicscan/clinicscan/internal/model"
)

// Build derives an evidence bundle from a set of crawled pages.
//
// Build is deterministic: the same pages in the same order always
// produce an identical bundle. Callers re-run it over the full page set
// after each crawl round instead of merging bundles incrementally.
//
// Location candidates are ordered structured-before-text, then by page
// order, deduplicated by (city, state), and capped at
// model.MaxLocationCandidates. Specialty and modality tokens are
// deduplicated and sorted.
func Build(pages []*model.Page) model.EvidenceBundle {
	var bundle model.EvidenceBundle

	var structured, textual []model.LocationCandidate
	for _, page := range pages {
		if page.Status != model.FetchOK {
			continue
		}
		structured = append(structured, structuredLocations(page)...)
		textual = append(textual, textLocations(page)...)
		bundle.ProviderHints = append(bundle.ProviderHints, providerHints(page)...)
		bundle.SpecialtyTokens = append(bundle.SpecialtyTokens, specialtyTokens(page)...)
		bundle.ModalityTokens = append(bundle.ModalityTokens, modalityTokens(page)...)
	}

	bundle.LocationCandidates = dedupeLocations(append(structured, textual...))
	bundle.ProviderHints = dedupeHints(bundle.ProviderHints)
	bundle.SpecialtyTokens = sortedSet(bundle.SpecialtyTokens)
	bundle.ModalityTokens = sortedSet(bundle.ModalityTokens)
	return bundle
}

// dedupeLocations keeps the first candidate for each (city, state) pair,
// comparing cities case-insensitively, and caps the result. A candidate
// with a known state also claims the stateless form of the same city, so
// "Dallas" from text never duplicates "Dallas, TX" from structured data.
func dedupeLocations(candidates []model.LocationCandidate) []model.LocationCandidate {
	seen := make(map[string]bool, len(candidates))
	var out []model.LocationCandidate
	for _, c := range candidates {
		cityKey := strings.ToLower(c.City)
		key := cityKey + "|" + c.State
		if seen[key] || (c.State == "" && seenState(seen, cityKey)) {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if len(out) == model.MaxLocationCandidates {
			break
		}
	}
	return out
}

// seenState reports whether any candidate for the city was already kept,
// with or without a state.
func seenState(seen map[string]bool, cityKey string) bool {
	for key := range seen {
		if strings.HasPrefix(key, cityKey+"|") {
			return true
		}
	}
	return false
}

// dedupeHints keeps the first hint per identity. Named hints are
// identified by (name, credential, source); headcount hints by
// (count, source).
func dedupeHints(hints []model.ProviderHint) []model.ProviderHint {
	seen := make(map[model.ProviderHint]bool, len(hints))
	var out []model.ProviderHint
	for _, h := range hints {
		id := h
		id.Name = strings.ToLower(id.Name)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, h)
	}
	return out
}

func sortedSet(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
