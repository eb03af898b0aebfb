package crawler

import (
	"net/url"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category weights. Higher-weight categories name page types that almost
// always carry the metadata this system hunts for; medium-weight ones
// sometimes do. Everything else scores zero and only gets fetched when
// budget is left over.
const (
	weightHigh   = 3
	weightMedium = 2
)

// categoryLexicon maps lexicon tokens to weights. Tokens are matched
// whole-word against URL path segments and anchor text, case-insensitive
// and diacritics-folded.
var categoryLexicon = map[string]int{
	// High weight: about/team/provider/service/location/contact pages.
	"about": weightHigh, "team": weightHigh, "providers": weightHigh,
	"provider": weightHigh, "physicians": weightHigh, "physician": weightHigh,
	"doctors": weightHigh, "clinicians": weightHigh, "practitioners": weightHigh,
	"staff": weightHigh, "leadership": weightHigh, "people": weightHigh,
	"services": weightHigh, "specialties": weightHigh, "specialty": weightHigh,
	"locations": weightHigh, "location": weightHigh, "contact": weightHigh,
	"directions": weightHigh, "address": weightHigh, "addresses": weightHigh,
	"hours": weightHigh, "visit": weightHigh,

	// Medium weight: treatment detail and office pages.
	"treatments": weightMedium, "treatment": weightMedium,
	"conditions": weightMedium, "condition": weightMedium,
	"office": weightMedium, "offices": weightMedium,
	"practice": weightMedium, "psychiatry": weightMedium,
	"psychology": weightMedium, "therapy": weightMedium,
	"careers": weightMedium,
}

// Candidate is one link discovered during the crawl, scored and queued
// for fetching.
type Candidate struct {
	// URL is the canonical URL of the link target.
	URL string

	// AnchorText is the visible text of the anchor that discovered it.
	AnchorText string

	// SourceDepth is the depth of the page the link was found on; the
	// candidate itself will be fetched at SourceDepth+1 (the seed is a
	// synthetic candidate with SourceDepth -1).
	SourceDepth int

	// Score is the lexicon score assigned by the Ranker.
	Score int

	// seq is the global first-seen order, assigned by the frontier.
	// It is the final tie-breaker, which makes ordering stable.
	seq int
}

// depth returns the depth the candidate's page will be fetched at.
func (c Candidate) depth() int {
	return c.SourceDepth + 1
}

// less orders candidates: higher score first, then shallower depth, then
// shorter path, then first-seen order. This ordering is the sole
// mechanism that decides which pages get fetched when the page budget is
// scarce, so every tier of it must be deterministic.
func (c Candidate) less(other Candidate) bool {
	if c.Score != other.Score {
		return c.Score > other.Score
	}
	if c.depth() != other.depth() {
		return c.depth() < other.depth()
	}
	if lp, lo := pathLen(c.URL), pathLen(other.URL); lp != lo {
		return lp < lo
	}
	return c.seq < other.seq
}

func pathLen(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return len(rawURL)
	}
	return len(u.Path)
}

// Ranker scores link candidates against the category lexicon.
type Ranker struct{}

// NewRanker creates a Ranker.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Score computes the lexicon score for a link: the maximum category
// weight matched by any token of the URL path or the anchor text.
func (r *Ranker) Score(rawURL, anchorText string) int {
	best := 0
	u, err := url.Parse(rawURL)
	if err == nil {
		for _, tok := range tokenize(u.Path) {
			if w := categoryLexicon[tok]; w > best {
				best = w
			}
		}
	}
	for _, tok := range tokenize(anchorText) {
		if w := categoryLexicon[tok]; w > best {
			best = w
		}
	}
	return best
}

// Rank scores, deduplicates, and orders a page's outgoing candidates.
// Deduplication is by URL, keeping the first occurrence. The returned
// slice is sorted with the frontier ordering minus the first-seen tier
// (sequence numbers are assigned later, by the frontier, so here the
// input order stands in for first-seen and sorting is stable).
func (r *Ranker) Rank(candidates []Candidate) []Candidate {
	seen := make(map[string]bool, len(candidates))
	ranked := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		c.Score = r.Score(c.URL, c.AnchorText)
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.depth() != b.depth() {
			return a.depth() < b.depth()
		}
		return pathLen(a.URL) < pathLen(b.URL)
	})
	return ranked
}

// foldTransformer removes diacritical marks: NFD decomposition, strip
// combining marks, NFC recomposition. "Clínica" and "Clinica" must
// tokenize identically.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// tokenize lower-cases, folds diacritics, and splits on every
// non-alphanumeric rune, which handles path separators, hyphens, and
// underscores in one pass ("/meet-our-team" -> meet, our, team).
func tokenize(s string) []string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.FieldsFunc(strings.ToLower(folded), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
