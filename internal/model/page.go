package model

// FetchStatus describes the outcome of fetching a single page.
type FetchStatus int

const (
	// FetchOK means the page was retrieved with a 2xx response and
	// its body was distilled successfully.
	FetchOK FetchStatus = iota

	// FetchFailed means the fetch gave up: retries were exhausted on a
	// transient error, or the failure was permanent (DNS, TLS, non-2xx).
	FetchFailed
)

// String returns a human-readable name for the status.
func (s FetchStatus) String() string {
	switch s {
	case FetchOK:
		return "ok"
	case FetchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Page represents one crawled page of a clinic website.
//
// A Page is created exactly once per canonical URL and is immutable after
// creation. Failed fetches still produce a Page (with FetchFailed and no
// text) so the report shows what was attempted.
type Page struct {
	// URL is the canonical URL of the page.
	URL string `json:"url"`

	// Depth is the link distance from the seed page. The seed is depth 0.
	Depth int `json:"depth"`

	// Status records whether the fetch succeeded.
	Status FetchStatus `json:"status"`

	// StatusCode is the HTTP response status code, or 0 if the request
	// never completed.
	StatusCode int `json:"status_code,omitempty"`

	// Title is the page title from the <title> tag, if any.
	Title string `json:"title,omitempty"`

	// Text is the distilled visible text of the page. Empty for failed
	// fetches and non-HTML responses.
	Text string `json:"text,omitempty"`

	// StructuredBlocks holds embedded structured-data blocks (JSON-LD)
	// found on the page, parsed into generic maps. A page with no blocks,
	// or whose blocks failed to parse, has an empty slice.
	StructuredBlocks []StructuredBlock `json:"structured_blocks,omitempty"`

	// FetchError is the final error message for a failed fetch.
	FetchError string `json:"fetch_error,omitempty"`
}

// StructuredBlock is one embedded structured-data object from a page,
// typically a JSON-LD script body. It is parsed as data and passed through
// verbatim; nothing in the crawl path depends on its contents.
type StructuredBlock map[string]any

// StringField returns the first non-empty string value among the given
// keys. List values contribute their first string element. This mirrors
// how JSON-LD publishers inconsistently use string-or-list for the same
// property.
func (b StructuredBlock) StringField(keys ...string) string {
	for _, key := range keys {
		switch v := b[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// StringValues collects every string value found under the given keys,
// flattening list values.
func (b StructuredBlock) StringValues(keys ...string) []string {
	var out []string
	for _, key := range keys {
		switch v := b[key].(type) {
		case string:
			if v != "" {
				out = append(out, v)
			}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// Addresses returns the address sub-objects of the block. JSON-LD allows
// "address" to be a single object or a list of objects.
func (b StructuredBlock) Addresses() []StructuredBlock {
	var out []StructuredBlock
	switch v := b["address"].(type) {
	case map[string]any:
		out = append(out, StructuredBlock(v))
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, StructuredBlock(m))
			}
		}
	}
	return out
}
