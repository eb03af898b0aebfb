package crawler

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// assetExtensions are file extensions that never carry clinic metadata.
// URLs ending in one of these are filtered before they reach the frontier.
// PDFs and office documents are excluded too: distilling them is a
// different problem than HTML and out of scope here.
var assetExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".zip": true, ".rar": true, ".gz": true, ".tar": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".bmp": true,
	".mp4": true, ".mov": true, ".avi": true, ".mp3": true, ".wav": true,
	".css": true, ".js": true, ".json": true, ".xml": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
}

// trackingParams are query parameters that identify campaigns, not
// content. They are stripped so the same page reached from different
// campaigns deduplicates to one canonical URL.
var trackingParams = map[string]bool{
	"gclid": true, "fbclid": true, "msclkid": true, "dclid": true,
	"mc_cid": true, "mc_eid": true, "igshid": true, "ref": true,
	"source": true,
}

// calendarParams indicate paginated calendar/event views. Event plugins
// generate an unbounded URL space (one URL per month, forever); a single
// one of these parameters marks the whole URL as a query storm.
var calendarParams = map[string]bool{
	"ical": true, "eventdate": true, "eventdisplay": true, "month": true,
	"tribe-bar-date": true, "outlook-ical": true, "paged": true,
	"replytocom": true,
}

// maxQueryParams bounds how many distinct query parameters a crawlable
// URL may carry. Faceted listings beyond this are storm URLs.
const maxQueryParams = 4

// Canonicalizer normalizes raw URLs into canonical dedup keys and
// rejects URLs the crawler must never visit.
//
// Canonicalization is a pure function: canonicalizing an already
// canonical URL returns it unchanged.
type Canonicalizer struct {
	// host is the seed host, lower-cased, with any leading "www."
	// stripped. Domain comparison is www-insensitive so that
	// example.com and www.example.com crawl as one site.
	host string
}

// NormalizeSeed prepares a user-supplied seed URL: trims whitespace and
// defaults the scheme to https when missing (people paste bare domains).
func NormalizeSeed(raw string) (string, error) {
	seed := strings.TrimSpace(raw)
	if seed == "" {
		return "", fmt.Errorf("empty seed URL")
	}
	if !strings.HasPrefix(seed, "http://") && !strings.HasPrefix(seed, "https://") {
		seed = "https://" + seed
	}
	u, err := url.Parse(seed)
	if err != nil {
		return "", fmt.Errorf("invalid seed URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("seed URL %q has no host", raw)
	}
	return seed, nil
}

// NewCanonicalizer creates a Canonicalizer rooted at the seed URL's domain.
func NewCanonicalizer(seedURL string) (*Canonicalizer, error) {
	u, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL: %w", err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, fmt.Errorf("seed URL %q has no host", seedURL)
	}
	return &Canonicalizer{host: strings.TrimPrefix(host, "www.")}, nil
}

// Host returns the seed domain (lower-cased, without "www.").
func (c *Canonicalizer) Host() string {
	return c.host
}

// Canonicalize normalizes a raw URL. The second return value is false
// when the URL is filtered: non-HTTP(S) scheme, off-domain host, asset
// extension, or query-storm pattern. Filtering is not an error; it is
// the normal fate of most links on a page.
func (c *Canonicalizer) Canonicalize(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if strings.TrimPrefix(host, "www.") != c.host {
		return "", false
	}

	if assetExtensions[strings.ToLower(path.Ext(u.Path))] {
		return "", false
	}

	query, ok := c.cleanQuery(u.Query())
	if !ok {
		return "", false
	}

	rebuilt := &url.URL{
		Scheme:   scheme,
		Host:     strings.ToLower(u.Host),
		Path:     normalizePath(u.Path),
		RawQuery: query,
	}
	return rebuilt.String(), true
}

// cleanQuery strips tracking parameters and rejects storm queries.
// The surviving parameters are re-encoded in sorted key order so query
// ordering never defeats deduplication.
func (c *Canonicalizer) cleanQuery(values url.Values) (string, bool) {
	for key, vals := range values {
		lower := strings.ToLower(key)
		if calendarParams[lower] {
			return "", false
		}
		// A repeated parameter is a faceted/storm URL.
		if len(vals) > 1 {
			return "", false
		}
		if trackingParams[lower] || strings.HasPrefix(lower, "utm_") {
			delete(values, key)
		}
	}
	if len(values) > maxQueryParams {
		return "", false
	}
	return values.Encode(), true
}

// normalizePath strips the trailing slash everywhere except at the root
// and collapses an empty path to "/".
func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	return strings.TrimSuffix(p, "/")
}
