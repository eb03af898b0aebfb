package distill

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/clinicscan/clinicscan/internal/model"
)

// removeSelector lists elements that never contribute visible content:
// non-visible machinery, media, form chrome, and the page frame
// (header/footer/nav/aside), which on business sites is menus and
// boilerplate repeated on every page.
const removeSelector = "script, style, noscript, svg, img, picture, video, " +
	"iframe, form, button, input, select, label, " +
	"header, footer, nav, aside"

// boilerplateHints mark regions removed by id/class substring match:
// cookie-consent walls, newsletter prompts, and similar overlays that
// would otherwise dominate the distilled text of every page.
var boilerplateHints = []string{"cookie", "gdpr", "consent", "newsletter", "subscribe", "signup", "breadcrumb"}

// Link is one outgoing anchor discovered on a page.
type Link struct {
	// URL is the absolute link target, resolved against the page URL.
	URL string

	// AnchorText is the anchor's visible text, whitespace-collapsed.
	AnchorText string
}

// Result is everything distilled from one page.
type Result struct {
	// Title is the <title> text, trimmed.
	Title string

	// VisibleText is the visible text in document order, one line per
	// text run, whitespace collapsed.
	VisibleText string

	// StructuredBlocks are the page's parsed JSON-LD blocks. Blocks
	// that fail to parse are omitted.
	StructuredBlocks []model.StructuredBlock

	// Links are the page's outgoing anchors with absolute URLs.
	Links []Link
}

// Distiller distills raw HTML into a Result.
type Distiller struct{}

// NewDistiller creates a Distiller.
func NewDistiller() *Distiller {
	return &Distiller{}
}

var collapseNewlines = regexp.MustCompile(`\n{3,}`)

// Distill processes one page. pageURL is used to resolve relative link
// targets. Malformed markup degrades to whatever text the parser could
// recover; the only error case is markup so broken no document could be
// built at all.
func (d *Distiller) Distill(pageURL, rawHTML string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	result := &Result{
		Title:            strings.TrimSpace(doc.Find("title").First().Text()),
		StructuredBlocks: extractStructuredBlocks(doc),
		Links:            extractLinks(doc, pageURL),
	}

	// Structured blocks and links are pulled before pruning: JSON-LD
	// lives in <script> tags and some themes put their menus in <nav>,
	// both of which the pruning pass deletes.
	doc.Find(removeSelector).Remove()
	for _, hint := range boilerplateHints {
		doc.Find("[id*='" + hint + "'], [class*='" + hint + "']").Remove()
	}

	result.VisibleText = visibleText(doc)
	return result, nil
}

// visibleText collects the remaining text runs in document order, one
// per line. Runs of a single character (stray punctuation, icon-font
// glyphs) are skipped.
func visibleText(doc *goquery.Document) string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			t := strings.Join(strings.Fields(n.Data), " ")
			if len(t) > 1 {
				lines = append(lines, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	doc.Find("body").Each(func(_ int, body *goquery.Selection) {
		for _, n := range body.Nodes {
			walk(n)
		}
	})
	text := strings.Join(lines, "\n")
	return collapseNewlines.ReplaceAllString(text, "\n\n")
}

// extractLinks collects anchors with resolved absolute targets.
// Non-navigational schemes (mailto, tel, javascript) and bare fragment
// links are dropped here; domain and asset filtering is the
// canonicalizer's job.
func extractLinks(doc *goquery.Document, pageURL string) []Link {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []Link
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || href == "#" {
			return
		}
		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "javascript:") ||
			strings.HasPrefix(lower, "mailto:") ||
			strings.HasPrefix(lower, "tel:") ||
			strings.HasPrefix(lower, "data:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		links = append(links, Link{
			URL:        base.ResolveReference(ref).String(),
			AnchorText: strings.Join(strings.Fields(s.Text()), " "),
		})
	})
	return links
}
