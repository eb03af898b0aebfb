package extract

import (
	"context"

	"github.com/clinicscan/clinicscan/internal/model"
)

// PageContent is one page of the extraction payload: the distilled text
// and structured blocks of a successfully fetched page.
type PageContent struct {
	URL              string                  `json:"url"`
	Text             string                  `json:"text"`
	StructuredBlocks []model.StructuredBlock `json:"structured_blocks,omitempty"`
}

// Payload is the input to an extraction run. Pages appear in crawl
// order, highest-value pages first, so extractors that truncate for
// budget reasons lose the least useful content.
type Payload struct {
	SiteURL  string               `json:"site_url"`
	Pages    []PageContent        `json:"pages"`
	Evidence model.EvidenceBundle `json:"evidence"`
}

// BuildPayload assembles the extraction payload from crawled pages and
// their evidence bundle. Failed fetches carry no content and are left
// out.
func BuildPayload(siteURL string, pages []*model.Page, evidence model.EvidenceBundle) Payload {
	payload := Payload{SiteURL: siteURL, Evidence: evidence}
	for _, p := range pages {
		if p.Status != model.FetchOK {
			continue
		}
		payload.Pages = append(payload.Pages, PageContent{
			URL:              p.URL,
			Text:             p.Text,
			StructuredBlocks: p.StructuredBlocks,
		})
	}
	return payload
}

// Extractor resolves the clinic fields from an extraction payload.
//
// Implementations must treat absent information as Unknown rather than
// guessing: the expansion loop keys off unresolved fields to decide
// whether to crawl more pages.
type Extractor interface {
	Extract(ctx context.Context, payload Payload) (model.ClinicInfo, error)
}
