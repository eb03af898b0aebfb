package model

import "time"

// RoundSummary records one crawl round: the budget it ran under, how the
// scheduler terminated, and the cumulative page count afterwards.
type RoundSummary struct {
	// Budget is the budget the round ran under.
	Budget CrawlBudget `json:"budget"`

	// Terminal names the scheduler's terminal condition
	// ("pages_exhausted", "depth_exhausted", "frontier_empty").
	Terminal string `json:"terminal"`

	// PagesFetched is the cumulative fetch count after the round.
	PagesFetched int `json:"pages_fetched"`

	// NewPages is how many pages this round added.
	NewPages int `json:"new_pages"`
}

// ScanReport is the per-site aggregate produced by one full run: the
// pages that were crawled, the evidence derived from them, and the
// extraction result.
//
// Design decision: Every stage of a scan writes into the same
// accumulating report rather than returning partial results. Failures
// are recorded on the report so a batch of sites always yields one
// report per site, failed or not.
type ScanReport struct {
	// SiteURL is the seed URL the scan started from, as given.
	SiteURL string `json:"site_url"`

	// DateScanned is when the scan started.
	DateScanned time.Time `json:"date_scanned"`

	// Elapsed is the total wall-clock scan duration.
	Elapsed time.Duration `json:"elapsed_ns"`

	// Pages holds every page record, in dispatch order.
	Pages []*Page `json:"pages"`

	// Evidence is the bundle derived from Pages after the final round.
	Evidence *EvidenceBundle `json:"evidence,omitempty"`

	// Clinic is the final extraction result.
	Clinic ClinicInfo `json:"clinic_info"`

	// Rounds summarizes each crawl round in order.
	Rounds []RoundSummary `json:"rounds,omitempty"`

	// Failed is true when the site could not be scanned at all, i.e.
	// the seed page itself was unreachable.
	Failed bool `json:"failed,omitempty"`

	// ErrorMessage carries the site-level failure, if any.
	ErrorMessage string `json:"error,omitempty"`
}

// NewScanReport creates a report for the given seed URL with the scan
// clock started.
func NewScanReport(siteURL string) *ScanReport {
	return &ScanReport{
		SiteURL:     siteURL,
		DateScanned: time.Now(),
	}
}

// SucceededPages returns only the pages that fetched successfully, in
// dispatch order.
func (r *ScanReport) SucceededPages() []*Page {
	pages := make([]*Page, 0, len(r.Pages))
	for _, p := range r.Pages {
		if p.Status == FetchOK {
			pages = append(pages, p)
		}
	}
	return pages
}

// PagesCrawled returns the total number of fetch attempts recorded.
func (r *ScanReport) PagesCrawled() int {
	return len(r.Pages)
}
