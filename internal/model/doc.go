// Package model defines the core data structures shared across clinicscan.
//
// The central types are:
//
//   - Page: one fetched (or failed) page of a clinic website
//   - CrawlBudget: page and depth ceilings bounding one crawl round
//   - EvidenceBundle: location/provider/specialty signals derived from pages
//   - ClinicInfo: the four extracted fields, each tagged Known or Unknown
//   - ScanReport: the per-site aggregate produced by a full run
//
// Design decision: All types in this package are plain data with no
// behavior beyond small constructors and formatting helpers. Components
// that produce or consume them live in their own packages, which keeps
// import direction strictly inward (everything imports model, model
// imports nothing of ours).
package model
