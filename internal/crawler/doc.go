// Package crawler implements the discovery side of clinicscan: URL
// canonicalization, robots.txt gating, lexicon-based link ranking, and a
// budget-bounded breadth-first scheduler driving a concurrent page
// fetcher.
//
// # Components
//
//   - Canonicalizer: normalizes URLs into dedup keys and rejects
//     off-domain, asset, and query-storm URLs
//   - Ranker: scores same-domain links against a weighted category
//     lexicon so metadata-bearing pages are fetched first
//   - Frontier: a priority queue of link candidates with deterministic
//     ordering
//   - Gate: per-host robots.txt cache, default-allow on failure
//   - Fetcher: retrying HTTP fetch with backoff, jitter, body limits,
//     and per-host politeness caps
//   - Scheduler: the crawl state machine tying the above together
//
// # Determinism
//
// The frontier ordering (score, then depth, then path length, then
// first-seen order) is the only mechanism deciding which pages are
// fetched when the page budget is scarce, so it is strictly
// deterministic for identical input. Fetches run concurrently, but
// dispatch order always follows the frontier and completion order never
// affects page content.
//
// # State
//
// Crawl state (visited set, frontier, page counter) lives in a single
// State aggregate owned by the Scheduler. The state survives across
// expansion rounds so a re-run under a larger budget never refetches a
// page, and is discarded at the end of the run.
package crawler
