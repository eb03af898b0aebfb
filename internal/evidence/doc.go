// Package evidence derives extraction evidence from distilled pages:
// location candidates, provider/headcount hints, and specialty and
// modality tokens.
//
// The builder is a pure function of the page set. It is re-run in full
// after every crawl round rather than updated incrementally, so the same
// pages always produce byte-identical bundles and nothing is ever
// double-counted across expansion rounds.
//
// Each pattern extractor in this package is a stateless function from
// text (or a structured block) to candidates, which keeps every pattern
// independently testable with literal string fixtures.
package evidence
