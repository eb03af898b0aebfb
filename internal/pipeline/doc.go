// Package pipeline orchestrates a site scan as a sequence of steps.
//
// Each step receives the accumulating scan report and writes its results
// into it: the scan step runs the crawl-extract-expand control loop, and
// the history step persists the finished report. Batch scanning of many
// sites runs one pipeline per site with errgroup concurrency control.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running scans
package pipeline
