package model

import "fmt"

// CrawlBudget bounds a single crawl round with hard page and depth
// ceilings. Budgets only ever grow across expansion rounds; the scheduler
// never exceeds either ceiling within a round.
type CrawlBudget struct {
	// MaxPages is the maximum number of pages fetched across the whole
	// crawl lifetime (the visited set is shared between rounds, so this
	// is cumulative, not per-round).
	MaxPages int

	// MaxDepth is the maximum link distance from the seed. The seed
	// itself is depth 0.
	MaxDepth int
}

// String formats the budget for log output.
func (b CrawlBudget) String() string {
	return fmt.Sprintf("pages=%d depth=%d", b.MaxPages, b.MaxDepth)
}

// AtLeast reports whether this budget is greater than or equal to other
// in both dimensions. Expansion rounds must satisfy next.AtLeast(prev).
func (b CrawlBudget) AtLeast(other CrawlBudget) bool {
	return b.MaxPages >= other.MaxPages && b.MaxDepth >= other.MaxDepth
}
