package distill

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/clinicscan/clinicscan/internal/model"
)

// extractStructuredBlocks parses every JSON-LD script on the page.
// Publishers embed single objects, arrays of objects, and @graph
// wrappers; all three shapes are flattened into a list of blocks.
// A block that fails to parse is dropped: structured data is a bonus
// signal, never a reason to fail a page.
func extractStructuredBlocks(doc *goquery.Document) []model.StructuredBlock {
	var blocks []model.StructuredBlock
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		blocks = append(blocks, parseJSONLD(raw)...)
	})
	return blocks
}

// parseJSONLD decodes one script body into zero or more blocks.
func parseJSONLD(raw string) []model.StructuredBlock {
	var top any
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return nil
	}
	return flattenJSONLD(top)
}

// flattenJSONLD normalizes the object/array/@graph shapes.
func flattenJSONLD(v any) []model.StructuredBlock {
	switch t := v.(type) {
	case map[string]any:
		if graph, ok := t["@graph"].([]any); ok {
			var blocks []model.StructuredBlock
			for _, item := range graph {
				blocks = append(blocks, flattenJSONLD(item)...)
			}
			return blocks
		}
		return []model.StructuredBlock{model.StructuredBlock(t)}
	case []any:
		var blocks []model.StructuredBlock
		for _, item := range t {
			blocks = append(blocks, flattenJSONLD(item)...)
		}
		return blocks
	default:
		return nil
	}
}
