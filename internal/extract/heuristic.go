package extract

import (
	"context"
	"strings"

	"github.com/clinicscan/clinicscan/internal/model"
)

// HeuristicExtractor resolves the clinic fields directly from the
// evidence bundle, with no network calls.
//
// Design decision: the heuristic works only from the pre-digested
// evidence, never from raw page text. Evidence building is deterministic
// over the page set, so heuristic extraction is too, which makes the
// expansion loop's "same pages, same answer" property hold end to end.
type HeuristicExtractor struct{}

// NewHeuristicExtractor returns an offline extractor.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

// Extract implements the Extractor interface.
func (e *HeuristicExtractor) Extract(_ context.Context, payload Payload) (model.ClinicInfo, error) {
	ev := &payload.Evidence
	return model.ClinicInfo{
		Specialty:  joinField(ev.SpecialtyTokens),
		Modalities: joinField(ev.ModalityTokens),
		Location:   locationField(ev.LocationCandidates),
		ClinicSize: sizeField(ev),
	}, nil
}

func joinField(tokens []string) model.FieldValue {
	if len(tokens) == 0 {
		return model.Unknown()
	}
	return model.Known(strings.Join(tokens, ", "))
}

// locationField joins candidate displays with "; ". Candidates arrive
// already deduplicated, ordered, and capped by the evidence builder.
func locationField(candidates []model.LocationCandidate) model.FieldValue {
	if len(candidates) == 0 {
		return model.Unknown()
	}
	displays := make([]string, 0, len(candidates))
	for _, c := range candidates {
		displays = append(displays, c.Display())
	}
	return model.Known(strings.Join(displays, "; "))
}

// sizeField derives the practice size from the larger of the explicit
// headcount hints and the named-provider count. Both undercount in
// different ways (marketing copy rounds down, team pages list only
// leadership), so the maximum is the better estimate.
func sizeField(ev *model.EvidenceBundle) model.FieldValue {
	count := ev.MaxCountHint()
	if n := ev.ProviderCount(); n > count {
		count = n
	}
	estimate := model.SizeEstimate{ExactCount: count}
	return estimate.Field()
}
