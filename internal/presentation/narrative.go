package presentation

import "growthos/internal/types"

// NarrativeUnavailable is shown when an analysis has no promotion narrative
const NarrativeUnavailable = "Promotion narrative not available yet."

// NarrativeView is the display state of the promotion narrative
type NarrativeView struct {
	Available bool   `json:"available"`
	Text      string `json:"text"`
}

// Narrative returns the analysis narrative verbatim, or the placeholder when there is none
func Narrative(a *types.GapAnalysis) NarrativeView {
	if a == nil || a.PromotionNarrative == "" {
		return NarrativeView{Available: false, Text: NarrativeUnavailable}
	}
	return NarrativeView{Available: true, Text: a.PromotionNarrative}
}
