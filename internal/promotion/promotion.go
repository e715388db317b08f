// Package promotion decides whether a newly submitted analysis becomes the
// skill's displayed analysis, and maintains the capped analysis history.
package promotion

import "github.com/aureuma/skillregistry/internal/model"

// Apply prepends analysis to history (capped at MaxAnalysisHistory) and
// returns the history plus the analysis that should now be displayed, plus
// whether incoming became the new displayed analysis. A stronger-or-equal
// model always wins; a strictly weaker model leaves the previously
// displayed analysis in place.
func Apply(current *model.Analysis, history []model.Analysis, incoming model.Analysis) (displayed *model.Analysis, newHistory []model.Analysis, promoted bool) {
	newHistory = append([]model.Analysis{incoming}, history...)
	if len(newHistory) > model.MaxAnalysisHistory {
		newHistory = newHistory[:model.MaxAnalysisHistory]
	}

	sNew := incoming.Strength()
	sCur := model.StrengthUnknown
	if current != nil {
		sCur = current.Strength()
	}

	if current == nil || sNew >= sCur {
		d := incoming
		return &d, newHistory, true
	}
	return current, newHistory, false
}

// HasModelInHistory reports whether history already contains an analysis
// for the canonical model id, enforcing the one-analysis-per-model rule.
func HasModelInHistory(history []model.Analysis, canonicalModel string) bool {
	for _, a := range history {
		if a.ModelUsed == canonicalModel {
			return true
		}
	}
	return false
}
