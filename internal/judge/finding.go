// Package judge runs the synchronous judgment pipeline over captured
// observations: scope classification, evidence folding, confidence
// assessment, finding emission. All judgment is pure; the only run-scoped
// shared state is the execution-mode context, resolved before any
// interaction is judged and never written again.
package judge

import (
	"github.com/odavlstudio/verax-sub011/internal/canonical"
	"github.com/odavlstudio/verax-sub011/internal/confidence"
	"github.com/odavlstudio/verax-sub011/internal/evidence"
	"github.com/odavlstudio/verax-sub011/internal/scope"
)

// Finding types. A silent failure is the product claim; the other two keep
// the run honest about what else was seen.
const (
	TypeSilentFailure    = "silent-failure"
	TypePromiseFulfilled = "promise-fulfilled"
	TypeOutOfScopeChange = "out-of-scope-change"
)

// Finding is one classified claim about one promise/interaction pair.
type Finding struct {
	ID               string `json:"id"`
	PromiseID        string `json:"promiseId"`
	InteractionIndex int    `json:"interactionIndex"`
	File             string `json:"file"`
	Line             int    `json:"line"`
	Column           int    `json:"column"`
	Type             string `json:"type"`
	Severity         string `json:"severity"`

	Status             confidence.Status `json:"status"`
	Level              confidence.Level  `json:"level"`
	Confidence         float64           `json:"confidence"`
	EvidenceSufficient bool              `json:"evidenceSufficient"`

	Signals     evidence.Signals   `json:"signals"`
	Scope       scope.Result       `json:"scope"`
	Description string             `json:"description,omitempty"`
}

func findingID(promiseID string, interactionIndex int, findingType string) string {
	return canonical.ContentID("fnd", map[string]any{
		"promiseId":        promiseID,
		"interactionIndex": interactionIndex,
		"type":             findingType,
	})
}

func severityFor(findingType string, level confidence.Level) string {
	if findingType != TypeSilentFailure {
		return "info"
	}
	switch level {
	case confidence.LevelHigh:
		return "high"
	case confidence.LevelMedium:
		return "medium"
	default:
		return "low"
	}
}
