package judge

import (
	"github.com/odavlstudio/verax-sub011/internal/canonical"
	"github.com/odavlstudio/verax-sub011/internal/confidence"
)

// Artifact renders the run result in canonical bytes: the decision-relevant
// record CI compares across builds. Timestamps never enter the artifact and
// per-interaction timings survive only as coarse buckets, so two runs over
// identical logical input hash identically.
func (r *RunResult) Artifact() ([]byte, error) {
	return canonical.Marshal(map[string]any{
		"runId":    r.RunID,
		"target":   r.Target,
		"mode":     r.Mode,
		"findings": r.Findings,
		"trace":    r.Trace,
		"summary":  r.summary(),
	})
}

func (r *RunResult) summary() map[string]any {
	counts := map[string]int{}
	var silent, confirmed int
	for _, f := range r.Findings {
		counts[f.Type]++
		if f.Type == TypeSilentFailure {
			silent++
			if f.Status == confidence.StatusConfirmed {
				confirmed++
			}
		}
	}
	return map[string]any{
		"interactions":     len(r.Trace),
		"findingsByType":   counts,
		"silentFailures":   silent,
		"confirmedSilent":  confirmed,
		"droppedUnproven":  r.Dropped,
		"mode":             string(r.Mode.Mode),
		"ceiling":          r.Mode.Ceiling,
	}
}

// Failed reports whether the run should fail a CI gate: any silent failure
// that survived Evidence Law enforcement. Counted from the sorted findings
// list, never from the chronological trace.
func (r *RunResult) Failed() bool {
	for _, f := range r.Findings {
		if f.Type == TypeSilentFailure && f.Status != confidence.StatusInfo {
			return true
		}
	}
	return false
}
