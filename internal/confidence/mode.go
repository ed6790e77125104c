// Package confidence turns an evidence bundle into a bounded assessment and
// enforces the Evidence Law: no finding is CONFIRMED without substantive
// evidence, and no score exceeds what the run's execution mode can support.
package confidence

// Mode says how much context a run had.
type Mode string

const (
	// ModeFullProject: local source was resolvable and the target URL was
	// reachable, so observed behavior can be corroborated against the
	// declared promises.
	ModeFullProject Mode = "FULL_PROJECT"

	// ModeWebScanLimited: URL only. Observations stand alone, so overall
	// confidence is capped below certainty.
	ModeWebScanLimited Mode = "WEB_SCAN_LIMITED"
)

// Ceilings per mode. LimitedModeCeiling reflects the reduced ability to
// corroborate observations without source access.
const (
	FullProjectCeiling = 1.0
	LimitedModeCeiling = 0.70
)

// ModeContext is computed exactly once at run start and never mutated.
// Every confidence assessment in the run reads it; its absence at
// assessment time is a broken run setup, not an expected condition.
type ModeContext struct {
	Mode        Mode    `json:"mode"`
	Ceiling     float64 `json:"ceiling"`
	Reason      string  `json:"reason"`
	Explanation string  `json:"explanation"`
}

// ResolveMode fixes the execution mode for a run from its two inputs.
func ResolveMode(sourceResolvable, urlReachable bool) ModeContext {
	if sourceResolvable && urlReachable {
		return ModeContext{
			Mode:        ModeFullProject,
			Ceiling:     FullProjectCeiling,
			Reason:      "source path resolvable and target URL reachable",
			Explanation: "observed behavior can be corroborated against declared promises; full confidence range available",
		}
	}
	reason := "target URL reachable but no resolvable source path"
	if !urlReachable {
		reason = "target URL not reachable at run start"
	}
	return ModeContext{
		Mode:        ModeWebScanLimited,
		Ceiling:     LimitedModeCeiling,
		Reason:      reason,
		Explanation: "observations cannot be corroborated against source; confidence capped",
	}
}
