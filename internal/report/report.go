// Package report renders a judged run for humans. It consumes the
// (mode, ceiling) and per-finding (level, evidenceSufficient) pairs as
// given — policy is decided in the confidence package, never re-derived
// at render time.
package report

import (
	"fmt"
	"strings"

	"github.com/odavlstudio/verax-sub011/internal/format"
	"github.com/odavlstudio/verax-sub011/internal/judge"
)

// Render produces the full run report in the given table mode.
func Render(res *judge.RunResult, mode format.Mode) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s against %s\n", res.RunID, res.Target)
	fmt.Fprintf(&b, "Execution mode: %s (confidence ceiling %s) — %s\n\n",
		res.Mode.Mode, format.Percent(res.Mode.Ceiling), res.Mode.Reason)

	b.WriteString(findingsTable(res, mode))
	b.WriteString("\n\n")
	b.WriteString(summaryTable(res, mode))
	b.WriteString("\n")

	if res.Failed() {
		b.WriteString("\nRESULT: silent failures detected\n")
	} else {
		b.WriteString("\nRESULT: no silent failures\n")
	}
	return b.String()
}

func findingsTable(res *judge.RunResult, mode format.Mode) string {
	tb := format.NewTable(mode)
	tb.Header("Source", "Promise", "Type", "Status", "Level", "Confidence", "Evidence")
	for _, f := range res.Findings {
		tb.Row(
			fmt.Sprintf("%s:%d:%d", f.File, f.Line, f.Column),
			f.PromiseID,
			f.Type,
			string(f.Status),
			string(f.Level),
			format.Percent(f.Confidence),
			format.BoolMark(f.EvidenceSufficient),
		)
	}
	tb.RightAlign(6)
	return tb.String()
}

func summaryTable(res *judge.RunResult, mode format.Mode) string {
	counts := map[string]int{}
	for _, f := range res.Findings {
		counts[f.Type]++
	}
	tb := format.NewTable(mode)
	tb.Header("Type", "Count")
	for _, ft := range []string{judge.TypeSilentFailure, judge.TypePromiseFulfilled, judge.TypeOutOfScopeChange} {
		tb.Row(ft, counts[ft])
	}
	if res.Dropped > 0 {
		tb.Row("dropped (unproven)", res.Dropped)
	}
	tb.Footer("interactions", len(res.Trace))
	tb.RightAlign(2)
	return tb.String()
}
