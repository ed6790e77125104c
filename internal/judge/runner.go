package judge

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/odavlstudio/verax-sub011/internal/capture"
	"github.com/odavlstudio/verax-sub011/internal/confidence"
	"github.com/odavlstudio/verax-sub011/internal/evidence"
	"github.com/odavlstudio/verax-sub011/internal/promise"
	"github.com/odavlstudio/verax-sub011/internal/scope"
)

// TraceEntry is one chronological line of the run's interaction log.
// The trace stays in literal interaction order; it never feeds a finding
// count or exit decision.
type TraceEntry struct {
	Index     int    `json:"index"`
	PromiseID string `json:"promiseId"`
	Selector  string `json:"selector"`
	Verdict   string `json:"verdict"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// RunResult aggregates one run's findings, trace, and mode context.
type RunResult struct {
	RunID    string                 `json:"runId"`
	Target   string                 `json:"target"`
	Mode     confidence.ModeContext `json:"mode"`
	Findings []Finding              `json:"findings"`
	Trace    []TraceEntry           `json:"trace"`
	Dropped  int                    `json:"dropped"`
}

// Runner judges observations against their promises. Judgment of one
// interaction is pure and isolated, so observations are judged with
// bounded parallelism; only the trace keeps chronological order.
type Runner struct {
	Mode     *confidence.ModeContext
	Policy   confidence.DowngradePolicy
	Parallel int
	Log      *slog.Logger
}

// Judge runs the pipeline over every observation. A missing mode context
// is the one hard error: it means the run setup is broken.
func (r *Runner) Judge(ctx context.Context, runID, target string, promises map[string]promise.Promise, observations []capture.Observation) (*RunResult, error) {
	if r.Mode == nil {
		return nil, confidence.ErrNoModeContext
	}
	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	type slot struct {
		finding Finding
		dropped bool
	}
	slots := make([]slot, len(observations))

	g, _ := errgroup.WithContext(ctx)
	limit := r.Parallel
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i := range observations {
		g.Go(func() error {
			f, dropped, err := r.judgeOne(log, promises, observations[i])
			if err != nil {
				return fmt.Errorf("judge interaction %d: %w", i, err)
			}
			slots[i] = slot{finding: f, dropped: dropped}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &RunResult{RunID: runID, Target: target, Mode: *r.Mode}
	for i, s := range slots {
		obs := observations[i]
		verdict := s.finding.Type
		if s.dropped {
			verdict = "dropped"
			res.Dropped++
		} else {
			res.Findings = append(res.Findings, s.finding)
		}
		res.Trace = append(res.Trace, TraceEntry{
			Index:     obs.InteractionIndex,
			PromiseID: obs.PromiseID,
			Selector:  promises[obs.PromiseID].Selector,
			Verdict:   verdict,
			ElapsedMs: obs.ElapsedMs,
		})
	}
	sortFindings(res.Findings)
	return res, nil
}

// judgeOne is the per-interaction pipeline: classify, fold, assess, claim.
// Even an observation with no signal at all produces a finding — judgment
// output is never silently omitted.
func (r *Runner) judgeOne(log *slog.Logger, promises map[string]promise.Promise, obs capture.Observation) (Finding, bool, error) {
	sc := scope.Classify(obs.BeforeHTML, obs.AfterHTML)
	bundle := evidence.Build(obs.PromiseID, obs.InteractionIndex, sc, evidence.Summaries{
		Navigation: obs.Navigation,
		Network:    obs.Network,
		Console:    obs.Console,
		State:      obs.State,
		UIState:    obs.UIState,
	})
	assessment, err := confidence.Assess(bundle, r.Mode)
	if err != nil {
		return Finding{}, false, err
	}

	p := promises[obs.PromiseID]
	findingType, proposed, desc := claim(bundle, sc, p)
	status := assessment.Enforce(proposed, r.Policy, log, obs.PromiseID)
	if status == confidence.StatusDropped {
		return Finding{}, true, nil
	}

	f := Finding{
		ID:                 findingID(obs.PromiseID, obs.InteractionIndex, findingType),
		PromiseID:          obs.PromiseID,
		InteractionIndex:   obs.InteractionIndex,
		File:               p.File,
		Line:               p.Line,
		Column:             p.Column,
		Type:               findingType,
		Status:             status,
		Level:              assessment.Level,
		Confidence:         assessment.FinalScore,
		EvidenceSufficient: assessment.EvidenceSufficient,
		Signals:            bundle.Signals,
		Scope:              sc,
		Description:        desc,
	}
	f.Severity = severityFor(findingType, assessment.Level)
	return f, false, nil
}

// claim decides what the finding asserts before Evidence Law enforcement.
func claim(b evidence.Bundle, sc scope.Result, p promise.Promise) (findingType string, proposed confidence.Status, desc string) {
	switch {
	case b.Signals.FeedbackSeen:
		return TypePromiseFulfilled, confidence.StatusConfirmed,
			fmt.Sprintf("interaction with %s produced observable feedback", p.Selector)
	case sc.Classification == scope.ClassOutOfScope:
		return TypeOutOfScopeChange, confidence.StatusInfo,
			fmt.Sprintf("interaction with %s produced a change outside the detection scope; not judged a failure", p.Selector)
	default:
		return TypeSilentFailure, confidence.StatusConfirmed,
			fmt.Sprintf("interaction with %s produced no observable effect despite a declared %s promise", p.Selector, p.Kind)
	}
}

// sortFindings mirrors the canonical findings order so the in-memory result
// matches the serialized artifact.
func sortFindings(fs []Finding) {
	sort.Slice(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Severity != b.Severity {
			return a.Severity < b.Severity
		}
		return a.ID < b.ID
	})
}
