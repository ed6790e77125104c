package confidence

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/odavlstudio/verax-sub011/internal/evidence"
	"github.com/odavlstudio/verax-sub011/internal/scope"
)

func full() *ModeContext {
	mc := ResolveMode(true, true)
	return &mc
}

func limited() *ModeContext {
	mc := ResolveMode(false, true)
	return &mc
}

func bundle(sig evidence.Signals, sc scope.Result) evidence.Bundle {
	return evidence.Bundle{PromiseID: "p-1", Signals: sig, Scope: sc}
}

func TestResolveMode(t *testing.T) {
	if mc := ResolveMode(true, true); mc.Mode != ModeFullProject || mc.Ceiling != FullProjectCeiling {
		t.Errorf("full project: %+v", mc)
	}
	if mc := ResolveMode(false, true); mc.Mode != ModeWebScanLimited || mc.Ceiling != LimitedModeCeiling {
		t.Errorf("web scan limited: %+v", mc)
	}
	if mc := ResolveMode(true, false); mc.Mode != ModeWebScanLimited {
		t.Errorf("unreachable URL must not grant full project mode: %+v", mc)
	}
	if mc := ResolveMode(false, true); mc.Reason == "" || mc.Explanation == "" {
		t.Errorf("limited mode must explain itself: %+v", mc)
	}
}

func TestAssess_MissingContextIsHardError(t *testing.T) {
	_, err := Assess(bundle(evidence.Signals{FeedbackSeen: true}, scope.Result{}), nil)
	if !errors.Is(err, ErrNoModeContext) {
		t.Fatalf("want ErrNoModeContext, got %v", err)
	}
}

func TestAssess_ScoreGrowsWithSignals(t *testing.T) {
	one := evidence.Signals{MeaningfulDOMChange: true, FeedbackSeen: true, SensorsReporting: 1}
	three := evidence.Signals{
		MeaningfulDOMChange: true, URLChanged: true, NetworkActivity: true,
		FeedbackSeen: true, SensorsReporting: 3,
	}
	sc := scope.Result{Changed: true, Meaningful: true, Classification: scope.ClassInScope}

	a1, err := Assess(bundle(one, sc), full())
	if err != nil {
		t.Fatal(err)
	}
	a3, err := Assess(bundle(three, sc), full())
	if err != nil {
		t.Fatal(err)
	}
	if a3.RawScore <= a1.RawScore {
		t.Errorf("three signals (%v) must outscore one (%v)", a3.RawScore, a1.RawScore)
	}
	if a3.Level != LevelHigh {
		t.Errorf("three corroborating sensors should reach HIGH, got %s (%v)", a3.Level, a3.FinalScore)
	}
	if a1.Level == LevelHigh {
		t.Errorf("a single signal must not reach HIGH, got %v", a1.FinalScore)
	}
}

func TestAssess_CeilingCapsFinalScore(t *testing.T) {
	sig := evidence.Signals{
		MeaningfulDOMChange: true, URLChanged: true, NetworkActivity: true,
		StateChanged: true, FeedbackSeen: true, SensorsReporting: 4,
	}
	sc := scope.Result{Changed: true, Meaningful: true, Classification: scope.ClassInScope}

	a, err := Assess(bundle(sig, sc), limited())
	if err != nil {
		t.Fatal(err)
	}
	if a.RawScore <= LimitedModeCeiling {
		t.Fatalf("test premise broken: raw %v should exceed the limited ceiling", a.RawScore)
	}
	if a.FinalScore != LimitedModeCeiling {
		t.Errorf("final = %v, want capped at %v", a.FinalScore, LimitedModeCeiling)
	}
	if a.Level == LevelHigh {
		t.Error("limited mode must never grade HIGH")
	}
}

func TestAssess_NoEvidenceAtAll(t *testing.T) {
	a, err := Assess(bundle(evidence.Signals{}, scope.Result{Classification: scope.ClassNoChange}), full())
	if err != nil {
		t.Fatal(err)
	}
	if a.Level != LevelUnknown || a.RawScore != 0 {
		t.Errorf("no evidence must grade UNKNOWN at zero, got %+v", a)
	}
	if a.EvidenceSufficient {
		t.Error("no evidence must not be sufficient")
	}
}

func TestAssess_QuietSensorsAreStillEvidence(t *testing.T) {
	// All sensors reported and saw nothing: the silence itself is captured
	// evidence, enough to confirm, but conviction stays low.
	sig := evidence.Signals{SensorsReporting: 5}
	a, err := Assess(bundle(sig, scope.Result{Classification: scope.ClassNoChange}), full())
	if err != nil {
		t.Fatal(err)
	}
	if !a.EvidenceSufficient {
		t.Error("reporting sensors constitute explicit sensor data")
	}
	if a.Level != LevelLow {
		t.Errorf("capture-only evidence should grade LOW, got %s (%v)", a.Level, a.RawScore)
	}
}

func TestEnforce_EvidenceLaw(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	insufficient := Assessment{EvidenceSufficient: false}
	sufficient := Assessment{EvidenceSufficient: true}

	if got := sufficient.Enforce(StatusConfirmed, DowngradeToSuspected, log, "p-1"); got != StatusConfirmed {
		t.Errorf("sufficient evidence must keep CONFIRMED, got %s", got)
	}
	if got := insufficient.Enforce(StatusConfirmed, DowngradeToSuspected, log, "p-1"); got != StatusSuspected {
		t.Errorf("unproven CONFIRMED must downgrade to SUSPECTED, got %s", got)
	}
	if got := insufficient.Enforce(StatusConfirmed, DropUnproven, log, "p-1"); got != StatusDropped {
		t.Errorf("drop policy must drop, got %s", got)
	}
	if got := insufficient.Enforce(StatusSuspected, DowngradeToSuspected, log, "p-1"); got != StatusSuspected {
		t.Errorf("non-CONFIRMED statuses pass through, got %s", got)
	}
	if !strings.Contains(buf.String(), "evidence law") {
		t.Error("downgrade must be logged")
	}
}
