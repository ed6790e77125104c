package confidence

import (
	"errors"
	"math"

	"github.com/odavlstudio/verax-sub011/internal/evidence"
)

// ErrNoModeContext signals a broken run setup: judgment started before the
// execution mode was resolved. This is the one confidence error that
// propagates instead of degrading.
var ErrNoModeContext = errors.New("confidence: execution-mode context missing for this run")

// Level is the coarse confidence band derived from the final score.
type Level string

const (
	LevelHigh    Level = "HIGH"
	LevelMedium  Level = "MEDIUM"
	LevelLow     Level = "LOW"
	LevelUnknown Level = "UNKNOWN"
)

const (
	thresholdHigh   = 0.80
	thresholdMedium = 0.50
)

// Raw-score weights: a first contributing signal carries most of the
// conviction, each extra distinct signal adds less, and spread across
// independent sensors adds a corroboration bonus.
const (
	weightFirstSignal = 0.45
	weightExtraSignal = 0.20
	signalCap         = 0.85
	bonusTwoSensors   = 0.10
	bonusThreeSensors = 0.05
	weightCaptureOnly = 0.35
)

// Assessment is the immutable per-finding confidence verdict.
type Assessment struct {
	RawScore           float64 `json:"rawScore"`
	Ceiling            float64 `json:"ceiling"`
	FinalScore         float64 `json:"finalScore"`
	Level              Level   `json:"level"`
	EvidenceSufficient bool    `json:"evidenceSufficient"`
}

// Assess scores one evidence bundle under the run's mode context.
// The context is passed explicitly — never ambient — so ceiling policy
// stays independently testable.
func Assess(b evidence.Bundle, mc *ModeContext) (Assessment, error) {
	if mc == nil {
		return Assessment{}, ErrNoModeContext
	}

	signals, sensors := countSignals(b)
	raw := rawScore(b, signals, sensors)
	final := math.Min(raw, mc.Ceiling)

	a := Assessment{
		RawScore:           raw,
		Ceiling:            mc.Ceiling,
		FinalScore:         final,
		EvidenceSufficient: sufficient(b),
		Level:              level(final),
	}
	return a, nil
}

// countSignals returns the number of contributing feedback signals and how
// many independent sensors they span.
func countSignals(b evidence.Bundle) (signals, sensors int) {
	for _, on := range []bool{
		b.Signals.MeaningfulDOMChange,
		b.Signals.URLChanged,
		b.Signals.NetworkActivity,
		b.Signals.StateChanged,
		b.Signals.UIStateFlip,
	} {
		if on {
			signals++
			sensors++ // each signal above is owned by a distinct sensor
		}
	}
	return signals, sensors
}

func rawScore(b evidence.Bundle, signals, sensors int) float64 {
	if signals == 0 {
		if sufficient(b) {
			// Evidence was captured but showed no feedback: the capture
			// itself (a settled DOM pair, quiet sensors) carries some
			// conviction that nothing happened.
			return weightCaptureOnly
		}
		return 0
	}
	raw := weightFirstSignal + weightExtraSignal*float64(signals-1)
	if raw > signalCap {
		raw = signalCap
	}
	if sensors >= 2 {
		raw += bonusTwoSensors
	}
	if sensors >= 3 {
		raw += bonusThreeSensors
	}
	return math.Min(raw, 1.0)
}

// sufficient reports whether substantive evidence exists at all,
// independent of score magnitude: a DOM change, URL change, network
// request, state mutation, or explicit sensor data.
func sufficient(b evidence.Bundle) bool {
	return b.Scope.Changed ||
		b.Signals.URLChanged ||
		b.Signals.NetworkActivity ||
		b.Signals.StateChanged ||
		b.Signals.UIStateFlip ||
		b.Signals.ConsoleErrorCount > 0 ||
		b.Signals.SensorsReporting > 0
}

func level(final float64) Level {
	switch {
	case final >= thresholdHigh:
		return LevelHigh
	case final >= thresholdMedium:
		return LevelMedium
	case final > 0:
		return LevelLow
	default:
		return LevelUnknown
	}
}
