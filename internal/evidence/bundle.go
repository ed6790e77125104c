// Package evidence folds one scope classification and the per-interaction
// sensor summaries into a single evidence bundle. It only combines signals;
// every signal is computed by its owning sensor. Downstream judgment treats
// the derived FeedbackSeen boolean as ground truth, so the combination rule
// here is the precondition of the Evidence Law.
package evidence

import (
	"github.com/odavlstudio/verax-sub011/internal/capture"
	"github.com/odavlstudio/verax-sub011/internal/scope"
)

// Signals are the observable effects gathered for one interaction.
type Signals struct {
	FeedbackSeen        bool `json:"feedbackSeen"`
	MeaningfulDOMChange bool `json:"meaningfulDomChange"`
	URLChanged          bool `json:"urlChanged"`
	NetworkActivity     bool `json:"networkActivity"`
	ConsoleErrorCount   int  `json:"consoleErrorCount"`
	StateChanged        bool `json:"stateChanged"`
	UIStateFlip         bool `json:"uiStateFlip"`

	// SensorsReporting counts summaries that were available at all, so
	// downstream policy can tell "sensors saw silence" from "sensors blind".
	SensorsReporting int `json:"sensorsReporting"`
}

// Bundle is the aggregated evidence for one interaction against one promise.
type Bundle struct {
	PromiseID        string       `json:"promiseId"`
	InteractionIndex int          `json:"interactionIndex"`
	Signals          Signals      `json:"signals"`
	Scope            scope.Result `json:"scope"`
}

// Summaries carries the closed set of sensor summaries for one interaction.
// A zero-valued summary reads as unavailable and contributes false/zero —
// one failed sensor never aborts judgment of the signals the others caught.
type Summaries struct {
	Navigation capture.NavigationSummary
	Network    capture.NetworkSummary
	Console    capture.ConsoleSummary
	State      capture.StateSummary
	UIState    capture.UIStateSummary
}

// Build combines the classification with the sensor summaries.
//
// FeedbackSeen is the disjunction of: a meaningful in-scope DOM change, a
// URL change, qualifying network activity, changed state-store keys, or a
// whitelisted widget-state flip. Console errors contribute evidence of
// activity but never count as feedback on their own.
func Build(promiseID string, interactionIndex int, sc scope.Result, sums Summaries) Bundle {
	sig := Signals{
		MeaningfulDOMChange: sc.Meaningful,
		URLChanged:          sums.Navigation.Available && sums.Navigation.URLChanged,
		NetworkActivity:     qualifyingNetwork(sums.Network),
		StateChanged:        sums.State.Available && len(sums.State.ChangedKeys) > 0,
		UIStateFlip:         uiFlip(sums.UIState),
	}
	if sums.Console.Available {
		sig.ConsoleErrorCount = sums.Console.ErrorCount + sums.Console.UnhandledRejections
	}
	for _, avail := range []bool{
		sums.Navigation.Available, sums.Network.Available,
		sums.Console.Available, sums.State.Available, sums.UIState.Available,
	} {
		if avail {
			sig.SensorsReporting++
		}
	}
	sig.FeedbackSeen = sig.MeaningfulDOMChange || sig.URLChanged ||
		sig.NetworkActivity || sig.StateChanged || sig.UIStateFlip

	return Bundle{
		PromiseID:        promiseID,
		InteractionIndex: interactionIndex,
		Signals:          sig,
		Scope:            sc,
	}
}

// qualifyingNetwork reports whether the network sensor saw activity that
// counts as feedback. The sensor excludes tracking hosts upstream, so any
// completed request qualifies; a run with writes blocked still qualifies
// through its read traffic.
func qualifyingNetwork(n capture.NetworkSummary) bool {
	return n.Available && n.RequestCount > 0
}

func uiFlip(u capture.UIStateSummary) bool {
	return u.Available && (u.DialogToggled || u.TabSwitched ||
		u.ExpansionToggled || u.CheckedToggled || u.AlertTextChanged)
}
