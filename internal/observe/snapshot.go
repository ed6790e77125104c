package observe

import (
	"context"
	"sort"

	"github.com/chromedp/chromedp"

	"github.com/odavlstudio/verax-sub011/internal/capture"
)

// stateSnapshotJS hashes storage values client-side so changed keys can be
// detected without the values themselves ever leaving the page.
const stateSnapshotJS = `(() => {
	const out = {};
	const scan = (store, prefix) => {
		for (let i = 0; i < store.length; i++) {
			const k = store.key(i);
			const v = String(store.getItem(k));
			let h = 0;
			for (let j = 0; j < v.length; j++) h = (h * 31 + v.charCodeAt(j)) | 0;
			out[prefix + k] = h;
		}
	};
	scan(localStorage, 'local:');
	scan(sessionStorage, 'session:');
	return out;
})()`

const uiSnapshotJS = `(() => ({
	dialogs: document.querySelectorAll('dialog[open], [role=dialog]:not([hidden])').length,
	activeTab: (() => { const t = document.querySelector('[role=tab][aria-selected=true]'); return t ? (t.id || t.textContent.trim()) : ''; })(),
	expanded: document.querySelectorAll('[aria-expanded=true]').length,
	checked: document.querySelectorAll('input:checked').length,
	alertText: Array.from(document.querySelectorAll('[role=alert], [role=status]')).map(n => n.textContent.trim()).join('|'),
	history: history.length,
}))()`

type uiSnapshot struct {
	Dialogs   int    `json:"dialogs"`
	ActiveTab string `json:"activeTab"`
	Expanded  int    `json:"expanded"`
	Checked   int    `json:"checked"`
	AlertText string `json:"alertText"`
	History   int    `json:"history"`
}

// pageSnapshot is one settled view of the page, per sensor. Each ok flag
// records whether that sensor's capture succeeded in this phase.
type pageSnapshot struct {
	html   string
	url    string
	state  map[string]int
	ui     uiSnapshot
	domOK  bool
	navOK  bool
	stOK   bool
	uiOK   bool
}

func (o *Observer) snapshot(ctx context.Context, obs *capture.Observation, phase string) pageSnapshot {
	var snap pageSnapshot

	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &snap.html, chromedp.ByQuery)); err != nil {
		obs.Outcomes = append(obs.Outcomes, capture.Failure(capture.SensorDOM, err.Error(), phase))
	} else {
		snap.domOK = true
		obs.Outcomes = append(obs.Outcomes, capture.Success(capture.SensorDOM, nil, phase))
	}

	if err := chromedp.Run(ctx, chromedp.Location(&snap.url)); err != nil {
		obs.Outcomes = append(obs.Outcomes, capture.Failure(capture.SensorNavigation, err.Error(), phase))
	} else {
		snap.navOK = true
		obs.Outcomes = append(obs.Outcomes, capture.Success(capture.SensorNavigation, nil, phase))
	}

	if err := chromedp.Run(ctx, chromedp.Evaluate(stateSnapshotJS, &snap.state)); err != nil {
		obs.Outcomes = append(obs.Outcomes, capture.Failure(capture.SensorState, err.Error(), phase))
	} else {
		snap.stOK = true
		obs.Outcomes = append(obs.Outcomes, capture.Success(capture.SensorState, nil, phase))
	}

	if err := chromedp.Run(ctx, chromedp.Evaluate(uiSnapshotJS, &snap.ui)); err != nil {
		obs.Outcomes = append(obs.Outcomes, capture.Failure(capture.SensorUIState, err.Error(), phase))
	} else {
		snap.uiOK = true
		obs.Outcomes = append(obs.Outcomes, capture.Success(capture.SensorUIState, nil, phase))
	}

	return snap
}

// summarize diffs the two snapshots into per-sensor summaries. A sensor is
// available only when both of its captures succeeded; a half-captured sensor
// contributes nothing rather than a fabricated diff.
func (o *Observer) summarize(obs *capture.Observation, col *collector, before, after pageSnapshot) {
	requests, failed, writes, blocked, errors, warnings, rejections := col.counts()

	obs.Network = capture.NetworkSummary{
		Available:     true,
		RequestCount:  requests,
		FailedCount:   failed,
		WriteCount:    writes,
		WritesBlocked: blocked > 0,
	}
	obs.Console = capture.ConsoleSummary{
		Available:           true,
		ErrorCount:          errors,
		WarningCount:        warnings,
		UnhandledRejections: rejections,
	}

	if before.navOK && after.navOK {
		obs.Navigation = capture.NavigationSummary{
			Available:          true,
			URLChanged:         before.url != after.url,
			FromURL:            before.url,
			ToURL:              after.url,
			HistoryLengthDelta: after.ui.History - before.ui.History,
		}
	}

	if before.stOK && after.stOK {
		obs.State = capture.StateSummary{
			Available:   true,
			ChangedKeys: diffStateKeys(before.state, after.state),
		}
	}

	if before.uiOK && after.uiOK {
		obs.UIState = capture.UIStateSummary{
			Available:        true,
			DialogToggled:    before.ui.Dialogs != after.ui.Dialogs,
			TabSwitched:      before.ui.ActiveTab != after.ui.ActiveTab,
			ExpansionToggled: before.ui.Expanded != after.ui.Expanded,
			CheckedToggled:   before.ui.Checked != after.ui.Checked,
			AlertTextChanged: before.ui.AlertText != after.ui.AlertText,
		}
	}
}

// diffStateKeys returns the keys whose hashed value appeared, vanished, or
// changed between snapshots, sorted for stable output.
func diffStateKeys(before, after map[string]int) []string {
	changed := map[string]bool{}
	for k, v := range before {
		if av, ok := after[k]; !ok || av != v {
			changed[k] = true
		}
	}
	for k := range after {
		if _, ok := before[k]; !ok {
			changed[k] = true
		}
	}
	if len(changed) == 0 {
		return nil
	}
	keys := make([]string, 0, len(changed))
	for k := range changed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
