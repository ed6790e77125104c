package capture

// Sensor summaries are the boundary records handed in by the observation
// layer. Each carries an explicit Available flag: an absent summary means
// "signal unavailable", never "no feedback occurred". Values are aggregates
// only — the state summary reports changed key names, never values.

// NavigationSummary reports URL and history movement across one interaction.
type NavigationSummary struct {
	Available          bool   `json:"available"`
	URLChanged         bool   `json:"urlChanged"`
	FromURL            string `json:"fromUrl,omitempty"`
	ToURL              string `json:"toUrl,omitempty"`
	HistoryLengthDelta int    `json:"historyLengthDelta"`
}

// NetworkSummary aggregates request activity across one interaction.
type NetworkSummary struct {
	Available     bool `json:"available"`
	RequestCount  int  `json:"requestCount"`
	FailedCount   int  `json:"failedCount"`
	WriteCount    int  `json:"writeCount"`
	WritesBlocked bool `json:"writesBlocked"`
}

// ConsoleSummary counts console-level trouble across one interaction.
type ConsoleSummary struct {
	Available           bool `json:"available"`
	ErrorCount          int  `json:"errorCount"`
	WarningCount        int  `json:"warningCount"`
	UnhandledRejections int  `json:"unhandledRejections"`
}

// StateSummary reports which top-level store keys changed. Key names only.
type StateSummary struct {
	Available   bool     `json:"available"`
	ChangedKeys []string `json:"changedKeys,omitempty"`
}

// UIStateSummary reports whitelisted widget-state flips that count as user
// feedback even though the classifier treats the underlying attributes as
// out of scope (a dialog opening is feedback; a bare aria-expanded toggle
// on its own is not provably so).
type UIStateSummary struct {
	Available        bool `json:"available"`
	DialogToggled    bool `json:"dialogToggled"`
	TabSwitched      bool `json:"tabSwitched"`
	ExpansionToggled bool `json:"expansionToggled"`
	CheckedToggled   bool `json:"checkedToggled"`
	AlertTextChanged bool `json:"alertTextChanged"`
}

// FromOutcome gates a summary on its sensor outcome: a failed capture
// contributes an unavailable summary so its signal reads false/zero
// downstream without aborting judgment for the sensors that did work.
func (s NavigationSummary) FromOutcome(o Outcome) NavigationSummary {
	if !o.Usable() {
		return NavigationSummary{}
	}
	s.Available = true
	return s
}

func (s NetworkSummary) FromOutcome(o Outcome) NetworkSummary {
	if !o.Usable() {
		return NetworkSummary{}
	}
	s.Available = true
	return s
}

func (s ConsoleSummary) FromOutcome(o Outcome) ConsoleSummary {
	if !o.Usable() {
		return ConsoleSummary{}
	}
	s.Available = true
	return s
}

func (s StateSummary) FromOutcome(o Outcome) StateSummary {
	if !o.Usable() {
		return StateSummary{}
	}
	s.Available = true
	return s
}

func (s UIStateSummary) FromOutcome(o Outcome) UIStateSummary {
	if !o.Usable() {
		return UIStateSummary{}
	}
	s.Available = true
	return s
}
