package capture

// Observation is everything the observation layer hands the judgment
// pipeline for one interaction: the settled before/after document pair,
// the per-sensor outcomes, and the derived summaries. Once constructed it
// is read-only input; judgment never mutates or re-captures it.
type Observation struct {
	PromiseID        string    `json:"promiseId"`
	InteractionIndex int       `json:"interactionIndex"`
	BeforeHTML       string    `json:"beforeHtml"`
	AfterHTML        string    `json:"afterHtml"`
	Outcomes         []Outcome `json:"outcomes,omitempty"`

	Navigation NavigationSummary `json:"navigation"`
	Network    NetworkSummary    `json:"network"`
	Console    ConsoleSummary    `json:"console"`
	State      StateSummary      `json:"state"`
	UIState    UIStateSummary    `json:"uiState"`

	ElapsedMs int64 `json:"elapsedMs"`
}
