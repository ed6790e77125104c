package scope

import "regexp"

// The classifier's knowledge lives in three catalogs, kept as data so each
// can grow and be tested without touching the classification algorithm:
// noise tokens stripped before comparison, markers the in-scope detectors
// recognize, and the out-of-scope analyzer's rule list.

// noiseRule strips one family of non-semantic tokens that legitimately
// differ between two captures of the same logical page.
type noiseRule struct {
	name string
	re   *regexp.Regexp
}

var noiseCatalog = []noiseRule{
	{"iso-datetime", regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})?`)},
	{"clock-time", regexp.MustCompile(`\b\d{1,2}:\d{2}(:\d{2})?\s?([AaPp][Mm])?\b`)},
	{"uuid", regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)},
	{"long-hex", regexp.MustCompile(`\b[0-9a-fA-F]{16,}\b`)},
	{"tracking-param", regexp.MustCompile(`(utm_[a-z]+|gclid|fbclid|mc_eid|_ga)=[^&"'\s]*`)},
	{"test-id-attr", regexp.MustCompile(`\s(data-testid|data-test-id|data-cy|data-qa)="[^"]*"`)},
}

func stripNoise(s string) string {
	for _, r := range noiseCatalog {
		s = r.re.ReplaceAllString(s, "")
	}
	return s
}

// feedbackRoles are ARIA roles that mark an element as user feedback.
var feedbackRoles = map[string]bool{
	"alert":  true,
	"status": true,
}

// feedbackClassWhitelist marks class tokens that conventionally carry
// user-visible feedback. Checked as whole tokens, case-insensitive.
var feedbackClassWhitelist = map[string]bool{
	"toast":        true,
	"snackbar":     true,
	"notification": true,
	"alert":        true,
	"error":        true,
	"success":      true,
	"warning":      true,
}

// feedbackDataAttrs mark elements as feedback carriers regardless of class.
var feedbackDataAttrs = []string{"data-error", "data-success"}

// watchedAttrs is the fixed attribute whitelist for the in-scope attribute
// detector. disabled is tracked as a document-wide presence count; the rest
// by value on stably-addressable elements.
var watchedAttrs = []string{"aria-invalid", "aria-disabled", "data-loading"}

// outOfScopeRule describes one known-but-undetectable family of user-visible
// change. A match explains the diff without claiming a silent failure.
type outOfScopeRule struct {
	category string
	kind     string // "style", "class", or "aria"
	attr     string // style property or aria attribute; empty for class
	summary  string
	action   string
}

var outOfScopeCatalog = []outOfScopeRule{
	{
		category: "visual-style",
		kind:     "style",
		attr:     "display",
		summary:  "an inline display toggle changed what is rendered",
		action:   "verify the toggle visually or promote the element to a detectable feedback pattern (role=status, aria-live)",
	},
	{
		category: "visual-style",
		kind:     "style",
		attr:     "visibility",
		summary:  "an inline visibility toggle changed what is rendered",
		action:   "verify the toggle visually or promote the element to a detectable feedback pattern (role=status, aria-live)",
	},
	{
		category: "visual-style",
		kind:     "style",
		attr:     "opacity",
		summary:  "an inline opacity change altered rendering",
		action:   "verify the change visually; opacity transitions are outside the detection scope",
	},
	{
		category: "class-change",
		kind:     "class",
		summary:  "a class outside the feedback whitelist changed, likely a styling-only update",
		action:   "if this class conveys feedback, add it to the feedback class whitelist",
	},
	{
		category: "accessibility-state",
		kind:     "aria",
		attr:     "aria-hidden",
		summary:  "an aria-hidden toggle changed assistive-technology visibility",
		action:   "confirm with an accessibility audit; aria-hidden alone is not proof of visible feedback",
	},
	{
		category: "accessibility-state",
		kind:     "aria",
		attr:     "aria-expanded",
		summary:  "an aria-expanded toggle changed a disclosure state",
		action:   "confirm the disclosure renders; the toggle alone is outside the detection scope",
	},
	{
		category: "accessibility-state",
		kind:     "aria",
		attr:     "aria-selected",
		summary:  "an aria-selected toggle changed a selection state",
		action:   "confirm the selection renders; the toggle alone is outside the detection scope",
	},
}
