// Package scope classifies the before/after DOM pair of one interaction:
// did a user-observable change occur within the declared detection scope,
// and if not, why — without claiming a failure that was not proven.
package scope

import "fmt"

// Classification is the four-way verdict on a before/after pair.
type Classification string

const (
	ClassNoChange   Classification = "no-change"
	ClassNoiseOnly  Classification = "noise-only"
	ClassInScope    Classification = "in-scope"
	ClassOutOfScope Classification = "out-of-scope"
)

// AttributeChange records one whitelisted attribute moving between captures.
type AttributeChange struct {
	Element   string `json:"element"`
	Attribute string `json:"attribute"`
	Before    string `json:"before"`
	After     string `json:"after"`
}

// ContentChange records text content moving inside a stably-addressed element.
type ContentChange struct {
	Element string `json:"element"`
	Before  string `json:"before"`
	After   string `json:"after"`
}

// Explanation accompanies an out-of-scope classification. Its summary always
// states that the change is not a silent failure: the page gave feedback,
// this system just cannot vouch for it.
type Explanation struct {
	Category        string   `json:"category"`
	Summary         string   `json:"summary"`
	MatchedPatterns []string `json:"matchedPatterns"`
	SuggestedAction string   `json:"suggestedAction"`
}

// Result is the classifier verdict for one interaction.
// Meaningful is true only for an in-scope classification with at least one
// populated change list.
type Result struct {
	Changed           bool              `json:"changed"`
	Meaningful        bool              `json:"isMeaningful"`
	ElementsAdded     []string          `json:"elementsAdded,omitempty"`
	ElementsRemoved   []string          `json:"elementsRemoved,omitempty"`
	AttributesChanged []AttributeChange `json:"attributesChanged,omitempty"`
	ContentChanged    []ContentChange   `json:"contentChanged,omitempty"`
	Classification    Classification    `json:"classification"`
	OutOfScope        *Explanation      `json:"outOfScopeExplanation,omitempty"`
}

// Classify runs the full pipeline over one before/after HTML pair. It never
// panics and never returns an error: malformed, empty, or oversized input
// degrades to opaque string comparison plus noise stripping.
//
// Ordering encodes the priority rule: any in-scope detector hit overrides a
// co-occurring out-of-scope match, because one diff may legitimately contain
// both (a spinner toggling visibility next to a status-text update). Recall
// within the declared scope beats precisely tagging cosmetic changes.
func Classify(before, after string) Result {
	if before == after {
		return Result{Classification: ClassNoChange}
	}
	if stripNoise(before) == stripNoise(after) {
		return Result{Changed: true, Classification: ClassNoiseOnly}
	}

	bi, okB := buildIndex(before)
	ai, okA := buildIndex(after)
	if !okB || !okA {
		// Degraded path: the texts differ beyond noise but the documents
		// cannot be indexed. Conservative default, see below.
		return Result{Changed: true, Classification: ClassInScope}
	}

	res := Result{Changed: true}
	detectMarkers(bi, ai, &res)
	detectAttributes(bi, ai, &res)
	detectFormValues(bi, ai, &res)
	detectContent(bi, ai, &res)

	if len(res.ElementsAdded) > 0 || len(res.ElementsRemoved) > 0 ||
		len(res.AttributesChanged) > 0 || len(res.ContentChanged) > 0 {
		res.Classification = ClassInScope
		res.Meaningful = true
		return res
	}

	if expl := analyzeOutOfScope(bi, ai); expl != nil {
		res.Classification = ClassOutOfScope
		res.OutOfScope = expl
		return res
	}

	// Changed, but matched by neither catalog. Default to in-scope rather
	// than excusing an unknown change as cosmetic — a recall-favoring bias
	// kept deliberately, at the cost of occasionally inspecting a change
	// we cannot name.
	res.Classification = ClassInScope
	return res
}

// detectMarkers diffs the feedback-role marker population (alert/status
// roles, live regions, whitelisted feedback classes, data-error/data-success).
func detectMarkers(bi, ai *docIndex, res *Result) {
	for _, sig := range sortedKeys(ai.feedbackMarkers) {
		if ai.feedbackMarkers[sig] > bi.feedbackMarkers[sig] {
			res.ElementsAdded = append(res.ElementsAdded, sig)
		}
	}
	for _, sig := range sortedKeys(bi.feedbackMarkers) {
		if bi.feedbackMarkers[sig] > ai.feedbackMarkers[sig] {
			res.ElementsRemoved = append(res.ElementsRemoved, sig)
		}
	}
}

// detectAttributes diffs the fixed attribute whitelist: document-wide
// disabled count plus aria-invalid/aria-disabled/data-loading by element.
func detectAttributes(bi, ai *docIndex, res *Result) {
	if bi.disabledCount != ai.disabledCount {
		res.AttributesChanged = append(res.AttributesChanged, AttributeChange{
			Element:   "(document)",
			Attribute: "disabled",
			Before:    fmt.Sprintf("%d", bi.disabledCount),
			After:     fmt.Sprintf("%d", ai.disabledCount),
		})
	}
	keys := map[string]bool{}
	for k := range bi.watched {
		keys[k] = true
	}
	for k := range ai.watched {
		keys[k] = true
	}
	for _, key := range sortedKeys(keys) {
		for _, attr := range watchedAttrs {
			bv, bok := bi.watched[key][attr]
			av, aok := ai.watched[key][attr]
			if bok == aok && bv == av {
				continue
			}
			res.AttributesChanged = append(res.AttributesChanged, AttributeChange{
				Element:   key,
				Attribute: attr,
				Before:    bv,
				After:     av,
			})
		}
	}
}

// detectFormValues catches named form inputs whose value diverged.
func detectFormValues(bi, ai *docIndex, res *Result) {
	for _, name := range sortedKeys(bi.formValues) {
		av, ok := ai.formValues[name]
		if !ok || av == bi.formValues[name] {
			continue
		}
		res.AttributesChanged = append(res.AttributesChanged, AttributeChange{
			Element:   "input[name=" + name + "]",
			Attribute: "value",
			Before:    bi.formValues[name],
			After:     av,
		})
	}
}

// detectContent catches whitespace-normalized text changes inside elements
// with a stable address, including new nonempty text where none existed.
func detectContent(bi, ai *docIndex, res *Result) {
	for _, addr := range sortedKeys(ai.stableText) {
		bt, existed := bi.stableText[addr]
		at := ai.stableText[addr]
		if existed && bt == at {
			continue
		}
		if !existed && at == "" {
			continue
		}
		res.ContentChanged = append(res.ContentChanged, ContentChange{
			Element: addr,
			Before:  bt,
			After:   at,
		})
	}
	for _, addr := range sortedKeys(bi.stableText) {
		if _, still := ai.stableText[addr]; still || bi.stableText[addr] == "" {
			continue
		}
		res.ContentChanged = append(res.ContentChanged, ContentChange{
			Element: addr,
			Before:  bi.stableText[addr],
		})
	}
}

// analyzeOutOfScope runs the second catalog: user-visible changes this
// system knows it cannot vouch for. A match yields an explanation, never
// a failure claim.
func analyzeOutOfScope(bi, ai *docIndex) *Explanation {
	var expl *Explanation
	for _, rule := range outOfScopeCatalog {
		matches := matchRule(rule, bi, ai)
		if len(matches) == 0 {
			continue
		}
		if expl == nil {
			expl = &Explanation{
				Category: rule.category,
				Summary: "not a silent failure: " + rule.summary +
					", which is user-visible but outside the detection scope",
				SuggestedAction: rule.action,
			}
		}
		expl.MatchedPatterns = append(expl.MatchedPatterns, matches...)
	}
	return expl
}

func matchRule(rule outOfScopeRule, bi, ai *docIndex) []string {
	var matches []string
	switch rule.kind {
	case "style":
		for _, key := range sortedKeys(bi.styleProps) {
			ap, ok := ai.styleProps[key]
			if !ok {
				continue
			}
			bv, av := bi.styleProps[key][rule.attr], ap[rule.attr]
			if bv != av {
				matches = append(matches, fmt.Sprintf("%s style.%s: %q → %q", key, rule.attr, bv, av))
			}
		}
	case "class":
		for _, key := range sortedKeys(bi.classByKey) {
			av, ok := ai.classByKey[key]
			if !ok || av == bi.classByKey[key] {
				continue
			}
			matches = append(matches, fmt.Sprintf("%s class: %q → %q", key, bi.classByKey[key], av))
		}
	case "aria":
		for _, key := range sortedKeys(bi.ariaState) {
			ap, ok := ai.ariaState[key]
			if !ok {
				continue
			}
			bv, av := bi.ariaState[key][rule.attr], ap[rule.attr]
			if bv != av {
				matches = append(matches, fmt.Sprintf("%s %s: %q → %q", key, rule.attr, bv, av))
			}
		}
	}
	return matches
}
