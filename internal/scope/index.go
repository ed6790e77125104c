package scope

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// maxDocBytes bounds what the classifier will parse. Beyond this the
// classifier degrades to opaque comparison (steps 1–2 only).
const maxDocBytes = 2 << 20

// docIndex is everything the detectors need from one parsed document,
// extracted in a single walk.
type docIndex struct {
	// feedbackMarkers counts feedback-role elements by signature
	// (tag + marker + normalized text).
	feedbackMarkers map[string]int

	// stableText maps a stable address (id, aria-live, alert/status role)
	// to whitespace-normalized text content.
	stableText map[string]string

	// formValues maps named form inputs to their value attribute.
	formValues map[string]string

	// watched maps a stable element address to its whitelisted attribute
	// values (aria-invalid, aria-disabled, data-loading).
	watched map[string]map[string]string

	// disabledCount is the document-wide count of disabled attributes.
	disabledCount int

	// styleProps, classByKey, and ariaState feed the out-of-scope analyzer,
	// keyed by element path.
	styleProps map[string]map[string]string
	classByKey map[string]string
	ariaState  map[string]map[string]string
}

// buildIndex parses one document and extracts the detector inputs.
// ok is false when the document cannot be indexed (oversized or unparseable);
// the classifier then stays on the degraded path.
func buildIndex(doc string) (*docIndex, bool) {
	if len(doc) > maxDocBytes {
		return nil, false
	}
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, false
	}
	idx := &docIndex{
		feedbackMarkers: make(map[string]int),
		stableText:      make(map[string]string),
		formValues:      make(map[string]string),
		watched:         make(map[string]map[string]string),
		styleProps:      make(map[string]map[string]string),
		classByKey:      make(map[string]string),
		ariaState:       make(map[string]map[string]string),
	}
	idx.walk(root, "")
	return idx, true
}

func (idx *docIndex) walk(n *html.Node, parentPath string) {
	childCounts := map[string]int{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		childCounts[c.Data]++
		path := fmt.Sprintf("%s/%s[%d]", parentPath, c.Data, childCounts[c.Data])
		idx.record(c, path)
		idx.walk(c, path)
	}
}

func (idx *docIndex) record(n *html.Node, path string) {
	attrs := map[string]string{}
	for _, a := range n.Attr {
		attrs[strings.ToLower(a.Key)] = a.Val
	}

	// Elements with an id are addressed by it; everything else falls back
	// to its tree path, which is stable enough for same-page comparison.
	key := path
	if id := attrs["id"]; id != "" {
		key = "id:" + id
	}

	if marker := feedbackMarker(n.Data, attrs); marker != "" {
		sig := fmt.Sprintf("%s[%s] %q", n.Data, marker, truncate(textContent(n), 80))
		idx.feedbackMarkers[sig]++
	}

	if addr := stableAddress(key, attrs); addr != "" {
		idx.stableText[addr] = textContent(n)
	}

	if isFormInput(n.Data) {
		if name := attrs["name"]; name != "" {
			idx.formValues[name] = attrs["value"]
		}
	}

	if _, ok := attrs["disabled"]; ok {
		idx.disabledCount++
	}
	for _, w := range watchedAttrs {
		if v, ok := attrs[w]; ok {
			if idx.watched[key] == nil {
				idx.watched[key] = map[string]string{}
			}
			idx.watched[key][w] = v
		}
	}

	if style, ok := attrs["style"]; ok {
		idx.styleProps[key] = parseStyle(style)
	}
	if class, ok := attrs["class"]; ok {
		idx.classByKey[key] = class
	}
	for _, aria := range []string{"aria-hidden", "aria-expanded", "aria-selected"} {
		if v, ok := attrs[aria]; ok {
			if idx.ariaState[key] == nil {
				idx.ariaState[key] = map[string]string{}
			}
			idx.ariaState[key][aria] = v
		}
	}
}

// feedbackMarker reports which feedback marker an element carries, or "".
func feedbackMarker(tag string, attrs map[string]string) string {
	if feedbackRoles[attrs["role"]] {
		return "role=" + attrs["role"]
	}
	if _, ok := attrs["aria-live"]; ok {
		return "aria-live"
	}
	for _, cls := range strings.Fields(attrs["class"]) {
		if feedbackClassWhitelist[strings.ToLower(cls)] {
			return "class=" + strings.ToLower(cls)
		}
	}
	for _, da := range feedbackDataAttrs {
		if _, ok := attrs[da]; ok {
			return da
		}
	}
	return ""
}

// stableAddress returns the address used by the text-content detector:
// an id, an aria-live region, or an alert/status role. Empty when the
// element has no stable identity.
func stableAddress(key string, attrs map[string]string) string {
	if strings.HasPrefix(key, "id:") {
		return key
	}
	if _, ok := attrs["aria-live"]; ok {
		return "live:" + key
	}
	if feedbackRoles[attrs["role"]] {
		return "role=" + attrs["role"] + ":" + key
	}
	return ""
}

func isFormInput(tag string) bool {
	switch tag {
	case "input", "textarea", "select", "option":
		return true
	}
	return false
}

// textContent collects the whitespace-normalized text under a node.
func textContent(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			visit(gc)
		}
	}
	visit(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func parseStyle(style string) map[string]string {
	props := map[string]string{}
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		props[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return props
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// sortedKeys returns map keys in lexicographic order so detector output is
// stable across runs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
