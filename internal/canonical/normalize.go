// Package canonical produces the deterministic form of any decision-relevant
// artifact: two normalizations of logically identical input serialize to an
// identical byte sequence regardless of wall-clock time, timing jitter, or
// incidental ordering upstream. CI tooling compares builds by hashing this
// output, so every rule here is part of the Determinism Contract.
package canonical

import (
	"math"
	"sort"
	"strings"
)

// droppedFields are removed at every nesting depth. Wall-clock values can
// never be part of a reproducible artifact.
var droppedFields = map[string]bool{
	"timestamp":  true,
	"observedAt": true,
	"scannedAt":  true,
	"detectedAt": true,
	"createdAt":  true,
	"updatedAt":  true,
	"scanTime":   true,
	"scanDate":   true,
}

// Elapsed-time buckets, ordered. Jittery millisecond measurements collapse
// to one coarse label.
var elapsedBuckets = []struct {
	below float64
	label string
}{
	{1000, "<1s"},
	{5000, "<5s"},
	{10000, "<10s"},
	{30000, "<30s"},
	{60000, "<1min"},
	{300000, "<5min"},
}

const (
	bucketMax     = "≥5min"
	bucketUnknown = "unknown"
)

// chronologicalKeys name arrays that represent literal interaction order.
// They keep their order — the one exemption from deterministic array
// sorting — and must never feed a finding count or exit decision.
var chronologicalKeys = map[string]bool{
	"trace":    true,
	"traceLog": true,
	"events":   true,
}

// Normalize applies the determinism rules to a decoded JSON value
// (maps, slices, scalars, nil). It is idempotent and total: absent fields,
// odd shapes, and already-normalized input all pass through cleanly.
func Normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			if droppedFields[k] {
				continue
			}
			switch {
			case isElapsedKey(k):
				out[k] = QuantizeElapsed(child)
			case isScoreKey(k):
				if f, ok := toFloat(child); ok {
					out[k] = RoundConfidence(f)
				} else {
					out[k] = Normalize(child)
				}
			default:
				if arr, ok := child.([]any); ok {
					out[k] = normalizeArray(k, arr)
				} else {
					out[k] = Normalize(child)
				}
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = Normalize(e)
		}
		return out
	default:
		return v
	}
}

// QuantizeElapsed maps a millisecond measurement to its bucket label.
// Values that are already bucket labels pass through (idempotence);
// negative or non-numeric values map to "unknown".
func QuantizeElapsed(v any) string {
	if s, ok := v.(string); ok && isBucketLabel(s) {
		return s
	}
	f, ok := toFloat(v)
	if !ok || f < 0 || math.IsNaN(f) {
		return bucketUnknown
	}
	for _, b := range elapsedBuckets {
		if f < b.below {
			return b.label
		}
	}
	return bucketMax
}

// RoundConfidence normalizes a confidence/score value into [0,1] rounded to
// three decimals. Values above 1 are treated as percentages.
func RoundConfidence(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f > 1 {
		f /= 100
	}
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return math.Round(f*1000) / 1000
}

func isElapsedKey(k string) bool {
	return strings.HasSuffix(k, "Ms") || strings.HasSuffix(k, "Duration") ||
		k == "elapsed" || k == "duration"
}

func isScoreKey(k string) bool {
	lk := strings.ToLower(k)
	return strings.Contains(lk, "confidence") || strings.Contains(lk, "score")
}

func isBucketLabel(s string) bool {
	if s == bucketMax || s == bucketUnknown {
		return true
	}
	for _, b := range elapsedBuckets {
		if s == b.label {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// normalizeArray normalizes elements, then applies the declared sort key
// for the array's name. Unrecognized arrays keep their order; the
// chronological trace keys are explicitly exempt.
func normalizeArray(key string, arr []any) []any {
	out := make([]any, len(arr))
	for i, e := range arr {
		if nested, ok := e.([]any); ok {
			out[i] = normalizeArray("", nested)
		} else {
			out[i] = Normalize(e)
		}
	}
	if chronologicalKeys[key] {
		return out
	}
	switch {
	case key == "findings":
		sortByFields(out, "file", "line", "column", "type", "severity", "id")
	case key == "judgments":
		sortByFields(out, "promiseId", "kind", "id")
	case isReferenceKey(key):
		sortStrings(out)
	}
	return out
}

func isReferenceKey(key string) bool {
	return strings.HasSuffix(key, "Ids") || key == "references" || key == "refs"
}

// sortByFields orders map elements by the given field sequence, comparing
// numbers numerically and everything else as strings. Non-map elements sort
// after maps, keeping their relative order.
func sortByFields(arr []any, fields ...string) {
	sort.SliceStable(arr, func(i, j int) bool {
		mi, iok := arr[i].(map[string]any)
		mj, jok := arr[j].(map[string]any)
		if !iok || !jok {
			return iok && !jok
		}
		for _, f := range fields {
			c := compareField(mi[f], mj[f])
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
}

func compareField(a, b any) int {
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(asString(a), asString(b))
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func sortStrings(arr []any) {
	sort.SliceStable(arr, func(i, j int) bool {
		return asString(arr[i]) < asString(arr[j])
	})
}
