package canonical

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQuantizeElapsed_Buckets(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{0, "<1s"},
		{999, "<1s"},
		{1000, "<5s"},
		{4999, "<5s"},
		{5000, "<10s"},
		{9999, "<10s"},
		{10000, "<30s"},
		{29999, "<30s"},
		{30000, "<1min"},
		{59999, "<1min"},
		{60000, "<5min"},
		{299999, "<5min"},
		{300000, "≥5min"},
		{86400000, "≥5min"},
		{-1, "unknown"},
		{"soon", "unknown"},
		{nil, "unknown"},
		{"<5s", "<5s"}, // already bucketed stays put
	}
	for _, tt := range tests {
		if got := QuantizeElapsed(tt.in); got != tt.want {
			t.Errorf("QuantizeElapsed(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoundConfidence(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{85.5555, 0.856}, // percentage scale
		{0.85555, 0.856},
		{0.8554, 0.855},
		{1.0, 1}, // 1.0 is top of range, not a percentage
		{0, 0},
		{-0.2, 0},
		{250, 1},
	}
	for _, tt := range tests {
		if got := RoundConfidence(tt.in); got != tt.want {
			t.Errorf("RoundConfidence(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func artifact() map[string]any {
	return map[string]any{
		"scanId":    "run-42",
		"timestamp": "2025-08-30T10:11:12Z",
		"scanTime":  1756541472000,
		"elapsedMs": 4321,
		"summary": map[string]any{
			"observedAt":    "later",
			"confidence":    85.5555,
			"judgeDuration": 12,
		},
		"findings": []any{
			map[string]any{"file": "b.js", "line": 9, "column": 1, "type": "silent-failure", "severity": "high", "id": "f2", "detectedAt": "now"},
			map[string]any{"file": "a.js", "line": 30, "column": 2, "type": "silent-failure", "severity": "high", "id": "f1"},
			map[string]any{"file": "a.js", "line": 4, "column": 7, "type": "silent-failure", "severity": "low", "id": "f3"},
		},
		"promiseIds": []any{"p-9", "p-1", "p-5"},
		"trace": []any{
			map[string]any{"step": "click #save"},
			map[string]any{"step": "settle"},
		},
	}
}

func TestNormalize_RulesApply(t *testing.T) {
	got, ok := Normalize(artifact()).(map[string]any)
	if !ok {
		t.Fatal("normalize lost the map shape")
	}
	for _, dropped := range []string{"timestamp", "scanTime"} {
		if _, there := got[dropped]; there {
			t.Errorf("field %q must be removed", dropped)
		}
	}
	if got["elapsedMs"] != "<5s" {
		t.Errorf("elapsedMs = %v, want <5s", got["elapsedMs"])
	}
	sum := got["summary"].(map[string]any)
	if _, there := sum["observedAt"]; there {
		t.Error("nested observedAt must be removed")
	}
	if sum["confidence"] != 0.856 {
		t.Errorf("confidence = %v, want 0.856", sum["confidence"])
	}
	if sum["judgeDuration"] != "<1s" {
		t.Errorf("judgeDuration = %v, want <1s", sum["judgeDuration"])
	}

	findings := got["findings"].([]any)
	var order []string
	for _, f := range findings {
		order = append(order, f.(map[string]any)["id"].(string))
	}
	if diff := cmp.Diff([]string{"f3", "f1", "f2"}, order); diff != "" {
		t.Errorf("findings must sort by (file,line,column,type,severity,id) (-want +got):\n%s", diff)
	}

	refs := got["promiseIds"].([]any)
	if diff := cmp.Diff([]any{"p-1", "p-5", "p-9"}, refs); diff != "" {
		t.Errorf("reference ids must sort lexically (-want +got):\n%s", diff)
	}

	trace := got["trace"].([]any)
	if trace[0].(map[string]any)["step"] != "click #save" {
		t.Error("trace arrays are chronological and must keep order")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	once := Normalize(artifact())
	twice := Normalize(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("normalize(normalize(x)) != normalize(x) (-once +twice):\n%s", diff)
	}
}

func TestNormalize_TotalOverOddShapes(t *testing.T) {
	inputs := []any{
		nil,
		"plain string",
		3.14,
		[]any{nil, map[string]any{"timestamp": 1}, []any{"nested"}},
		map[string]any{"elapsedMs": map[string]any{"weird": true}},
		map[string]any{"score": "not a number"},
	}
	for _, in := range inputs {
		Normalize(in) // must not panic
	}
}

func TestMarshal_ByteIdenticalAcrossLogicalDuplicates(t *testing.T) {
	a := artifact()
	b := artifact()
	// Same logical content, different wall-clock noise.
	b["timestamp"] = "1999-01-01T00:00:00Z"
	b["scanTime"] = 1
	b["summary"].(map[string]any)["observedAt"] = "whenever"

	ba, err := Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	bb, err := Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ba, bb) {
		t.Errorf("canonical bytes differ:\n%s\n----\n%s", ba, bb)
	}
	if ba[len(ba)-1] != '\n' {
		t.Error("canonical output must end with a newline")
	}
}

func TestMarshal_BucketLabelsStayLiteral(t *testing.T) {
	out, err := Marshal(map[string]any{"elapsedMs": 4999, "waitDuration": 86400000})
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.Contains(s, `"<5s"`) || !strings.Contains(s, `"≥5min"`) {
		t.Errorf("bucket labels must serialize literally:\n%s", s)
	}
	if strings.Contains(s, "\\u003c") {
		t.Errorf("output must not HTML-escape bucket labels:\n%s", s)
	}

	roundTrip, err := MarshalBytes(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, roundTrip) {
		t.Errorf("canonical output must re-canonicalize to itself:\n%s\n----\n%s", out, roundTrip)
	}
}

func TestMarshal_StructInput(t *testing.T) {
	type inner struct {
		Confidence float64 `json:"confidence"`
	}
	type doc struct {
		Name      string `json:"name"`
		Timestamp string `json:"timestamp"`
		Inner     inner  `json:"inner"`
	}
	out, err := Marshal(doc{Name: "x", Timestamp: "now", Inner: inner{Confidence: 0.93456}})
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"inner\": {\n    \"confidence\": 0.935\n  },\n  \"name\": \"x\"\n}\n"
	if string(out) != want {
		t.Errorf("canonical struct output:\n%s\nwant:\n%s", out, want)
	}
}

func TestContentID_Deterministic(t *testing.T) {
	fields := map[string]any{"selector": "#save", "file": "app.js", "line": 12}
	a := ContentID("prm", fields)
	b := ContentID("prm", map[string]any{"line": 12, "file": "app.js", "selector": "#save"})
	if a != b {
		t.Errorf("content id depends on iteration order: %s vs %s", a, b)
	}
	if len(a) != len("prm-")+12 {
		t.Errorf("unexpected id shape: %s", a)
	}
	if a == ContentID("prm", map[string]any{"selector": "#other", "file": "app.js", "line": 12}) {
		t.Error("different identifying fields must produce different ids")
	}
}
