package capture

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNew_NormalizesInvariants(t *testing.T) {
	tests := []struct {
		name   string
		got    Outcome
		want   Outcome
	}{
		{
			name: "failed outcome drops data",
			got:  New(SensorNetwork, StatusFailed, map[string]any{"requests": 3}, "socket closed", "settle"),
			want: Outcome{Sensor: SensorNetwork, Status: StatusFailed, Error: "socket closed", Stage: "settle"},
		},
		{
			name: "success outcome drops error",
			got:  New(SensorDOM, StatusSuccess, map[string]any{"bytes": 512}, "leftover", "after"),
			want: Outcome{Sensor: SensorDOM, Status: StatusSuccess, Data: map[string]any{"bytes": 512}, Stage: "after"},
		},
		{
			name: "partial keeps both",
			got:  New(SensorConsole, StatusPartial, map[string]any{"errors": 1}, "listener detached early", "interaction"),
			want: Outcome{Sensor: SensorConsole, Status: StatusPartial, Data: map[string]any{"errors": 1}, Error: "listener detached early", Stage: "interaction"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got); diff != "" {
				t.Errorf("outcome mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	s := Success(SensorState, map[string]any{"keys": []string{"cart"}}, "after")
	if s.Status != StatusSuccess || s.Error != "" {
		t.Errorf("Success built %+v", s)
	}
	f := Failure(SensorNavigation, "target crashed", "before")
	if f.Status != StatusFailed || f.Data != nil || f.Error != "target crashed" {
		t.Errorf("Failure built %+v", f)
	}
}

func TestUsable(t *testing.T) {
	if !Success(SensorDOM, nil, "").Usable() {
		t.Error("success should be usable")
	}
	if !New(SensorDOM, StatusPartial, nil, "", "").Usable() {
		t.Error("partial should be usable")
	}
	if Failure(SensorDOM, "x", "").Usable() {
		t.Error("failed should not be usable")
	}
}

func TestFromOutcome_FailedSensorReadsUnavailable(t *testing.T) {
	nav := NavigationSummary{URLChanged: true, ToURL: "https://example.com/done"}
	got := nav.FromOutcome(Failure(SensorNavigation, "frame detached", "after"))
	if got.Available || got.URLChanged {
		t.Errorf("failed sensor must contribute an unavailable summary, got %+v", got)
	}

	ok := nav.FromOutcome(Success(SensorNavigation, nil, "after"))
	if !ok.Available || !ok.URLChanged {
		t.Errorf("usable sensor should keep its signal, got %+v", ok)
	}
}
