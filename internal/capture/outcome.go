// Package capture defines the uniform result wrapper for per-sensor
// observation data and the closed set of sensor summaries the judgment
// pipeline consumes. Construction never fails: a sensor that broke mid-flight
// becomes a failed Outcome, not an error the pipeline has to unwind.
package capture

// Sensor identifies which collector produced an outcome.
type Sensor string

const (
	SensorDOM        Sensor = "dom"
	SensorNavigation Sensor = "navigation"
	SensorNetwork    Sensor = "network"
	SensorConsole    Sensor = "console"
	SensorState      Sensor = "state"
	SensorUIState    Sensor = "ui-state"
)

// Status reports whether a sensor produced usable data.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Outcome is the atomic per-sensor capture result. Two invariants are
// enforced at construction: a failed outcome carries no data, and a
// successful outcome carries no error message.
type Outcome struct {
	Sensor Sensor         `json:"sensor"`
	Status Status         `json:"status"`
	Data   map[string]any `json:"data,omitempty"`
	Error  string         `json:"error,omitempty"`
	Stage  string         `json:"stage,omitempty"`
}

// New builds an Outcome, normalizing the data/error fields so the
// status invariants hold no matter what the caller passed.
func New(sensor Sensor, status Status, data map[string]any, errMsg, stage string) Outcome {
	o := Outcome{Sensor: sensor, Status: status, Data: data, Error: errMsg, Stage: stage}
	switch status {
	case StatusFailed:
		o.Data = nil
	case StatusSuccess:
		o.Error = ""
	}
	return o
}

// Success wraps data from a sensor that completed normally.
func Success(sensor Sensor, data map[string]any, stage string) Outcome {
	return New(sensor, StatusSuccess, data, "", stage)
}

// Failure records a sensor that produced nothing usable.
func Failure(sensor Sensor, message, stage string) Outcome {
	return New(sensor, StatusFailed, nil, message, stage)
}

// Usable reports whether the outcome carries data worth folding into
// evidence. Partial outcomes count: a sensor that captured half the
// picture still captured half the picture.
func (o Outcome) Usable() bool {
	return o.Status == StatusSuccess || o.Status == StatusPartial
}
