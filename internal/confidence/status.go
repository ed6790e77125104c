package confidence

import "log/slog"

// Status is a finding's claim strength.
type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusSuspected Status = "SUSPECTED"
	StatusDropped   Status = "DROPPED"
	StatusInfo      Status = "INFO"
)

// DowngradePolicy says what happens to a CONFIRMED claim that lacks
// sufficient evidence.
type DowngradePolicy int

const (
	// DowngradeToSuspected keeps the finding with a weaker claim. Default.
	DowngradeToSuspected DowngradePolicy = iota
	// DropUnproven removes the finding entirely.
	DropUnproven
)

// Enforce applies the Evidence Law to a proposed status: CONFIRMED without
// sufficient evidence is downgraded (or dropped, per policy) here, inside
// this component, so a forgetful caller cannot bypass the guarantee. The
// downgrade is logged, not raised — it is a correctness guarantee, not a
// failure path.
func (a Assessment) Enforce(proposed Status, policy DowngradePolicy, log *slog.Logger, promiseID string) Status {
	if proposed != StatusConfirmed || a.EvidenceSufficient {
		return proposed
	}
	if log == nil {
		log = slog.Default()
	}
	enforced := StatusSuspected
	if policy == DropUnproven {
		enforced = StatusDropped
	}
	log.Warn("evidence law: downgrading unproven CONFIRMED claim",
		"promise", promiseID,
		"proposed", string(proposed),
		"enforced", string(enforced),
		"finalScore", a.FinalScore,
	)
	return enforced
}
