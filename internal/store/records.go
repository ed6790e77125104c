package store

import (
	"fmt"

	"github.com/odavlstudio/verax-sub011/internal/canonical"
	"github.com/odavlstudio/verax-sub011/internal/judge"
)

// Records converts a judged run into its persistence rows. The artifact is
// the run's canonical bytes, stored verbatim; each finding also carries its
// own canonical detail blob.
func Records(res *judge.RunResult, artifact []byte) (RunRecord, []FindingRecord, error) {
	run := RunRecord{
		ID:       res.RunID,
		Target:   res.Target,
		Mode:     string(res.Mode.Mode),
		Ceiling:  res.Mode.Ceiling,
		Failed:   res.Failed(),
		Artifact: artifact,
	}
	findings := make([]FindingRecord, 0, len(res.Findings))
	for _, f := range res.Findings {
		detail, err := canonical.Marshal(f)
		if err != nil {
			return RunRecord{}, nil, fmt.Errorf("marshal finding %s: %w", f.ID, err)
		}
		findings = append(findings, FindingRecord{
			ID:                 f.ID,
			RunID:              res.RunID,
			PromiseID:          f.PromiseID,
			File:               f.File,
			Line:               f.Line,
			Column:             f.Column,
			Type:               f.Type,
			Severity:           f.Severity,
			Status:             string(f.Status),
			Level:              string(f.Level),
			Confidence:         f.Confidence,
			EvidenceSufficient: f.EvidenceSufficient,
			Detail:             detail,
		})
	}
	return run, findings, nil
}
