package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odavlstudio/verax-sub011/internal/confidence"
	"github.com/odavlstudio/verax-sub011/internal/judge"
	"github.com/odavlstudio/verax-sub011/internal/store"
)

// writeArtifact writes canonical bytes to path, creating parent dirs.
func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// parsePolicy maps the CLI flag onto the Evidence Law downgrade policy.
func parsePolicy(s string) (confidence.DowngradePolicy, error) {
	switch s {
	case "", "downgrade":
		return confidence.DowngradeToSuspected, nil
	case "drop":
		return confidence.DropUnproven, nil
	}
	return 0, fmt.Errorf("unknown policy %q (want downgrade or drop)", s)
}

// persistRun saves a judged run and its canonical artifact to the store.
func persistRun(dbPath string, res *judge.RunResult, artifact []byte) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	run, findings, err := store.Records(res, artifact)
	if err != nil {
		return err
	}
	if err := st.SaveRun(run, findings); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}
