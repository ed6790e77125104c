package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odavlstudio/verax-sub011/internal/confidence"
)

// execRoot runs the CLI in-process and captures its combined output.
func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestParsePolicy(t *testing.T) {
	if p, err := parsePolicy("downgrade"); err != nil || p != confidence.DowngradeToSuspected {
		t.Errorf("downgrade: %v %v", p, err)
	}
	if p, err := parsePolicy("drop"); err != nil || p != confidence.DropUnproven {
		t.Errorf("drop: %v %v", p, err)
	}
	if _, err := parsePolicy("lenient"); err == nil {
		t.Error("unknown policy must error")
	}
}

func TestNormalizeCommand(t *testing.T) {
	dir := t.TempDir()
	messy := filepath.Join(dir, "messy.json")
	canon := filepath.Join(dir, "canon.json")
	raw := `{"zebra":1,"apple":2,"timestamp":"2026-08-30T10:00:00Z","elapsedMs":4999}`
	if err := os.WriteFile(messy, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := execRoot(t, "normalize", messy, "-o", canon); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	got, err := os.ReadFile(canon)
	if err != nil {
		t.Fatal(err)
	}
	s := string(got)
	if strings.Contains(s, "timestamp") {
		t.Error("volatile field must be dropped")
	}
	if !strings.Contains(s, `"<5s"`) {
		t.Errorf("elapsed must be bucketed:\n%s", s)
	}
	if strings.Index(s, `"apple"`) > strings.Index(s, `"zebra"`) {
		t.Errorf("keys must sort:\n%s", s)
	}

	// A canonical file passes --check; the messy one does not.
	if _, err := execRoot(t, "normalize", canon, "--check"); err != nil {
		t.Errorf("canonical input must pass --check: %v", err)
	}
	normalizeFlags.check = false
	if _, err := execRoot(t, "normalize", messy, "--check"); err == nil {
		t.Error("non-canonical input must fail --check")
	}
	normalizeFlags.check = false
}

func TestJudgeCommand_OfflineSilentFailure(t *testing.T) {
	dir := t.TempDir()
	promises := filepath.Join(dir, "promises.yaml")
	observations := filepath.Join(dir, "observations.json")
	artifact := filepath.Join(dir, "artifact.json")

	catalogYAML := `target: https://app.example.com
promises:
  - id: p-save
    selector: "#save"
    file: src/Cart.jsx
    line: 88
    column: 6
`
	page := `<html><body><button id=\"save\">Save</button></body></html>`
	obsJSON := `[{"promiseId":"p-save","interactionIndex":0,` +
		`"beforeHtml":"` + page + `","afterHtml":"` + page + `","elapsedMs":120}]`

	if err := os.WriteFile(promises, []byte(catalogYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(observations, []byte(obsJSON), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := execRoot(t, "judge", observations,
		"--promises", promises, "-o", artifact, "--no-store")
	if err == nil || !strings.Contains(err.Error(), "silent failures detected") {
		t.Fatalf("quiet interaction must fail the run, got err=%v", err)
	}

	data, readErr := os.ReadFile(artifact)
	if readErr != nil {
		t.Fatalf("artifact not written: %v", readErr)
	}
	s := string(data)
	if !strings.Contains(s, `"silent-failure"`) {
		t.Errorf("artifact missing the finding:\n%s", s)
	}
	if !strings.Contains(s, `"WEB_SCAN_LIMITED"`) {
		t.Errorf("no resolvable source must judge in limited mode:\n%s", s)
	}
	if !strings.Contains(s, `"<1s"`) || strings.Contains(s, `"elapsedMs": 120`) {
		t.Errorf("artifact must carry bucketed elapsed time:\n%s", s)
	}
}

func TestApplyScanConfig_FlagsWin(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "verax.yaml")
	cfgYAML := `target: https://cfg.example.com
promises: cfg-promises.yaml
policy: drop
parallel: 8
settleMs: 250
`
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Target != "https://cfg.example.com" || cfg.Parallel != 8 {
		t.Errorf("config round-trip: %+v", cfg)
	}

	// Simulate `scan --policy downgrade -c verax.yaml`: the explicit flag
	// must survive, everything else comes from the file.
	scanFlags.policy = "downgrade"
	scanFlags.promises = ""
	scanFlags.parallel = 4
	scanFlags.settleMs = 1500
	if err := scanCmd.Flags().Set("policy", "downgrade"); err != nil {
		t.Fatal(err)
	}
	applyScanConfig(scanCmd, cfg)

	if scanFlags.policy != "downgrade" {
		t.Errorf("explicit flag must win over config, got %q", scanFlags.policy)
	}
	if scanFlags.promises != "cfg-promises.yaml" || scanFlags.parallel != 8 || scanFlags.settleMs != 250 {
		t.Errorf("unset flags must take config values: %+v", scanFlags)
	}
}
