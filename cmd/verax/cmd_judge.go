package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/odavlstudio/verax-sub011/internal/capture"
	"github.com/odavlstudio/verax-sub011/internal/confidence"
	"github.com/odavlstudio/verax-sub011/internal/judge"
	"github.com/odavlstudio/verax-sub011/internal/logging"
	"github.com/odavlstudio/verax-sub011/internal/observe"
	"github.com/odavlstudio/verax-sub011/internal/promise"
	"github.com/odavlstudio/verax-sub011/internal/store"
)

var judgeFlags struct {
	promises  string
	source    string
	target    string
	reachable bool
	output    string
	dbPath    string
	policy    string
	parallel  int
	noStore   bool
}

var judgeCmd = &cobra.Command{
	Use:   "judge [observations.json]",
	Short: "Judge pre-captured observations without a browser",
	Long: `Judge runs the full pipeline — scope classification, evidence folding,
confidence assessment, Evidence Law enforcement — over observations captured
earlier (or produced by another harness). Use - to read from stdin.

The execution mode comes from --source and --reachable, exactly as it would
from a live scan: no resolvable source means WEB_SCAN_LIMITED.`,
	Args: cobra.ExactArgs(1),
	RunE: runJudge,
}

func init() {
	f := judgeCmd.Flags()
	f.StringVarP(&judgeFlags.promises, "promises", "p", "", "Promise catalog path (YAML)")
	f.StringVar(&judgeFlags.source, "source", "", "Project source root; enables FULL_PROJECT mode when resolvable")
	f.StringVar(&judgeFlags.target, "target", "", "Target URL the observations came from (default: catalog target)")
	f.BoolVar(&judgeFlags.reachable, "reachable", true, "Whether the target URL was reachable at capture time")
	f.StringVarP(&judgeFlags.output, "output", "o", "", "Artifact output path (default: stdout)")
	f.StringVar(&judgeFlags.dbPath, "db", store.DefaultDBPath, "Store DB path")
	f.StringVar(&judgeFlags.policy, "policy", "downgrade", "Unproven-claim policy: downgrade or drop")
	f.IntVar(&judgeFlags.parallel, "parallel", 4, "Parallel judgment workers")
	f.BoolVar(&judgeFlags.noStore, "no-store", false, "Skip persisting the run to the store")
	_ = judgeCmd.MarkFlagRequired("promises")
}

func runJudge(cmd *cobra.Command, args []string) error {
	catalog, err := promise.Load(judgeFlags.promises)
	if err != nil {
		return fmt.Errorf("load promises: %w", err)
	}

	var data []byte
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read observations: %w", err)
	}
	var observations []capture.Observation
	if err := json.Unmarshal(data, &observations); err != nil {
		return fmt.Errorf("parse observations: %w", err)
	}

	policy, err := parsePolicy(judgeFlags.policy)
	if err != nil {
		return err
	}
	mode := confidence.ResolveMode(observe.SourceResolvable(judgeFlags.source), judgeFlags.reachable)

	target := judgeFlags.target
	if target == "" {
		target = catalog.Target
	}

	runner := judge.Runner{
		Mode:     &mode,
		Policy:   policy,
		Parallel: judgeFlags.parallel,
		Log:      logging.New("judge"),
	}
	runID := uuid.New().String()
	res, err := runner.Judge(cmd.Context(), runID, target, catalog.ByID(), observations)
	if err != nil {
		return fmt.Errorf("judge: %w", err)
	}

	artifact, err := res.Artifact()
	if err != nil {
		return err
	}
	if judgeFlags.output == "" {
		if _, err := cmd.OutOrStdout().Write(artifact); err != nil {
			return err
		}
	} else if err := writeArtifact(judgeFlags.output, artifact); err != nil {
		return err
	}

	if !judgeFlags.noStore {
		if err := persistRun(judgeFlags.dbPath, res, artifact); err != nil {
			return err
		}
	}

	if res.Failed() {
		return fmt.Errorf("silent failures detected (run %s)", runID)
	}
	return nil
}
