package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/odavlstudio/verax-sub011/internal/confidence"
	"github.com/odavlstudio/verax-sub011/internal/format"
	"github.com/odavlstudio/verax-sub011/internal/judge"
	"github.com/odavlstudio/verax-sub011/internal/logging"
	"github.com/odavlstudio/verax-sub011/internal/observe"
	"github.com/odavlstudio/verax-sub011/internal/promise"
	"github.com/odavlstudio/verax-sub011/internal/report"
	"github.com/odavlstudio/verax-sub011/internal/store"
)

var scanFlags struct {
	config   string
	promises string
	source   string
	output   string
	dbPath   string
	policy   string
	parallel int
	settleMs int
	timeout  time.Duration
	headful  bool
	markdown bool
	noStore  bool
}

var scanCmd = &cobra.Command{
	Use:   "scan [url]",
	Short: "Drive promised interactions against a running frontend and judge them",
	Long: `Scan navigates to the target URL, performs each interaction from the
promise catalog in a fresh browser context, and judges whether the promised
observable effect occurred.

Usage:
  verax scan https://app.example.com --promises promises.yaml
  verax scan https://app.example.com --promises promises.yaml --source ./frontend

Passing --source with a resolvable project root enables FULL_PROJECT mode;
without it the scan runs in WEB_SCAN_LIMITED mode and every confidence is
capped at the limited-mode ceiling.

The command exits non-zero when a silent failure is confirmed or suspected.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	f := scanCmd.Flags()
	f.StringVarP(&scanFlags.config, "config", "c", "", "Scan config file (YAML); explicit flags override it")
	f.StringVarP(&scanFlags.promises, "promises", "p", "", "Promise catalog path (YAML; default: built-in smoke catalog)")
	f.StringVar(&scanFlags.source, "source", "", "Project source root; enables FULL_PROJECT mode when resolvable")
	f.StringVarP(&scanFlags.output, "output", "o", "", "Artifact output path (default: .verax/output/run-<id>.json)")
	f.StringVar(&scanFlags.dbPath, "db", store.DefaultDBPath, "Store DB path")
	f.StringVar(&scanFlags.policy, "policy", "downgrade", "Unproven-claim policy: downgrade or drop")
	f.IntVar(&scanFlags.parallel, "parallel", 4, "Parallel judgment workers")
	f.IntVar(&scanFlags.settleMs, "settle", 1500, "Settle wait after each interaction, in milliseconds")
	f.DurationVar(&scanFlags.timeout, "timeout", 30*time.Second, "Per-interaction browser budget")
	f.BoolVar(&scanFlags.headful, "headful", false, "Run the browser with a visible window")
	f.BoolVar(&scanFlags.markdown, "markdown", false, "Render the report as Markdown instead of terminal tables")
	f.BoolVar(&scanFlags.noStore, "no-store", false, "Skip persisting the run to the store")
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logging.New("scan")

	var cfg *fileConfig
	if scanFlags.config != "" {
		var err error
		if cfg, err = loadConfig(scanFlags.config); err != nil {
			return err
		}
		applyScanConfig(cmd, cfg)
	}

	var catalog *promise.Catalog
	var err error
	if scanFlags.promises != "" {
		catalog, err = promise.Load(scanFlags.promises)
	} else {
		log.Info("no promise catalog given, using the built-in smoke catalog")
		catalog, err = promise.Default()
	}
	if err != nil {
		return fmt.Errorf("load promises: %w", err)
	}

	target := catalog.Target
	if cfg != nil && cfg.Target != "" {
		target = cfg.Target
	}
	if len(args) > 0 {
		target = args[0]
	}
	if target == "" {
		return fmt.Errorf("target URL is required: pass it as an argument or set it in the catalog")
	}

	policy, err := parsePolicy(scanFlags.policy)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	mode := confidence.ResolveMode(
		observe.SourceResolvable(scanFlags.source),
		observe.URLReachable(ctx, target),
	)
	log.Info("resolved execution mode",
		"mode", mode.Mode, "ceiling", mode.Ceiling, "reason", mode.Reason)

	observer := observe.New(observe.Config{
		Headless: !scanFlags.headful,
		Timeout:  scanFlags.timeout,
		Settle:   time.Duration(scanFlags.settleMs) * time.Millisecond,
	})
	observations, err := observer.ObserveAll(ctx, target, catalog.Promises)
	if err != nil {
		return fmt.Errorf("observe: %w", err)
	}

	runner := judge.Runner{
		Mode:     &mode,
		Policy:   policy,
		Parallel: scanFlags.parallel,
		Log:      logging.New("judge"),
	}
	runID := uuid.New().String()
	res, err := runner.Judge(ctx, runID, target, catalog.ByID(), observations)
	if err != nil {
		return fmt.Errorf("judge: %w", err)
	}

	artifact, err := res.Artifact()
	if err != nil {
		return err
	}
	outPath := scanFlags.output
	if outPath == "" {
		outPath = fmt.Sprintf(".verax/output/run-%s.json", runID)
	}
	if err := writeArtifact(outPath, artifact); err != nil {
		return err
	}
	log.Info("artifact written", "path", outPath, "findings", len(res.Findings), "dropped", res.Dropped)

	if !scanFlags.noStore {
		if err := persistRun(scanFlags.dbPath, res, artifact); err != nil {
			return err
		}
	}

	renderMode := format.ASCII
	if scanFlags.markdown {
		renderMode = format.Markdown
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.Render(res, renderMode))

	if res.Failed() {
		return fmt.Errorf("silent failures detected (run %s)", runID)
	}
	return nil
}
