package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odavlstudio/verax-sub011/internal/format"
	"github.com/odavlstudio/verax-sub011/internal/store"
)

var reportFlags struct {
	dbPath   string
	limit    int
	markdown bool
	artifact bool
}

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Show stored runs, or one run's findings",
	Long: `Without arguments, report lists stored runs newest first. With a run ID
it renders that run's findings table; --artifact prints the stored canonical
JSON instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportFlags.dbPath, "db", store.DefaultDBPath, "Store DB path")
	f.IntVar(&reportFlags.limit, "limit", 20, "Max runs to list (0 = all)")
	f.BoolVar(&reportFlags.markdown, "markdown", false, "Render as Markdown instead of terminal tables")
	f.BoolVar(&reportFlags.artifact, "artifact", false, "Print the stored canonical artifact JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	st, err := store.Open(reportFlags.dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	renderMode := format.ASCII
	if reportFlags.markdown {
		renderMode = format.Markdown
	}

	if len(args) == 0 {
		return listRuns(cmd, st, renderMode)
	}
	return showRun(cmd, st, args[0], renderMode)
}

func listRuns(cmd *cobra.Command, st store.Store, mode format.Mode) error {
	runs, err := st.ListRuns(reportFlags.limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no stored runs")
		return nil
	}

	t := format.NewTable(mode)
	t.Header("Run", "Target", "Mode", "Result", "Created")
	for _, r := range runs {
		result := "PASS"
		if r.Failed {
			result = "FAIL"
		}
		t.Row(r.ID, r.Target, r.Mode, result, r.CreatedAt)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.String())
	return nil
}

func showRun(cmd *cobra.Command, st store.Store, runID string, mode format.Mode) error {
	run, err := st.GetRun(runID)
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}

	if reportFlags.artifact {
		_, err = cmd.OutOrStdout().Write(run.Artifact)
		return err
	}

	findings, err := st.ListFindings(runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s — %s (%s, ceiling %s)\n\n",
		run.ID, run.Target, run.Mode, format.Percent(run.Ceiling))

	t := format.NewTable(mode)
	t.Header("Source", "Promise", "Type", "Status", "Level", "Confidence", "Evidence")
	t.RightAlign(6)
	for _, f := range findings {
		src := ""
		if f.File != "" {
			src = fmt.Sprintf("%s:%d:%d", f.File, f.Line, f.Column)
		}
		t.Row(src, f.PromiseID, f.Type, f.Status, f.Level,
			format.Percent(f.Confidence), format.BoolMark(f.EvidenceSufficient))
	}
	fmt.Fprintln(out, t.String())

	if run.Failed {
		fmt.Fprintln(out, "RESULT: FAIL")
	} else {
		fmt.Fprintln(out, "RESULT: PASS")
	}
	return nil
}
