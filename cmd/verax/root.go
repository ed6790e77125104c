package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odavlstudio/verax-sub011/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "verax",
	Short: "Silent-failure detection for web frontends",
	Long: "Verax drives declared interactions against a running frontend and judges\n" +
		"whether each one produced its promised observable effect. Findings carry\n" +
		"scope classification, evidence, and execution-mode-bounded confidence.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (default info)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(judgeCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
