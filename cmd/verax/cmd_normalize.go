package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/odavlstudio/verax-sub011/internal/canonical"
)

var normalizeFlags struct {
	output string
	check  bool
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Rewrite a JSON artifact into canonical deterministic form",
	Long: `Normalize drops volatile fields, buckets elapsed times, rounds confidence
scores to three decimals, and orders keys and arrays deterministically, so
two artifacts from logically identical runs compare byte-for-byte equal.
Use - to read from stdin. Normalizing twice yields the same bytes as once.`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	f := normalizeCmd.Flags()
	f.StringVarP(&normalizeFlags.output, "output", "o", "", "Output path (default: stdout)")
	f.BoolVar(&normalizeFlags.check, "check", false, "Exit non-zero if the input is not already canonical")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}

	canon, err := canonical.MarshalBytes(data)
	if err != nil {
		return err
	}

	if normalizeFlags.check {
		if !bytes.Equal(data, canon) {
			return fmt.Errorf("%s is not in canonical form", args[0])
		}
		return nil
	}

	if normalizeFlags.output == "" {
		_, err = cmd.OutOrStdout().Write(canon)
		return err
	}
	return writeArtifact(normalizeFlags.output, canon)
}
