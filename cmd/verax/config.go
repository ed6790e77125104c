package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// fileConfig is the optional scan configuration file. Every field has a
// matching flag; an explicitly set flag always wins over the file value.
type fileConfig struct {
	Target   string `yaml:"target"`
	Source   string `yaml:"source"`
	Promises string `yaml:"promises"`
	DB       string `yaml:"db"`
	Output   string `yaml:"output"`
	Policy   string `yaml:"policy"`
	Parallel int    `yaml:"parallel"`
	SettleMs int    `yaml:"settleMs"`
}

func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyScanConfig fills scan flags from the config file wherever the user
// did not set the flag on the command line.
func applyScanConfig(cmd *cobra.Command, cfg *fileConfig) {
	f := cmd.Flags()
	if cfg.Promises != "" && !f.Changed("promises") {
		scanFlags.promises = cfg.Promises
	}
	if cfg.Source != "" && !f.Changed("source") {
		scanFlags.source = cfg.Source
	}
	if cfg.DB != "" && !f.Changed("db") {
		scanFlags.dbPath = cfg.DB
	}
	if cfg.Output != "" && !f.Changed("output") {
		scanFlags.output = cfg.Output
	}
	if cfg.Policy != "" && !f.Changed("policy") {
		scanFlags.policy = cfg.Policy
	}
	if cfg.Parallel > 0 && !f.Changed("parallel") {
		scanFlags.parallel = cfg.Parallel
	}
	if cfg.SettleMs > 0 && !f.Changed("settle") {
		scanFlags.settleMs = cfg.SettleMs
	}
}
