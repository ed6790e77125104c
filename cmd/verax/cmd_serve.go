package main

import (
	"context"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/odavlstudio/verax-sub011/internal/logging"
	mcpserver "github.com/odavlstudio/verax-sub011/internal/mcp"
	"github.com/odavlstudio/verax-sub011/internal/store"
)

var serveFlags struct {
	dbPath string
}

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"serve-mcp"},
	Short:   "Start the MCP server over stdio for agent host integration",
	Long: `Starts an MCP server over stdin/stdout exposing judgment tools:
classify_dom_change, judge_interaction, normalize_artifact, list_runs, get_run.

The server monitors for parent process death. When the host disconnects or
restarts, the server self-terminates to prevent zombie processes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.dbPath, "db", store.DefaultDBPath, "Store DB path")
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logging.New("mcp")

	var st store.Store
	if sqlStore, err := store.Open(serveFlags.dbPath); err != nil {
		// Run-reading tools will error; judgment tools still work.
		log.Warn("store unavailable, serving without run history", "err", err)
	} else {
		st = sqlStore
		defer sqlStore.Close()
	}
	srv := mcpserver.NewServer(st)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, cancel)

	log.Info("starting verax MCP server over stdio (parent watchdog active)")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
