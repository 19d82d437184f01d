package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driftworks/shockchain/internal/logging"
	"github.com/driftworks/shockchain/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the MCP server over stdio",
		Long: `Run the MCP server over stdio.

Exposes the tools chain_simulate, chain_validate, and chain_example so
MCP clients can run and check simulations. The server reads requests
from stdin and writes responses to stdout; logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			logger := logging.NewLogger(level, cmd.ErrOrStderr())

			server, err := mcp.NewServer(&mcp.Config{
				Name:    "shockchain",
				Version: version,
				Logger:  logger,
			})
			if err != nil {
				return fmt.Errorf("creating MCP server: %w", err)
			}

			logger.Info("mcp server starting", "version", version)
			return server.Run(cmd.Context())
		},
	}
}
