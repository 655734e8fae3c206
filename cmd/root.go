package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for the mcp-kusto application.
var rootCmd = &cobra.Command{
	Use:   "mcp-kusto",
	Short: "MCP server for Kusto (Azure Data Explorer) queries",
	Long: `mcp-kusto is a Model Context Protocol (MCP) server that lets an AI
assistant run read-only KQL queries against configured Kusto clusters.
It reuses a previously cached Azure credential (no interactive prompts)
and enforces query safety policy, row limits and timeouts before
anything reaches a remote cluster.

When run without subcommands, it starts the MCP server (equivalent to
'mcp-kusto serve').`,
	// Cobra would otherwise print usage for handled runtime errors.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command, injected at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcp-kusto version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newServeCmd())
}
