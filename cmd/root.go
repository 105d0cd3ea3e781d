package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "prometheus-mcp"

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "MCP server for Prometheus metrics, alerts and status",
		Long: `prometheus-mcp is a Model Context Protocol (MCP) server that exposes
the Prometheus HTTP API as a set of tools.

AI assistants can run instant and range PromQL queries, discover series,
label values and metric metadata, and inspect scrape targets, alerts,
rules and server status. Results are returned as readable text.

The server supports basic auth, bearer tokens and multi-tenant
organization IDs, configured through a YAML file or environment variables.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version for the root command
func SetVersion(version string) {
	rootCmd.Version = version
}
