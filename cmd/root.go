package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the quickgraph application
var rootCmd = &cobra.Command{
	Use:   "quickgraph",
	Short: "MCP server exposing the Intuit GraphQL API",
	Long: `quickgraph is an MCP (Model Context Protocol) server that exposes the
Intuit/QuickBooks GraphQL API as tools for AI assistants.

It authenticates with an OAuth2 refresh token, caches the resulting access
token, forwards GraphQL queries to the Intuit API, and relays responses
(including errors) back to the caller.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "quickgraph version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
