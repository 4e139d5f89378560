package cmd

import (
	"fmt"

	"github.com/docvault/docvault/internal/mcp"
	"github.com/spf13/cobra"
)

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start the MCP server",
	Long: `Start the MCP server for AI-agent access to the document vault.

The server communicates via stdio and provides two tools:
  - list_documents: List stored documents with summaries and tags
  - ask_documents:  Answer a question from stored document content

Example:
  docvault serve-mcp`,
	RunE: runServeMCP,
}

func init() {
	rootCmd.AddCommand(serveMCPCmd)
}

func runServeMCP(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	deps, err := buildComponents(cfg)
	if err != nil {
		return err
	}

	server := mcp.NewServer(mcp.Config{
		Name:    cfg.MCP.Name,
		Version: cfg.MCP.Version,
	}, deps.repo, deps.assembler, deps.responder)

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")
	return server.ServeStdio()
}
