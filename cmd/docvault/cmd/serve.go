package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/docvault/docvault/internal/api"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the REST API server.

Endpoints:
  POST   /api/v1/documents      Upload a document
  GET    /api/v1/documents      List documents
  GET    /api/v1/documents/:id  Get a document
  PUT    /api/v1/documents/:id  Update document metadata
  DELETE /api/v1/documents/:id  Delete a document
  POST   /api/v1/chat           Chat with document context
  GET    /health                Health check

Identity comes from the X-User-ID and X-User-Role headers set by the
authentication proxy in front of this service.

Example:
  docvault serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	deps, err := buildComponents(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	if err := deps.repo.CreateIndex(ctx); err != nil {
		return fmt.Errorf("failed to prepare document index: %w", err)
	}

	server := api.NewServer(deps.repo, deps.engine, deps.assembler, deps.responder)

	fmt.Fprintf(cmd.ErrOrStderr(), "Starting API server on %s...\n", cfg.Server.Addr)
	return server.Run(cfg.Server.Addr)
}
