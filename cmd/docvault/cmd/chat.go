package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var chatDocumentIDs []string

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask a question against stored documents",
	Long: `Ask a question answered from stored document content.

Without --ids the 5 most recently ingested documents provide context.

Examples:
  # Ask against recent documents
  docvault chat "What is the notice period in my lease?"

  # Ask against specific documents
  docvault chat "Summarize the differences" --ids id1,id2`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringSliceVar(&chatDocumentIDs, "ids", nil, "comma-separated document IDs to use as context")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	question := strings.TrimSpace(args[0])
	cfg := GetConfig()

	deps, err := buildComponents(cfg)
	if err != nil {
		return err
	}

	// The CLI is a single-operator surface, so it sees all documents.
	contextText, err := deps.assembler.Assemble(ctx, "", true, chatDocumentIDs)
	if err != nil {
		return fmt.Errorf("context assembly failed: %w", err)
	}

	reply, err := deps.responder.Respond(ctx, contextText, question)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	fmt.Println(reply)
	return nil
}
