package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/docvault/docvault/internal/fetch"
	"github.com/spf13/cobra"
)

var (
	ingestURL   string
	ingestOwner string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a file or URL into the vault",
	Long: `Ingest a document from the command line.

The file is stored (Mayan EDMS or local fallback), its text extracted,
and an AI summary and tags generated.

Examples:
  # Ingest a local file
  docvault ingest ./contracts/lease.pdf

  # Ingest a web page as a markdown document
  docvault ingest --url https://example.com/handbook`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngestCmd,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "web page URL to ingest instead of a file")
	ingestCmd.Flags().StringVar(&ingestOwner, "owner", "cli", "owner id to record on the document")
}

func runIngestCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if ingestURL == "" && len(args) == 0 {
		return fmt.Errorf("either a file argument or --url is required")
	}

	cfg := GetConfig()
	deps, err := buildComponents(cfg)
	if err != nil {
		return err
	}

	if err := deps.repo.CreateIndex(ctx); err != nil {
		return fmt.Errorf("failed to prepare document index: %w", err)
	}

	var filename string
	var data []byte
	if ingestURL != "" {
		fetcher := fetch.New(fetch.Config{})
		page, err := fetcher.Fetch(ctx, ingestURL)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		filename = pageFilename(page)
		data = []byte(page.Markdown)
	} else {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		filename = filepath.Base(args[0])
	}

	doc, err := deps.engine.Ingest(ctx, filename, data, "", ingestOwner)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Ingested document:\n")
	fmt.Printf("  ID:       %s\n", doc.ID)
	fmt.Printf("  Title:    %s\n", doc.Title)
	fmt.Printf("  Summary:  %s\n", doc.Summary)
	fmt.Printf("  Tags:     %s\n", strings.Join(doc.Tags, ", "))
	if doc.MayanDocumentID != "" {
		fmt.Printf("  Store:    %s\n", doc.MayanDocumentID)
	} else {
		fmt.Printf("  Store:    local fallback\n")
	}
	return nil
}

// pageFilename derives an ingestion filename for a fetched page.
func pageFilename(page *fetch.Page) string {
	name := page.Title
	if name == "" {
		name = page.URL
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, name)
	name = strings.Trim(name, "-")
	if name == "" {
		name = "page"
	}
	return name + ".md"
}
