package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/docvault/docvault/pkg/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
}

// DocumentLister lists document records. The MCP surface is a
// single-operator tool, so it always has elevated visibility.
type DocumentLister interface {
	List(ctx context.Context, ownerID string, elevated bool, skip, limit int) ([]models.Document, error)
}

// ContextAssembler builds the chat context string.
type ContextAssembler interface {
	Assemble(ctx context.Context, ownerID string, elevated bool, ids []string) (string, error)
}

// ChatResponder answers a question given an assembled context.
type ChatResponder interface {
	Respond(ctx context.Context, contextText, question string) (string, error)
}

// Server wraps the MCP server with document vault tools.
type Server struct {
	mcpServer *server.MCPServer
	repo      DocumentLister
	assembler ContextAssembler
	responder ChatResponder
}

// NewServer creates a new MCP server with document tools.
func NewServer(config Config, repo DocumentLister, assembler ContextAssembler, responder ChatResponder) *Server {
	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		assembler: assembler,
		responder: responder,
	}

	listTool := mcp.NewTool("list_documents",
		mcp.WithDescription("List stored documents with their AI-generated summaries and tags."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of documents to return (default: 20)"),
		),
	)
	mcpServer.AddTool(listTool, s.listHandler)

	askTool := mcp.NewTool("ask_documents",
		mcp.WithDescription("Ask a question answered from stored document content."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
		mcp.WithString("document_ids",
			mcp.Description("Comma-separated document IDs to use as context (default: 5 most recent)"),
		),
	)
	mcpServer.AddTool(askTool, s.askHandler)

	return s
}

// listHandler handles the list_documents tool call.
func (s *Server) listHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)

	docs, err := s.repo.List(ctx, "", true, 0, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}

	result, err := json.Marshal(docs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

// askHandler handles the ask_documents tool call.
func (s *Server) askHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question parameter is required"), nil
	}

	var ids []string
	if raw := req.GetString("document_ids", ""); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	contextText, err := s.assembler.Assemble(ctx, "", true, ids)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("context assembly failed: %v", err)), nil
	}

	reply, err := s.responder.Respond(ctx, contextText, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chat failed: %v", err)), nil
	}
	return mcp.NewToolResultText(reply), nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
