package api

import (
	"context"
	"net/http"

	"github.com/docvault/docvault/pkg/models"
	"github.com/gin-gonic/gin"
)

// DocumentRepo is the record store surface the API needs.
type DocumentRepo interface {
	List(ctx context.Context, ownerID string, elevated bool, skip, limit int) ([]models.Document, error)
	Get(ctx context.Context, id, ownerID string, elevated bool) (*models.Document, error)
	Update(ctx context.Context, id, ownerID string, elevated bool, title, summary *string, tags []string) (*models.Document, error)
	Delete(ctx context.Context, id, ownerID string, elevated bool) (*models.Document, error)
}

// Ingestor runs the upload workflow.
type Ingestor interface {
	Ingest(ctx context.Context, filename string, data []byte, contentType, ownerID string) (*models.Document, error)
}

// ContextAssembler builds the chat context string.
type ContextAssembler interface {
	Assemble(ctx context.Context, ownerID string, elevated bool, ids []string) (string, error)
}

// ChatResponder answers a question given an assembled context.
type ChatResponder interface {
	Respond(ctx context.Context, contextText, question string) (string, error)
}

// Server holds the state for the REST API server. Authentication is an
// upstream concern: the server trusts the identity headers set by the
// auth proxy in front of it.
type Server struct {
	repo      DocumentRepo
	ingestor  Ingestor
	assembler ContextAssembler
	responder ChatResponder
	router    *gin.Engine
}

// NewServer creates a new Server instance.
func NewServer(repo DocumentRepo, ingestor Ingestor, assembler ContextAssembler, responder ChatResponder) *Server {
	r := gin.Default()
	s := &Server{
		repo:      repo,
		ingestor:  ingestor,
		assembler: assembler,
		responder: responder,
		router:    r,
	}
	s.setupRoutes()
	return s
}

// Run starts the server on the specified address.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/api/v1")
	v1.POST("/documents", s.handleUpload)
	v1.GET("/documents", s.handleList)
	v1.GET("/documents/:id", s.handleGet)
	v1.PUT("/documents/:id", s.handleUpdate)
	v1.DELETE("/documents/:id", s.handleDelete)
	v1.POST("/chat", s.handleChat)
}

// Health check
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
