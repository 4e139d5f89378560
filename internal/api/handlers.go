package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/docvault/docvault/internal/analysis"
	"github.com/docvault/docvault/internal/chat"
	"github.com/docvault/docvault/internal/repo"
	"github.com/gin-gonic/gin"
)

// requester is the identity forwarded by the upstream auth proxy.
type requester struct {
	ID       string
	Elevated bool
}

// identify reads the identity headers. Missing identity is a 401; the
// handlers themselves never see an anonymous request.
func identify(c *gin.Context) (requester, bool) {
	id := c.GetHeader("X-User-ID")
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return requester{}, false
	}
	return requester{
		ID:       id,
		Elevated: c.GetHeader("X-User-Role") == "admin",
	}, true
}

// handleError maps domain errors onto HTTP statuses.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Document not found"})
	case errors.Is(err, analysis.ErrUnavailable), errors.Is(err, chat.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": err.Error()})
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}

// handleUpload ingests one multipart file upload.
func (s *Server) handleUpload(c *gin.Context) {
	user, ok := identify(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "could not open uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "could not read uploaded file"})
		return
	}

	slog.Info("upload received", "user", user.ID, "filename", fileHeader.Filename)

	doc, err := s.ingestor.Ingest(c.Request.Context(), fileHeader.Filename, data,
		fileHeader.Header.Get("Content-Type"), user.ID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// handleList returns documents visible to the requester, paginated.
func (s *Server) handleList(c *gin.Context) {
	user, ok := identify(c)
	if !ok {
		return
	}

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	docs, err := s.repo.List(c.Request.Context(), user.ID, user.Elevated, skip, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// handleGet returns one document by id.
func (s *Server) handleGet(c *gin.Context) {
	user, ok := identify(c)
	if !ok {
		return
	}

	doc, err := s.repo.Get(c.Request.Context(), c.Param("id"), user.ID, user.Elevated)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// updateRequest carries the mutable metadata fields.
type updateRequest struct {
	Title   *string  `json:"title"`
	Summary *string  `json:"summary"`
	Tags    []string `json:"tags"`
}

// handleUpdate applies metadata changes to a document.
func (s *Server) handleUpdate(c *gin.Context) {
	user, ok := identify(c)
	if !ok {
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	doc, err := s.repo.Update(c.Request.Context(), c.Param("id"), user.ID, user.Elevated,
		req.Title, req.Summary, req.Tags)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// handleDelete removes a document record.
func (s *Server) handleDelete(c *gin.Context) {
	user, ok := identify(c)
	if !ok {
		return
	}

	doc, err := s.repo.Delete(c.Request.Context(), c.Param("id"), user.ID, user.Elevated)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// chatRequest is the chat endpoint payload.
type chatRequest struct {
	Message     string   `json:"message"`
	DocumentIDs []string `json:"document_ids"`
}

// handleChat assembles document context and asks the model.
func (s *Server) handleChat(c *gin.Context) {
	user, ok := identify(c)
	if !ok {
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	contextText, err := s.assembler.Assemble(c.Request.Context(), user.ID, user.Elevated, req.DocumentIDs)
	if err != nil {
		handleError(c, err)
		return
	}

	response, err := s.responder.Respond(c.Request.Context(), contextText, req.Message)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": response})
}
