package mayan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Config holds Mayan EDMS API configuration.
type Config struct {
	URL          string // base API URL, e.g. "http://mayan:8000/api/v4"
	Token        string
	DocumentType string // document type label, created on demand
	Timeout      time.Duration
}

// Client talks to the Mayan EDMS REST API. Mayan has no Go SDK, so this is
// a plain HTTP client. All calls are best-effort from the caller's point
// of view: any error here triggers the local storage fallback.
type Client struct {
	baseURL      string
	token        string
	documentType string
	httpClient   *http.Client
}

// New creates a new Mayan client.
func New(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("mayan url is required")
	}
	base := strings.TrimSuffix(config.URL, "/")
	if !strings.HasSuffix(base, "/v4") {
		base += "/v4"
	}
	docType := config.DocumentType
	if docType == "" {
		docType = "Default"
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:      base,
		token:        config.Token,
		documentType: docType,
		httpClient:   &http.Client{Timeout: timeout},
	}, nil
}

type documentType struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

type documentTypeList struct {
	Results []documentType `json:"results"`
}

type documentStub struct {
	ID int `json:"id"`
}

// Upload pushes a file into Mayan: ensure the document type exists, create
// a document stub, then attach the file bytes. Returns Mayan's document id
// as an opaque reference. The docvault id is not sent; Mayan keys its own
// records.
func (c *Client) Upload(ctx context.Context, id, filename string, data []byte, contentType string) (string, error) {
	typeID, err := c.getOrCreateDocumentType(ctx, c.documentType)
	if err != nil {
		return "", err
	}

	stubID, err := c.createDocumentStub(ctx, typeID, filename)
	if err != nil {
		return "", err
	}

	if err := c.attachFile(ctx, stubID, filename, data, contentType); err != nil {
		return "", err
	}

	slog.Debug("uploaded to mayan", "id", id, "mayan_id", stubID, "filename", filename)
	return strconv.Itoa(stubID), nil
}

// getOrCreateDocumentType ensures a document type with the given label
// exists and returns its id.
func (c *Client) getOrCreateDocumentType(ctx context.Context, label string) (int, error) {
	var list documentTypeList
	if err := c.doJSON(ctx, http.MethodGet, "/document_types/", nil, &list); err != nil {
		return 0, fmt.Errorf("failed to list document types: %w", err)
	}
	for _, dt := range list.Results {
		if dt.Label == label {
			return dt.ID, nil
		}
	}

	var created documentType
	body := map[string]string{"label": label}
	if err := c.doJSON(ctx, http.MethodPost, "/document_types/", body, &created); err != nil {
		return 0, fmt.Errorf("failed to create document type: %w", err)
	}
	return created.ID, nil
}

// createDocumentStub creates the document record the file will attach to.
func (c *Client) createDocumentStub(ctx context.Context, typeID int, label string) (int, error) {
	var stub documentStub
	body := map[string]any{
		"document_type_id": typeID,
		"label":            label,
		"description":      "Uploaded via Document Vault API",
	}
	if err := c.doJSON(ctx, http.MethodPost, "/documents/", body, &stub); err != nil {
		return 0, fmt.Errorf("failed to create document stub: %w", err)
	}
	return stub.ID, nil
}

// attachFile uploads the file content to an existing document stub.
func (c *Client) attachFile(ctx context.Context, docID int, filename string, data []byte, contentType string) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file_new", filename)
	if err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/documents/%d/files/", c.baseURL, docID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("file upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("file upload error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Fetch retrieves a document's metadata from Mayan by its reference.
func (c *Client) Fetch(ctx context.Context, ref string) (map[string]any, error) {
	var meta map[string]any
	if err := c.doJSON(ctx, http.MethodGet, "/documents/"+ref+"/", nil, &meta); err != nil {
		return nil, fmt.Errorf("failed to fetch document %s: %w", ref, err)
	}
	return meta, nil
}

// doJSON performs one JSON request/response round trip against the API.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}
}
