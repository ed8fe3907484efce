package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docstash/docstash/internal/config"
	"github.com/docstash/docstash/internal/cryptox"
	"github.com/docstash/docstash/internal/database"
	"github.com/docstash/docstash/internal/logging"
	"github.com/docstash/docstash/internal/services"
	"github.com/docstash/docstash/internal/settings"
)

// Server wraps the MCP server with document-store functionality
type Server struct {
	server *mcp.Server
	dbCtx  *database.Context
	docs   *services.DocumentService
}

// NewServer creates a new MCP server instance
func NewServer(log logging.Logger) (*Server, error) {
	dbCtx, err := database.CreateDatabase("")
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	store, err := settings.Open(config.GetSettingsPath())
	if err != nil {
		_ = database.CloseDatabase(dbCtx)
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "docstash",
		Version: "0.1.0",
	}, nil)

	s := &Server{
		server: mcpServer,
		dbCtx:  dbCtx,
		docs:   services.NewDocumentService(dbCtx, cryptox.NewService(store), log),
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// Run initializes the document service and starts the MCP server with stdio
// transport.
func (s *Server) Run(ctx context.Context) error {
	defer database.CloseDatabase(s.dbCtx)

	if _, err := s.docs.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize document service: %w", err)
	}

	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	// document_search
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "document_search",
		Description: "Search documents by title, description and recognized text",
	}, s.handleSearch)

	// document_get
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "document_get",
		Description: "Get a document's metadata by id",
	}, s.handleGet)

	// document_list
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "document_list",
		Description: "List stored documents",
	}, s.handleList)

	// document_tags
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "document_tags",
		Description: "List the tag ids attached to a document",
	}, s.handleTags)

	// document_delete
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "document_delete",
		Description: "Delete a document and its encrypted files",
	}, s.handleDelete)
}

// Input/Output types for each tool

type SearchInput struct {
	Query string `json:"query" jsonschema:"required,description=The search query"`
}

type SearchOutput struct {
	Documents []DocumentSummary `json:"documents"`
}

type GetInput struct {
	ID string `json:"id" jsonschema:"required,description=The document id"`
}

type GetOutput struct {
	Document DocumentSummary `json:"document"`
}

type ListInput struct {
	FolderID  *string `json:"folderId,omitempty" jsonschema:"description=Only documents in this folder"`
	Favorites *bool   `json:"favorites,omitempty" jsonschema:"description=Only favorite documents"`
	Tag       *string `json:"tag,omitempty" jsonschema:"description=Only documents carrying this tag id"`
}

type ListOutput struct {
	Documents []DocumentSummary `json:"documents"`
}

type TagsInput struct {
	ID string `json:"id" jsonschema:"required,description=The document id"`
}

type TagsOutput struct {
	Tags []string `json:"tags"`
}

type DeleteInput struct {
	ID string `json:"id" jsonschema:"required,description=The document id to delete"`
}

type DeleteOutput struct {
	Message string `json:"message"`
}

type DocumentSummary struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      *string  `json:"description,omitempty"`
	OriginalFileName string   `json:"originalFileName"`
	PageCount        int64    `json:"pageCount"`
	FileSize         int64    `json:"fileSize"`
	MimeType         string   `json:"mimeType"`
	OCRStatus        string   `json:"ocrStatus"`
	CreatedAt        string   `json:"createdAt"`
	UpdatedAt        string   `json:"updatedAt"`
	FolderID         *string  `json:"folderId,omitempty"`
	IsFavorite       bool     `json:"isFavorite"`
	Tags             []string `json:"tags"`
}

func summarize(doc database.DocumentRecord) DocumentSummary {
	return DocumentSummary{
		ID:               doc.ID,
		Title:            doc.Title,
		Description:      doc.Description,
		OriginalFileName: doc.OriginalFileName,
		PageCount:        doc.PageCount,
		FileSize:         doc.FileSize,
		MimeType:         doc.MimeType,
		OCRStatus:        string(doc.OCRStatus),
		CreatedAt:        doc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        doc.UpdatedAt.Format(time.RFC3339),
		FolderID:         doc.FolderID,
		IsFavorite:       doc.IsFavorite,
		Tags:             doc.TagIDs,
	}
}

func summarizeAll(docs []database.DocumentRecord) []DocumentSummary {
	out := make([]DocumentSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, summarize(d))
	}
	return out
}

// Tool handlers

func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	docs, err := s.docs.Search(ctx, input.Query)
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("failed to search documents: %w", err)
	}

	return nil, SearchOutput{Documents: summarizeAll(docs)}, nil
}

func (s *Server) handleGet(ctx context.Context, req *mcp.CallToolRequest, input GetInput) (*mcp.CallToolResult, GetOutput, error) {
	doc, err := s.docs.Get(ctx, input.ID)
	if err != nil {
		return nil, GetOutput{}, fmt.Errorf("failed to get document: %w", err)
	}
	if doc == nil {
		return nil, GetOutput{}, fmt.Errorf("document not found: %s", input.ID)
	}

	return nil, GetOutput{Document: summarize(*doc)}, nil
}

func (s *Server) handleList(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	var (
		docs []database.DocumentRecord
		err  error
	)
	switch {
	case input.Tag != nil:
		docs, err = s.docs.GetByTag(ctx, *input.Tag)
	case input.Favorites != nil && *input.Favorites:
		docs, err = s.docs.GetFavorites(ctx)
	case input.FolderID != nil:
		docs, err = s.docs.GetInFolder(ctx, input.FolderID)
	default:
		docs, err = s.docs.GetAll(ctx, database.ListOptions{})
	}
	if err != nil {
		return nil, ListOutput{}, fmt.Errorf("failed to list documents: %w", err)
	}

	return nil, ListOutput{Documents: summarizeAll(docs)}, nil
}

func (s *Server) handleTags(ctx context.Context, req *mcp.CallToolRequest, input TagsInput) (*mcp.CallToolResult, TagsOutput, error) {
	tags, err := s.docs.GetTags(ctx, input.ID)
	if err != nil {
		return nil, TagsOutput{}, fmt.Errorf("failed to list tags: %w", err)
	}

	return nil, TagsOutput{Tags: tags}, nil
}

func (s *Server) handleDelete(ctx context.Context, req *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if err := s.docs.Delete(ctx, input.ID); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete document: %w", err)
	}

	return nil, DeleteOutput{
		Message: fmt.Sprintf("Deleted document '%s'", input.ID),
	}, nil
}
