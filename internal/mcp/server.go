// Package mcp exposes the extraction engine as Model Context Protocol
// tools over stdio, so agent tooling can drive the extractor directly.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/docuflow/invoice-extractor/internal/batch"
	"github.com/docuflow/invoice-extractor/internal/config"
	"github.com/docuflow/invoice-extractor/internal/descriptions"
	"github.com/docuflow/invoice-extractor/internal/extract"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	engine    *extract.Engine
	runner    *batch.Runner
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP server around the extraction engine
func NewServer(cfg *config.Config, engine *extract.Engine, runner *batch.Runner, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		engine:    engine,
		runner:    runner,
		mcpServer: mcpServer,
		logger:    logger,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractFileTool := mcp.NewTool(
		"invoice_extract_file",
		mcp.WithDescription(descriptions.InvoiceExtractFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the invoice PDF file"),
		),
	)
	s.mcpServer.AddTool(extractFileTool, s.handleExtractFile)

	extractDirectoryTool := mcp.NewTool(
		"invoice_extract_directory",
		mcp.WithDescription(descriptions.InvoiceExtractDirectoryDescription),
		mcp.WithString("directory",
			mcp.Description("Directory containing invoice PDFs (uses configured directory if empty)"),
		),
	)
	s.mcpServer.AddTool(extractDirectoryTool, s.handleExtractDirectory)

	serverInfoTool := mcp.NewTool(
		"invoice_server_info",
		mcp.WithDescription(descriptions.InvoiceServerInfoDescription),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions

func (s *Server) handleExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if filepath.Ext(path) == "" {
		return mcp.NewToolResultError(fmt.Sprintf("not a PDF path: %s", path)), nil
	}

	rec, err := s.engine.ExtractFile(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Extraction record for %s (status: %s)\n\n%s", rec.File, rec.Status, data)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleExtractDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	directory := s.config.InputDir // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	result, err := s.runner.Run(ctx, directory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf(
		"Batch %s over %s: %d documents (%d complete, %d partial, %d failed)\n\n%s",
		result.RunID, directory,
		result.Summary.Total, result.Summary.Complete, result.Summary.Partial, result.Summary.Failed,
		data,
	)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := fmt.Sprintf("%s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("Invoice directory: %s\n", s.config.InputDir)
	text += fmt.Sprintf("Yield threshold: %d non-whitespace chars (OCR below this)\n", s.config.YieldThreshold)
	text += fmt.Sprintf("Resolver window: %d bytes\n", s.config.ResolverWindow)
	text += fmt.Sprintf("Max file size: %d MB\n", s.config.MaxFileSize/(1024*1024))

	matches, err := filepath.Glob(filepath.Join(s.config.InputDir, "*.pdf"))
	if err == nil {
		text += fmt.Sprintf("\nPDF files visible: %d\n", len(matches))
		for i, m := range matches {
			if i >= 10 {
				text += fmt.Sprintf("   ... and %d more files\n", len(matches)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s\n", i+1, filepath.Base(m))
		}
	}

	text += "\nAvailable tools: invoice_extract_file, invoice_extract_directory, invoice_server_info\n"
	return mcp.NewToolResultText(text), nil
}

// Run serves tools over stdio until the parent process closes the stream
func (s *Server) Run(_ context.Context) error {
	s.logger.Debug("starting MCP server", "dir", s.config.InputDir)

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
