package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arjunmahishi/jsinv/jsinv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
)

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "serve the analysis as MCP tools over stdio",
		Action: func(_ context.Context, cmd *cli.Command) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			logger.Info("starting MCP server", slog.String("transport", "stdio"), slog.String("version", version))
			return server.ServeStdio(newMCPServer())
		},
	}
}

func newMCPServer() *server.MCPServer {
	s := server.NewMCPServer(
		"jsinv",
		version,
		server.WithToolCapabilities(false),
	)
	registerTools(s)
	return s
}

// registerTools defines all tools on the server and registers their handlers.
func registerTools(s *server.MCPServer) {
	analyzeSourceTool := mcp.NewTool("analyze_source",
		mcp.WithDescription("List the conditionals, classes, object literals and functions in a JavaScript or TypeScript snippet, with 1-based line and 0-based column of each. Fails with a parse error (message and position) when the snippet is not valid."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source text to analyze")),
		mcp.WithString("language", mcp.Description("Grammar: javascript (default), typescript or tsx")),
		mcp.WithString("source_type", mcp.Description("module (default) or script")),
	)
	s.AddTool(analyzeSourceTool, analyzeSourceHandler)

	analyzeFileTool := mcp.NewTool("analyze_file",
		mcp.WithDescription("Same as analyze_source, for a file on disk. The grammar is chosen from the file extension unless language is given."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Path to the file")),
		mcp.WithString("language", mcp.Description("Grammar: javascript, typescript or tsx")),
		mcp.WithString("source_type", mcp.Description("module (default) or script")),
	)
	s.AddTool(analyzeFileTool, analyzeFileHandler)

	scanPathTool := mcp.NewTool("scan_path",
		mcp.WithDescription("Analyze every .js/.ts/.tsx file under a directory (node_modules, dist and similar are skipped). Files that fail to parse are reported with an error instead of a report."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Directory to scan")),
		mcp.WithString("language", mcp.Description("Restrict to one grammar: javascript, typescript or tsx")),
	)
	s.AddTool(scanPathTool, scanPathHandler)
}

func analyzeSourceHandler(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report, err := jsinv.Analyze(source, toolAnalyzeOptions(request, ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructured(report, summaryText(report)), nil
}

func analyzeFileHandler(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := request.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report, err := jsinv.AnalyzeFile(file, toolAnalyzeOptions(request, file))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructured(report, summaryText(report)), nil
}

func scanPathHandler(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results, err := jsinv.Scan(jsinv.ScanOptions{
		Path:     path,
		Language: request.GetString("language", ""),
	})
	if err != nil {
		return mcp.NewToolResultError("Failed to scan: " + err.Error()), nil
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	text := fmt.Sprintf("%d files analyzed, %d failed to parse", len(results), failed)
	return mcp.NewToolResultStructured(map[string]any{"files": results}, text), nil
}

func toolAnalyzeOptions(request mcp.CallToolRequest, file string) jsinv.AnalyzeOptions {
	return jsinv.AnalyzeOptions{
		Language:   languageFor(request.GetString("language", ""), file),
		SourceType: jsinv.SourceType(request.GetString("source_type", "")),
	}
}

func summaryText(r *jsinv.Report) string {
	s := r.Summary()
	return fmt.Sprintf("%d conditionals, %d classes, %d object literals, %d functions",
		s.Conditionals, s.Classes, s.Objects, s.Functions)
}
