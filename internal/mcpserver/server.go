// Package mcpserver exposes the pipeline over the Model Context Protocol
// as a single prism_query tool fronting pipeline.Engine.Answer.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/prism-dev/prism/internal/pipeline"
	"github.com/prism-dev/prism/internal/router"
)

// Server wraps an mcp-go server bound to a single pipeline.Engine.
type Server struct {
	engine *pipeline.Engine
	avail  router.Availability
	mcp    *server.MCPServer
}

// New constructs a Server that registers the prism_query tool against
// engine, using avail to decide which model rungs are reachable.
func New(engine *pipeline.Engine, avail router.Availability) *Server {
	mcpServer := server.NewMCPServer("prism-mcp", "1.0.0", server.WithToolCapabilities(true))

	s := &Server{engine: engine, avail: avail, mcp: mcpServer}
	addQueryTool(mcpServer, s)
	return s
}

// Serve blocks on stdio until the process receives SIGINT/SIGTERM.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting prism-mcp server on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("mcp server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("received shutdown signal, stopping")
		cancel()
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func addQueryTool(s *server.MCPServer, srv *Server) {
	tool := mcp.NewTool(
		"prism_query",
		mcp.WithDescription("Answer a natural-language question about this codebase with a token-minimized, compressed chunk selection and the recommended model tier to send it to."),
		mcp.WithString("question", mcp.Required(), mcp.Description("the natural-language question")),
		mcp.WithString("current_file", mcp.Description("the file the caller currently has open, used for file-proximity scoring and complexity analysis")),
	)
	s.AddTool(tool, srv.handleQuery)
}

type queryResponse struct {
	QueryID    string   `json:"query_id"`
	Intent     string   `json:"intent"`
	Scope      string   `json:"scope"`
	Complexity float64  `json:"complexity"`
	Model      string   `json:"model"`
	Reason     string   `json:"reason"`
	Chunks     []string `json:"chunks"`
}

func (s *Server) handleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	argsMap, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	question, ok := argsMap["question"].(string)
	if !ok || question == "" {
		return mcp.NewToolResultError("question parameter is required"), nil
	}
	currentFile, _ := argsMap["current_file"].(string)

	answer, err := s.engine.Answer(ctx, question, pipeline.QueryContext{CurrentFile: currentFile}, s.avail)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	chunks := make([]string, len(answer.Chunks))
	for i, c := range answer.Chunks {
		chunks[i] = fmt.Sprintf("// %s (%s)\n%s", c.FilePath, c.Name, c.Content)
	}

	resp := queryResponse{
		QueryID:    answer.QueryID,
		Intent:     string(answer.Intent.Type),
		Scope:      string(answer.Intent.Scope),
		Complexity: answer.Complexity.Score,
		Model:      answer.Model.Model,
		Reason:     answer.Model.Reason,
		Chunks:     chunks,
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return mcp.NewToolResultText(string(payload)), nil
}
