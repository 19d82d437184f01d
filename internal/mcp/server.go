// Package mcp provides an MCP (Model Context Protocol) server exposing
// shockchain simulations as tools.
package mcp

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server and provides the simulation tools.
type Server struct {
	server *sdk.Server
	logger *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "shockchain")
	Version string // Server version
	Logger  *slog.Logger
}

// NewServer creates a new MCP server with the chain tools registered.
func NewServer(cfg *Config) (*Server, error) {
	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{})

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		server: mcpServer,
		logger: logger,
	}
	s.registerTools()

	return s, nil
}

// registerTools registers all chain MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "chain_simulate",
		Description: "Run one shocked Markov chain simulation from a scenario file or an inline scenario, returning the trajectory with labels and visit counts",
	}, s.handleSimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "chain_validate",
		Description: "Validate a scenario (matrix shapes, row sums, shock probability, initial state) and report every violation",
	}, s.handleValidate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "chain_example",
		Description: "Return the embedded four-state economic example scenario as YAML, usable as a template",
	}, s.handleExample)
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		cancel()
	}()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}
