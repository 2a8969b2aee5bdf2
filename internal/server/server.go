// Package server exposes delphi-cli as MCP tools for AI agents.
package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mj1618/delphi-cli/internal/bridge"
	"github.com/mj1618/delphi-cli/internal/target"
)

// Config holds MCP server configuration.
type Config struct {
	Name      string
	Version   string
	Transport string
	Port      int
	CacheTTL  time.Duration
}

// Server wraps the MCP server with the bridge, the targeter and a tree
// cache. Tool calls are serialised: the bridge client and the input
// backends are not safe for concurrent use.
type Server struct {
	bridges  *bridge.Manager
	targeter *target.Targeter
	cache    *TreeCache
	log      *zap.Logger
	mu       sync.Mutex
	mcp      *mcpserver.MCPServer
}

// New creates a server with every delphi tool registered.
func New(cfg Config, bridges *bridge.Manager, targeter *target.Targeter, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	name := cfg.Name
	if name == "" {
		name = "delphi-cli"
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		bridges:  bridges,
		targeter: targeter,
		cache:    NewTreeCache(cfg.CacheTTL),
		log:      log,
	}
	s.mcp = mcpserver.NewMCPServer(name, version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer {
	return s.mcp
}

// Serve starts the MCP server with the configured transport and blocks.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "stdio", "":
		s.log.Info("serving MCP over stdio")
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		addr := fmt.Sprintf(":%d", cfg.Port)
		s.log.Info("serving MCP over streamable HTTP", zap.String("addr", addr))
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(addr)
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

// source returns the connected bridge as a cached control source.
func (s *Server) source(ctx context.Context) (cachedSource, error) {
	c, err := s.bridges.Bridge(ctx)
	if err != nil {
		return cachedSource{}, err
	}
	return cachedSource{client: c, cache: s.cache}, nil
}
