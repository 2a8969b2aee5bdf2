package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/delphi-cli/internal/config"
	"github.com/mj1618/delphi-cli/internal/server"
	"github.com/mj1618/delphi-cli/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing delphi-cli tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes the bridge and
targeting commands as tools. AI agents can call tools directly without shell
overhead.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  delphi-cli serve
  delphi-cli serve --process FineAid
  delphi-cli serve --transport streamable-http --http-port 8080
  delphi-cli serve --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "", "Transport: stdio, streamable-http (default from config)")
	serveCmd.Flags().Int("http-port", 0, "HTTP port for streamable-http transport (default from config)")
	serveCmd.Flags().Duration("cache-ttl", 0, "Control tree cache TTL, e.g. 500ms (0 disables; default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	c := currentConfig()
	if cmd.Flags().Changed("transport") {
		t, _ := cmd.Flags().GetString("transport")
		c.Transport = config.TransportType(t)
	}
	if cmd.Flags().Changed("http-port") {
		c.HTTPPort, _ = cmd.Flags().GetInt("http-port")
	}
	if cmd.Flags().Changed("cache-ttl") {
		c.CacheTTL, _ = cmd.Flags().GetDuration("cache-ttl")
	}
	if err := c.Validate(); err != nil {
		return err
	}

	scfg := server.Config{
		Version:   version.Version,
		Transport: string(c.Transport),
		Port:      c.HTTPPort,
		CacheTTL:  c.CacheTTL,
	}
	a := newApp()
	srv := server.New(scfg, a.bridges, a.targeter, a.log.Named("mcp"))
	if err := srv.Serve(scfg); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
