package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/props"
	"github.com/aretw0/props/internal/cli"
	"github.com/aretw0/props/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the declared models as an MCP Server, so AI agents can list, describe
and decode against them.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		trusted, _ := cmd.Flags().GetBool("trusted")

		p, err := cli.Open(cmd.Context(), options(cmd))
		if err != nil {
			return err
		}

		opts := []mcp.Option{mcp.WithVersion(props.Version), mcp.WithLogger(p.Logger)}
		if trusted {
			opts = append(opts, mcp.WithTrustedInput())
		}
		srv := mcp.NewServer(p.Codec, opts...)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			p.Logger.Info("Starting props MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			p.Logger.Info("Starting props MCP Server (SSE)", "port", port)

			// Create a context that cancels on interrupt signal
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("MCP server failed: %w", err)
			}
			p.Logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().Bool("trusted", false, "Honour class tags in decoded data")
}
