package cli

import (
	"fmt"
	"os"
	"strings"

	inframcp "github.com/felixgeelhaar/compaudit/internal/infrastructure/mcp"
	"github.com/felixgeelhaar/compaudit/internal/infrastructure/wiring"
	"github.com/spf13/cobra"
)

var (
	mcpTransport string
	mcpAddr      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the compaudit MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}
		opts := wiring.Options{Document: documentPath, Actor: "mcp"}
		if logLevel != "" {
			opts.Logger = wiring.NewLogger(os.Stderr, logLevel)
		}
		ctx := commandContext(cmd)
		server, err := inframcp.NewServer(ctx, root, opts)
		if err != nil {
			return MapError(err)
		}

		switch strings.ToLower(mcpTransport) {
		case "stdio", "":
			return server.ServeStdio(ctx)
		case "http":
			return server.ServeHTTP(ctx, mcpAddr)
		case "ws", "websocket":
			return server.ServeWebSocket(ctx, mcpAddr)
		}
		return fmt.Errorf("unsupported transport: %s", mcpTransport)
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport to use (stdio, http, ws)")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", ":8080", "Address for http/ws transports")
	RootCmd.AddCommand(mcpCmd)
}
