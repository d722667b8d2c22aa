package commands

import (
	"errors"
	"fmt"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/phrazzld/flashgen/internal/mcp"
)

func newMCPCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start an MCP server on stdio",
		Long: `Run flashgen as an MCP (Model Context Protocol) server on stdio so
agents can call the generate_flashcards and list_flashcards tools.

Logs go to stderr; stdout carries the protocol.

Configure in an MCP client, e.g.:
  {
    "mcpServers": {
      "flashgen": {"command": "flashgen", "args": ["mcp"]}
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(cmd, a)

			server := mcp.NewServer(a.Service, versionInfo.Version, a.Logger)
			stdio := mcpserver.NewStdioServer(server)
			stdio.SetErrorLogger(slog.NewLogLogger(a.Logger.Handler(), slog.LevelError))

			a.Logger.Info("MCP server starting on stdio")
			err = stdio.Listen(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil && !errors.Is(err, cmd.Context().Err()) {
				return fmt.Errorf("mcp server error: %w", err)
			}
			a.Logger.Info("MCP server stopped")
			return nil
		},
	}
}
