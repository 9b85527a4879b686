package main

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	cmserver "github.com/storyforge/chapter-master/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio transport)",
	Long: `Start the MCP server over stdio for AI hosts.

Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "chapter-master": {
        "command": "chapter-master",
        "args": ["serve"]
      }
    }
  }`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := cmserver.New()
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}
		defer cleanup()

		return server.ServeStdio(s)
	},
}
