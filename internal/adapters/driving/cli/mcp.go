package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eabdelmoneim/autodoc/internal/adapters/driven/ai"
	"github.com/eabdelmoneim/autodoc/internal/adapters/driving/mcp"
	"github.com/eabdelmoneim/autodoc/internal/core/services"
)

var mcpRepo string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the documentation index over MCP",
	Long: `Start the Model Context Protocol server, exposing a search_docs tool
over the generated documentation index.

By default, the server communicates over stdio using JSON-RPC and can be
used with MCP-compatible AI assistants. Use --port to start an HTTP
server instead.

Examples:
  # Stdio mode (default)
  autodoc mcp serve

  # HTTP mode
  autodoc mcp serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringVar(&mcpRepo, "repo", "", "repository to serve when several are configured")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := ai.CreateEmbeddingService(cfg.LLMs)
	if err != nil {
		return err
	}
	defer embedder.Close()

	vectors, err := openQueryStores(cfg, mcpRepo)
	if err != nil {
		return err
	}
	defer vectors.Close()

	ports := &mcp.Ports{
		Search:     services.NewSearch(embedder, vectors),
		ChatPrompt: cfg.ChatPrompt,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}
	return server.Run(cmd.Context())
}
