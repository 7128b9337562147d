package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eabdelmoneim/autodoc/internal/adapters/driven/ai"
	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/services"
)

var (
	queryLimit int
	queryJSON  bool
	queryRepo  string
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search the generated documentation",
	Long: `Embeds the query text and returns the nearest documentation chunks
from the vector index, best match first.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", services.DefaultSearchLimit, "maximum number of results")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	queryCmd.Flags().StringVar(&queryRepo, "repo", "", "repository to query when several are configured")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := ai.CreateEmbeddingService(cfg.LLMs)
	if err != nil {
		return err
	}
	defer embedder.Close()

	vectors, err := openQueryStores(cfg, queryRepo)
	if err != nil {
		return err
	}
	defer vectors.Close()

	search := services.NewSearch(embedder, vectors)
	hits, err := search.Query(cmd.Context(), args[0], queryLimit)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputHitsJSON(cmd, hits)
	}
	return outputHitsTable(cmd, hits)
}

func outputHitsJSON(cmd *cobra.Command, hits []domain.ChunkHit) error {
	data, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputHitsTable(cmd *cobra.Command, hits []domain.ChunkHit) error {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range hits {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, hits[i].Chunk.DocumentPath, hits[i].Similarity)
		cmd.Printf("      %s\n", snippet(hits[i].Chunk.Content, 160))
		cmd.Println()
	}
	return nil
}

// snippet truncates content to a single display line.
func snippet(content string, max int) string {
	for i, r := range content {
		if r == '\n' {
			content = content[:i]
			break
		}
	}
	if len(content) > max {
		return content[:max] + "..."
	}
	return content
}
