package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eabdelmoneim/autodoc/internal/adapters/driven/storage/sqlite"
	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
	"github.com/eabdelmoneim/autodoc/internal/core/services"
	"github.com/eabdelmoneim/autodoc/internal/logger"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Run the full pipeline: summarise, materialise, embed",
	Long: `Runs all three documentation stages in order: bottom-up LLM
summarisation of the repository, materialisation into linked markdown
documents, and chunking plus embedding into the vector index.

Summarisation is resumable: nodes with an up-to-date summary from a
previous run are reused without new model calls. Use --force to
reprocess everything.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Summarise the repository into JSON records",
	Args:  cobra.NoArgs,
	RunE:  runProcess,
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Materialise JSON records into markdown documents",
	Args:  cobra.NoArgs,
	RunE:  runConvert,
}

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Chunk and embed markdown documents into the vector index",
	Args:  cobra.NoArgs,
	RunE:  runEmbed,
}

func init() {
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "reprocess every node, ignoring prior summaries")
	processCmd.Flags().BoolVar(&indexForce, "force", false, "reprocess every node, ignoring prior summaries")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(embedCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	return forEachRepo(cmd, func(p *services.PipelineService, repo string) error {
		if err := p.Run(cmd.Context()); err != nil {
			return fmt.Errorf("index %s: %w", displayRepo(repo), err)
		}
		cmd.Printf("Indexed %s\n", displayRepo(repo))
		return nil
	})
}

func runProcess(cmd *cobra.Command, _ []string) error {
	return forEachRepo(cmd, func(p *services.PipelineService, repo string) error {
		summary, err := p.ProcessRepository(cmd.Context())
		if err != nil {
			return fmt.Errorf("process %s: %w", displayRepo(repo), err)
		}
		cmd.Printf("Processed %d nodes, reused %d\n", summary.Processed, summary.Skipped)
		return nil
	})
}

func runConvert(cmd *cobra.Command, _ []string) error {
	return forEachRepo(cmd, func(p *services.PipelineService, repo string) error {
		summary, err := p.ConvertJSONToMarkdown(cmd.Context())
		if err != nil {
			return fmt.Errorf("convert %s: %w", displayRepo(repo), err)
		}
		cmd.Printf("Wrote %d documents\n", summary.Written)
		return nil
	})
}

func runEmbed(cmd *cobra.Command, _ []string) error {
	return forEachRepo(cmd, func(p *services.PipelineService, repo string) error {
		summary, err := p.CreateVectorStore(cmd.Context())
		if err != nil {
			return fmt.Errorf("embed %s: %w", displayRepo(repo), err)
		}
		cmd.Printf("Embedded %d chunks from %d documents\n", summary.Chunks, summary.Documents)
		return nil
	})
}

// forEachRepo builds a fully wired pipeline per configured repository
// and applies fn. A local root is a single repository.
func forEachRepo(cmd *cobra.Command, fn func(*services.PipelineService, string) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	llm, embedder, err := newModelServices(cfg)
	if err != nil {
		return err
	}
	defer llm.Close()
	defer embedder.Close()

	for _, repo := range repoTargets(cfg) {
		scoped := scopedConfig(cfg, repo)

		source, err := newSource(cmd.Context(), scoped, repo)
		if err != nil {
			return fmt.Errorf("open source %s: %w", displayRepo(repo), err)
		}

		err = func() error {
			defer source.Close()

			records, vectors, err := openStores(scoped)
			if err != nil {
				return err
			}
			defer vectors.Close()

			pipeline := services.NewPipeline(scoped, source, llm, embedder, records, vectors,
				services.WithForceReprocess(indexForce))
			return fn(pipeline, repo)
		}()
		if err != nil {
			return err
		}
	}
	return nil
}

// openQueryStores opens the vector store alone, for read-side commands.
// When several remote repositories are configured the repo flag selects
// one, defaulting to the first.
func openQueryStores(cfg *domain.Config, repo string) (driven.VectorStore, error) {
	if cfg.Root == "" && repo == "" && len(cfg.Repos) > 0 {
		repo = cfg.Repos[0]
		if len(cfg.Repos) > 1 {
			logger.Debug("Multiple repositories configured, querying %s", repo)
		}
	}
	scoped := scopedConfig(cfg, repo)

	vectors, err := sqlite.New(scoped.DataRoot())
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return vectors, nil
}

func displayRepo(repo string) string {
	if repo == "" {
		return "repository"
	}
	return repo
}
