// Package cli implements the cobra command tree. Commands construct
// their dependencies from the loaded configuration on demand, so the
// binary starts without touching the network or the output directory.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eabdelmoneim/autodoc/internal/adapters/driven/ai"
	configfile "github.com/eabdelmoneim/autodoc/internal/adapters/driven/config/file"
	"github.com/eabdelmoneim/autodoc/internal/adapters/driven/storage/jsonstore"
	"github.com/eabdelmoneim/autodoc/internal/adapters/driven/storage/sqlite"
	"github.com/eabdelmoneim/autodoc/internal/connectors/filesystem"
	"github.com/eabdelmoneim/autodoc/internal/connectors/github"
	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
	"github.com/eabdelmoneim/autodoc/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "autodoc",
	Short: "Generate searchable documentation for a code repository",
	Long: `Autodoc summarises a repository bottom-up with an LLM, materialises
the summaries into linked markdown documents, and embeds them into a
searchable vector index.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		fmt.Sprintf("config file (default %s)", configfile.DefaultConfigFile))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the command tree.
func Execute(buildVersion string) {
	if buildVersion != "" {
		version = buildVersion
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration file.
func loadConfig() (*domain.Config, error) {
	return configfile.Load(cfgFile)
}

// scopedConfig returns a copy of cfg whose output directory is scoped to
// one repository. With a local root or a single remote repository the
// config is returned unchanged.
func scopedConfig(cfg *domain.Config, repo string) *domain.Config {
	if cfg.Root != "" || len(cfg.Repos) <= 1 {
		return cfg
	}
	scoped := *cfg
	scoped.Output = fmt.Sprintf("%s/%s", cfg.Output, repo)
	return &scoped
}

// newSource builds the content source for one repository: the local
// filesystem when root is set, the GitHub API otherwise.
func newSource(ctx context.Context, cfg *domain.Config, repo string) (driven.ContentSource, error) {
	if cfg.Root != "" {
		return filesystem.New(cfg.Root)
	}
	return github.New(ctx, github.Config{
		Owner: cfg.OrgName,
		Repo:  repo,
		Token: os.Getenv("GITHUB_TOKEN"),
	})
}

// repoTargets lists the repositories a run covers. A local root is a
// single unnamed target.
func repoTargets(cfg *domain.Config) []string {
	if cfg.Root != "" {
		return []string{""}
	}
	return cfg.Repos
}

// openStores opens the record and vector stores for one scoped config.
func openStores(cfg *domain.Config) (driven.RecordStore, driven.VectorStore, error) {
	records, err := jsonstore.New(cfg.JSONRoot())
	if err != nil {
		return nil, nil, err
	}
	vectors, err := sqlite.New(cfg.DataRoot())
	if err != nil {
		return nil, nil, err
	}
	return records, vectors, nil
}

// newModelServices constructs the LLM and embedding services from the
// configured preference list.
func newModelServices(cfg *domain.Config) (driven.LLMService, driven.EmbeddingService, error) {
	llm, err := ai.CreateLLMService(cfg.LLMs)
	if err != nil {
		return nil, nil, err
	}
	embedder, err := ai.CreateEmbeddingService(cfg.LLMs)
	if err != nil {
		llm.Close()
		return nil, nil, err
	}
	return llm, embedder, nil
}
