package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/services"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the pipeline when repository files change",
	Long: `Watches the local repository root and re-runs the full pipeline
after each debounced batch of file changes. Unchanged nodes are reused
via their fingerprints, so incremental reruns are cheap.

Only local repositories can be watched.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Root == "" {
		return fmt.Errorf("%w: watch requires a local root", domain.ErrInvalidConfig)
	}

	return forEachRepo(cmd, func(p *services.PipelineService, _ string) error {
		cmd.Printf("Watching %s\n", cfg.Root)

		watcher := services.NewWatcher(cfg.Root, domain.NewIgnoreMatcher(cfg.Ignore), p)
		err := watcher.Watch(cmd.Context())
		if errors.Is(err, cmd.Context().Err()) {
			return nil
		}
		return err
	})
}
