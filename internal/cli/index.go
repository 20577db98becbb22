package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glintbot/glint/internal/config"
	"github.com/glintbot/glint/internal/gitctx"
	"github.com/glintbot/glint/internal/index"
	"github.com/glintbot/glint/internal/llm"
)

var flagForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the repository embedding index",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the embedding index for the current repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := repoRoot()
		if err != nil {
			exitCode = ExitUsageError
			return err
		}
		cfg, err := config.Load(root, nil, nil)
		if err != nil {
			exitCode = ExitRuntimeError
			return err
		}

		path := config.IndexPath(root)
		if flagForce {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				exitCode = ExitRuntimeError
				return fmt.Errorf("removing stale index: %w", err)
			}
		}

		embed, err := llm.NewEmbed(cfg.EmbedProvider, cfg.EmbedModel)
		if err != nil {
			exitCode = ExitAuthError
			return err
		}

		idx, err := index.BuildOrLoad(context.Background(), root, path, embed, index.Options{
			PathFilter:   cfg.MatchesPath,
			ShowProgress: true,
		})
		if err != nil {
			exitCode = ExitRuntimeError
			return err
		}
		if idx == nil {
			exitCode = ExitRuntimeError
			return fmt.Errorf("index construction aborted (embedding quota exceeded?)")
		}
		fmt.Fprintf(os.Stdout, "Indexed %d chunks (model %s) -> %s\n", len(idx.Entries), idx.Model, path)
		return nil
	},
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index size and age",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := repoRoot()
		if err != nil {
			exitCode = ExitUsageError
			return err
		}
		idx, err := index.Load(config.IndexPath(root))
		if err != nil {
			fmt.Fprintln(os.Stdout, "No index found. Run `glint index build`.")
			return nil
		}
		files := make(map[string]bool)
		for _, e := range idx.Entries {
			files[e.Path] = true
		}
		fmt.Fprintf(os.Stdout, "Entries:   %d\nFiles:     %d\nModel:     %s\nCreated:   %s\n",
			len(idx.Entries), len(files), idx.Model, idx.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		return nil
	},
}

var indexClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the repository index",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := repoRoot()
		if err != nil {
			exitCode = ExitUsageError
			return err
		}
		if err := os.Remove(config.IndexPath(root)); err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(os.Stdout, "No index to clear.")
				return nil
			}
			exitCode = ExitRuntimeError
			return fmt.Errorf("removing index: %w", err)
		}
		fmt.Fprintln(os.Stdout, "Index cleared.")
		return nil
	},
}

func init() {
	indexBuildCmd.Flags().BoolVar(&flagForce, "force", false, "Discard any existing index and rebuild")
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexStatsCmd)
	indexCmd.AddCommand(indexClearCmd)
}

func repoRoot() (string, error) {
	meta, err := gitctx.Meta()
	if err != nil {
		return "", err
	}
	return meta.Root, nil
}
