package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/draftglass/inkdex/internal/async"
	"github.com/draftglass/inkdex/internal/index"
	"github.com/draftglass/inkdex/internal/output"
)

func newIndexCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "index <scenes.json>",
		Short: "Build or rebuild the scene index",
		Long: `Index the scenes in a JSON scene file.

The file holds an array of scene objects with id, chapterId, text, and
startOffset fields. Existing documents for the same scene ids are
replaced.

Examples:
  inkdex index scenes.json
  inkdex index scenes.json --root ~/books/draft`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), cmd, args[0], root)
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Manuscript root directory")

	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, sceneFile, rootFlag string) error {
	out := output.New(cmd.OutOrStdout())

	root, err := resolveRoot(rootFlag)
	if err != nil {
		return err
	}

	scenes, err := loadScenes(sceneFile)
	if err != nil {
		return err
	}
	if len(scenes) == 0 {
		out.Warning("Scene file is empty, nothing to index")
		return nil
	}

	cfg, idx, err := openIndex(root)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	slog.Info("index_started",
		slog.String("scene_file", sceneFile),
		slog.Int("scenes", len(scenes)))

	extractor := index.NewCapitalizedRunExtractor(cfg.Characters.MinNameLength)
	coordinator := index.NewCoordinator(idx, extractor)
	background := async.NewBackgroundIndexer(coordinator)

	jobID, events, err := background.Start(ctx, scenes)
	if err != nil {
		return err
	}
	slog.Debug("index_job_started", slog.String("job_id", jobID))

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("indexing"),
		progressbar.OptionClearOnFinish(),
	)

	for event := range events {
		switch event.Type {
		case async.EventProgress:
			_ = bar.Set(event.Percent)
		case async.EventError:
			_ = bar.Clear()
			out.Error(event.Message)
		}
	}

	if err := background.Wait(); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	_ = bar.Finish()
	count, _ := idx.DocCount()
	out.Successf("Indexed %d scenes (%d documents in index)", len(scenes), count)
	return nil
}
