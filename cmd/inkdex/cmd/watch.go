package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/draftglass/inkdex/internal/index"
	"github.com/draftglass/inkdex/internal/output"
	"github.com/draftglass/inkdex/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "watch <scenes.json>",
		Short: "Reindex automatically when the scene file changes",
		Long: `Watch a scene file and reindex on every change.

Rapid editor saves are coalesced so each burst of writes triggers a
single reindex. Press Ctrl-C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args[0], root)
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Manuscript root directory")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, sceneFile, rootFlag string) error {
	out := output.New(cmd.OutOrStdout())

	root, err := resolveRoot(rootFlag)
	if err != nil {
		return err
	}

	cfg, idx, err := openIndex(root)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	extractor := index.NewCapitalizedRunExtractor(cfg.Characters.MinNameLength)
	coordinator := index.NewCoordinator(idx, extractor)

	// Index once up front so the watcher starts from a fresh state.
	if err := reindexFile(ctx, coordinator, sceneFile, out); err != nil {
		out.Errorf("Initial index failed: %v", err)
	}

	w := watcher.New(watcher.DefaultOptions())
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- w.Start(ctx, sceneFile)
	}()
	defer w.Stop()

	out.Statusf("👀", "Watching %s", sceneFile)

	for {
		select {
		case err := <-watchErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if ev.Operation == watcher.OpDelete {
				out.Warning("Scene file deleted, waiting for it to return")
				continue
			}
			if err := reindexFile(ctx, coordinator, sceneFile, out); err != nil {
				out.Errorf("Reindex failed: %v", err)
			}
		case err, ok := <-w.Errors():
			if ok && err != nil {
				slog.Warn("watch_error", slog.String("error", err.Error()))
			}
		}
	}
}

func reindexFile(ctx context.Context, coordinator *index.Coordinator, sceneFile string, out *output.Writer) error {
	scenes, err := loadScenes(sceneFile)
	if err != nil {
		return err
	}
	if err := coordinator.IndexManuscript(ctx, scenes); err != nil {
		return err
	}
	out.Successf("Indexed %d scenes", len(scenes))
	return nil
}
